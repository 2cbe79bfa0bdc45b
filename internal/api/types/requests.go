package types

type SessionOpenRequest struct {
	ProjectID string `json:"projectId"`
}

type ProjectDetailsRequest struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	UserRequirements string `json:"userRequirements" validate:"required"`
	CredentialID     string `json:"cloudCredentialId" validate:"required"`
}

type MessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type CredentialAssignRequest struct {
	CredentialID string `json:"cloudCredentialId" validate:"required"`
}

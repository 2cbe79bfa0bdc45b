package models

import "time"

// Project is an AI-assisted provisioning project owned by the signed-in user.
type Project struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Description           string         `json:"description,omitempty"`
	UserRequirements      string         `json:"userRequirements,omitempty"`
	ProcessedRequirements string         `json:"processedRequirements,omitempty"`
	Status                StatusValue    `json:"status"`
	CloudCredentialID     *string        `json:"cloudCredentialId,omitempty"`
	Resources             []Resource     `json:"resources,omitempty"`
	Conversations         []Conversation `json:"conversations,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             *time.Time     `json:"updatedAt,omitempty"`
}

// CreateProjectInput is the details-step submission.
type CreateProjectInput struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description,omitempty"`
	UserRequirements string `json:"userRequirements" validate:"required"`
	CredentialID     string `json:"cloudCredentialId" validate:"required"`
}

// ProjectSnapshot is the client-local copy of one project as last fetched.
// It is replaced wholesale after every mutating operation.
type ProjectSnapshot struct {
	Project       Project        `json:"project"`
	Resources     []Resource     `json:"resources"`
	Conversations []Conversation `json:"conversations"`
	FetchedAt     time.Time      `json:"fetchedAt"`
}

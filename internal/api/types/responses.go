package types

// APIResponse is the envelope every dashboard endpoint answers with. Data
// is set when Success is true, Error otherwise.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// APIError carries the error code of the failed workflow step. Meta holds
// the structured context attached to it, such as project_id, resource_id,
// the navigation step or stage=refresh after a provisioning submit.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details string         `json:"details,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Meta is attached to successful answers. Total counts the projects of an
// overview.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

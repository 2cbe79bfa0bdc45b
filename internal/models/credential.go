package models

// CloudCredential is a cloud subscription credential the user registered.
// Secrets never leave the backend; the dashboard only sees the reference.
type CloudCredential struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Provider       string `json:"provider"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	IsDefault      bool   `json:"isDefault,omitempty"`
}

package models

// DeletionPreview is the impact summary returned by an unconfirmed delete.
type DeletionPreview struct {
	ResourceCount        int     `json:"resourceCount"`
	EstimatedMonthlyCost float64 `json:"estimatedMonthlyCost"`
	Message              string  `json:"message"`
}

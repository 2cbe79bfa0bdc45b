package models

// Recommendation is an AI-proposed resource that has not been provisioned.
type Recommendation struct {
	ID                   string  `json:"id,omitempty"`
	Name                 string  `json:"name"`
	ResourceType         string  `json:"resourceType"`
	Sku                  string  `json:"sku,omitempty"`
	Location             string  `json:"location,omitempty"`
	EstimatedMonthlyCost float64 `json:"estimatedMonthlyCost"`
	Justification        string  `json:"justification,omitempty"`
	Priority             string  `json:"priority,omitempty"`
	IsRecommended        *bool   `json:"isRecommended,omitempty"`
}

// Recommended reports the recommended-by-default flag; an omitted flag means true.
func (r Recommendation) Recommended() bool {
	return r.IsRecommended == nil || *r.IsRecommended
}

package models

import "time"

// Resource is a provisioned, provisioning or failed cloud resource of a project.
type Resource struct {
	ID                   string         `json:"id"`
	ProjectID            string         `json:"projectId,omitempty"`
	Name                 string         `json:"name"`
	ResourceType         string         `json:"resourceType"`
	Status               StatusValue    `json:"status"`
	Location             string         `json:"location,omitempty"`
	EstimatedMonthlyCost *float64       `json:"estimatedMonthlyCost,omitempty"`
	Configuration        map[string]any `json:"configuration,omitempty"`
	ErrorMessage         string         `json:"errorMessage,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
	ProvisionedAt        *time.Time     `json:"provisionedAt,omitempty"`
	DeletedAt            *time.Time     `json:"deletedAt,omitempty"`
}

// MonthlyCost returns the estimate, treating a missing value as zero.
func (r Resource) MonthlyCost() float64 {
	if r.EstimatedMonthlyCost == nil {
		return 0
	}
	return *r.EstimatedMonthlyCost
}

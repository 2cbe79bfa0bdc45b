// Package cost rolls up estimated monthly spend for resources and recommendations.
package cost

import "github.com/iac-studio/dashboard/internal/models"

// MonthlyCost sums the estimated monthly cost of the resources. A missing
// estimate counts as zero. No rounding is applied.
func MonthlyCost(resources []models.Resource) float64 {
	var total float64
	for _, r := range resources {
		total += r.MonthlyCost()
	}
	return total
}

// SelectedCost sums the estimates of the recommendations whose id is selected.
func SelectedCost(recs []models.Recommendation, selected map[string]struct{}) float64 {
	var total float64
	for _, r := range recs {
		if _, ok := selected[r.ID]; ok {
			total += r.EstimatedMonthlyCost
		}
	}
	return total
}

// ByType groups the monthly cost of resources by resource type.
func ByType(resources []models.Resource) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range resources {
		out[r.ResourceType] += r.MonthlyCost()
	}
	return out
}

// ProjectCost is the rollup for a single project.
type ProjectCost struct {
	ProjectID   string  `json:"projectId"`
	MonthlyCost float64 `json:"monthlyCost"`
}

// ByProject rolls up each project's embedded resources and returns the
// per-project costs in input order together with the grand total.
func ByProject(projects []models.Project) ([]ProjectCost, float64) {
	out := make([]ProjectCost, 0, len(projects))
	var total float64
	for _, p := range projects {
		c := MonthlyCost(p.Resources)
		out = append(out, ProjectCost{ProjectID: p.ID, MonthlyCost: c})
		total += c
	}
	return out, total
}

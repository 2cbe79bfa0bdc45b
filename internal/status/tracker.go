package status

import (
	"github.com/iac-studio/dashboard/internal/cost"
	"github.com/iac-studio/dashboard/internal/models"
)

// Summary counts a project's resources by canonical status.
type Summary struct {
	Total        int     `json:"totalResources"`
	Planned      int     `json:"plannedResources"`
	Provisioning int     `json:"provisioningResources"`
	Active       int     `json:"activeResources"`
	Failed       int     `json:"failedResources"`
	Deleting     int     `json:"deletingResources"`
	Deleted      int     `json:"deletedResources"`
	Unknown      int     `json:"unknownResources"`
	MonthlyCost  float64 `json:"monthlyCost"`
}

// HasFailures reports whether any resource is in the Failed state.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Summarize classifies every resource exactly once.
func Summarize(resources []models.Resource) Summary {
	s := Summary{Total: len(resources), MonthlyCost: cost.MonthlyCost(resources)}
	for _, r := range resources {
		switch ResourceTable.Canonical(r.Status) {
		case Planned:
			s.Planned++
		case Provisioning:
			s.Provisioning++
		case Active:
			s.Active++
		case Failed:
			s.Failed++
		case Deleting:
			s.Deleting++
		case Deleted:
			s.Deleted++
		default:
			s.Unknown++
		}
	}
	return s
}

// Filter returns the resources whose status classifies as name, in input order.
func Filter(resources []models.Resource, name string) []models.Resource {
	var out []models.Resource
	for _, r := range resources {
		if IsResource(r, name) {
			out = append(out, r)
		}
	}
	return out
}

// FailedResources lists the retry candidates.
func FailedResources(resources []models.Resource) []models.Resource {
	return Filter(resources, Failed)
}

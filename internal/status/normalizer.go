// Package status classifies project and resource statuses independently of
// whether the backend sent a numeric code or a name.
package status

import (
	"strings"

	"github.com/iac-studio/dashboard/internal/models"
)

// Resource status names.
const (
	Planned      = "Planned"
	Provisioning = "Provisioning"
	Active       = "Active"
	Failed       = "Failed"
	Deleting     = "Deleting"
	Deleted      = "Deleted"
)

// Project status names, in lifecycle order.
const (
	Draft               = "Draft"
	Analyzing           = "Analyzing"
	ResourcesIdentified = "ResourcesIdentified"
	ProjectProvisioning = "Provisioning"
	ProjectActive       = "Active"
	Error               = "Error"
	Archived            = "Archived"
)

// Unknown is displayed for codes outside the table and for absent statuses.
const Unknown = "Unknown"

// Table maps numeric codes (the index) to canonical names.
type Table []string

var (
	// ResourceTable is the resource code table: 0=Planned .. 5=Deleted.
	ResourceTable = Table{Planned, Provisioning, Active, Failed, Deleting, Deleted}
	// ProjectTable is the project code table: 0=Draft .. 6=Archived.
	ProjectTable = Table{Draft, Analyzing, ResourcesIdentified, ProjectProvisioning, ProjectActive, Error, Archived}
)

// Is reports whether v classifies as name. Numeric values are looked up in
// the table; string values are compared case-insensitively.
func (t Table) Is(v models.StatusValue, name string) bool {
	if code, ok := v.Code(); ok {
		if code < 0 || code >= len(t) {
			return false
		}
		return strings.EqualFold(t[code], name)
	}
	if raw, ok := v.Name(); ok {
		return strings.EqualFold(strings.TrimSpace(raw), name)
	}
	return false
}

// Canonical returns the table spelling of v, or Unknown.
func (t Table) Canonical(v models.StatusValue) string {
	if code, ok := v.Code(); ok {
		if code < 0 || code >= len(t) {
			return Unknown
		}
		return t[code]
	}
	if raw, ok := v.Name(); ok {
		raw = strings.TrimSpace(raw)
		for _, n := range t {
			if strings.EqualFold(n, raw) {
				return n
			}
		}
	}
	return Unknown
}

// Display returns the label shown for v. Known statuses use the table
// spelling whichever way they were encoded; names outside the table are
// shown as sent.
func (t Table) Display(v models.StatusValue) string {
	c := t.Canonical(v)
	if c != Unknown {
		return c
	}
	if raw, ok := v.Name(); ok && strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return Unknown
}

// IsResource reports whether the resource status classifies as name.
func IsResource(r models.Resource, name string) bool {
	return ResourceTable.Is(r.Status, name)
}

// Display returns the display label of a resource status.
func Display(r models.Resource) string {
	return ResourceTable.Display(r.Status)
}

// IsProject reports whether the project status classifies as name.
func IsProject(p models.Project, name string) bool {
	return ProjectTable.Is(p.Status, name)
}

// DisplayProject returns the display label of a project status.
func DisplayProject(p models.Project) string {
	return ProjectTable.Display(p.Status)
}

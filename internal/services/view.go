package services

import (
	"context"
	"sync"

	"github.com/iac-studio/dashboard/internal/models"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
)

// Refresher re-fetches a project from the source of truth.
type Refresher interface {
	Refresh(ctx context.Context, projectID string) (*models.ProjectSnapshot, error)
}

// ProjectView is the client-local copy of one project. It is replaced
// wholesale by every refresh and never patched locally.
type ProjectView struct {
	mu       sync.RWMutex
	snap     *models.ProjectSnapshot
	notFound bool
}

// Snapshot returns the last snapshot. A project that disappeared on refresh
// reports a NotFoundError instead of its stale copy.
func (v *ProjectView) Snapshot() (*models.ProjectSnapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.notFound {
		return nil, appErr.NotFound("project not found")
	}
	if v.snap == nil {
		return nil, appErr.NotFound("project not loaded")
	}
	return v.snap, nil
}

// Replace installs a freshly fetched snapshot.
func (v *ProjectView) Replace(snap *models.ProjectSnapshot) {
	v.mu.Lock()
	v.snap = snap
	v.notFound = false
	v.mu.Unlock()
}

// Reload refreshes through r and records the outcome. A NotFoundError puts
// the view into its not-found state; other failures keep the previous copy.
func (v *ProjectView) Reload(ctx context.Context, r Refresher, projectID string) (*models.ProjectSnapshot, error) {
	snap, err := r.Refresh(ctx, projectID)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			v.mu.Lock()
			v.notFound = true
			v.mu.Unlock()
		}
		return nil, err
	}
	v.Replace(snap)
	return snap, nil
}

// FindResource looks a resource up in a snapshot.
func FindResource(snap *models.ProjectSnapshot, resourceID string) (*models.Resource, error) {
	for i := range snap.Resources {
		if snap.Resources[i].ID == resourceID {
			return &snap.Resources[i], nil
		}
	}
	return nil, appErr.NotFound("resource not found").WithMeta("resource_id", resourceID)
}

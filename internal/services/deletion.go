package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

type DeletionPhase string

const (
	DeletionIdle       DeletionPhase = "idle"
	DeletionConfirming DeletionPhase = "confirming"
	DeletionDeleting   DeletionPhase = "deleting"
	DeletionDone       DeletionPhase = "done"
)

type DeletionState struct {
	Phase     DeletionPhase           `json:"phase"`
	ProjectID string                  `json:"projectId,omitempty"`
	Preview   *models.DeletionPreview `json:"preview,omitempty"`
}

// DeletionFlow is the preview-then-confirm delete of a project. Nothing is
// destroyed until Confirm is called from the confirming phase.
type DeletionFlow struct {
	api remote.API

	mu        sync.Mutex
	phase     DeletionPhase
	projectID string
	preview   *models.DeletionPreview
}

func NewDeletionFlow(api remote.API) *DeletionFlow {
	return &DeletionFlow{api: api, phase: DeletionIdle}
}

// Request fetches the impact preview and opens the confirmation.
func (f *DeletionFlow) Request(ctx context.Context, projectID string) (*models.DeletionPreview, error) {
	if projectID == "" {
		return nil, appErr.Validation("project id is required")
	}
	f.mu.Lock()
	if f.phase == DeletionDeleting || f.phase == DeletionDone {
		f.mu.Unlock()
		return nil, appErr.New(appErr.CodeConflict, "project deletion already "+string(f.phase))
	}
	f.mu.Unlock()

	logger.L().Info("deletion preview", zap.String("project_id", projectID))
	preview, err := f.api.DeleteProject(ctx, projectID, false)
	if err != nil {
		logger.L().Error("deletion preview failed", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	if preview == nil {
		preview = &models.DeletionPreview{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = DeletionConfirming
	f.projectID = projectID
	f.preview = preview
	p := *preview
	return &p, nil
}

// Confirm deletes the project previewed by Request. On failure the flow goes
// back to idle and the project is left intact.
func (f *DeletionFlow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != DeletionConfirming {
		f.mu.Unlock()
		return appErr.Validation("deletion must be previewed before it is confirmed")
	}
	f.phase = DeletionDeleting
	projectID := f.projectID
	f.mu.Unlock()

	logger.L().Info("delete project", zap.String("project_id", projectID))
	_, err := f.api.DeleteProject(ctx, projectID, true)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.preview = nil
	if err != nil {
		logger.L().Error("delete project failed", zap.String("project_id", projectID), zap.Error(err))
		f.phase = DeletionIdle
		return err
	}
	f.phase = DeletionDone
	logger.L().Info("project deleted", zap.String("project_id", projectID))
	return nil
}

// Cancel closes the confirmation without any network call.
func (f *DeletionFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == DeletionConfirming {
		f.phase = DeletionIdle
		f.preview = nil
	}
}

func (f *DeletionFlow) State() DeletionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := DeletionState{Phase: f.phase, ProjectID: f.projectID}
	if f.preview != nil {
		p := *f.preview
		st.Preview = &p
	}
	return st
}

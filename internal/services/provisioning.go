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

// ProvisioningOrchestrator submits the selected recommendations. It never
// creates resources locally: they appear once a refresh observes them.
type ProvisioningOrchestrator struct {
	api       remote.API
	refresher Refresher
	view      *ProjectView
	selection *SelectionSet
	sched     *Scheduler

	mu   sync.Mutex
	busy bool
}

func NewProvisioningOrchestrator(api remote.API, refresher Refresher, view *ProjectView, selection *SelectionSet, sched *Scheduler) *ProvisioningOrchestrator {
	return &ProvisioningOrchestrator{api: api, refresher: refresher, view: view, selection: selection, sched: sched}
}

// Provision submits selected for projectID. On success the recommendation
// list is cleared and the project is re-fetched; on failure the list and the
// selection are left for the user to retry.
func (o *ProvisioningOrchestrator) Provision(ctx context.Context, projectID string, selected []models.Recommendation) (*models.ProjectSnapshot, error) {
	if len(selected) == 0 {
		return nil, appErr.Validation("select at least one recommendation")
	}
	if projectID == "" {
		return nil, appErr.Validation("project id is required")
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, appErr.New(appErr.CodeConflict, "provisioning already in progress")
	}
	o.busy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	logger.L().Info("provision resources", zap.String("project_id", projectID), zap.Int("count", len(selected)))
	if err := o.api.ProvisionResources(ctx, projectID, selected); err != nil {
		logger.L().Error("provision resources failed", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	o.selection.Clear()

	if o.sched.Closed() {
		logger.L().Info("session closed, skipping refresh after provisioning", zap.String("project_id", projectID))
		return nil, appErr.New(appErr.CodeDeadline, "session closed before refresh")
	}
	rctx, cancel := o.sched.Bind(ctx)
	defer cancel()
	snap, err := o.view.Reload(rctx, o.refresher, projectID)
	if err != nil {
		logger.L().Warn("refresh after provisioning failed", zap.String("project_id", projectID), zap.Error(err))
		return nil, appErr.Wrap(err, appErr.CodeOf(err), "resources submitted but refresh failed").WithMeta("stage", "refresh")
	}
	logger.L().Info("resources submitted", zap.String("project_id", projectID), zap.Int("resources", len(snap.Resources)))
	return snap, nil
}

func (o *ProvisioningOrchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

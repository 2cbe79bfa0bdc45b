package services

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// RetryState is a copy of the in-flight bookkeeping.
type RetryState struct {
	Retrying    []string `json:"retrying"`
	RetryingAll bool     `json:"retryingAll"`
}

// RetryCoordinator resubmits failed resources. A resource id is in flight
// from just before its request until the request settles; a second retry
// for it in that window is rejected instead of sent.
type RetryCoordinator struct {
	api       remote.API
	refresher Refresher
	view      *ProjectView
	sched     *Scheduler

	mu          sync.Mutex
	inFlight    map[string]struct{}
	retryingAll bool
}

func NewRetryCoordinator(api remote.API, refresher Refresher, view *ProjectView, sched *Scheduler) *RetryCoordinator {
	return &RetryCoordinator{api: api, refresher: refresher, view: view, sched: sched, inFlight: map[string]struct{}{}}
}

// RetryOne resubmits one resource and schedules a refresh after the grace period.
func (c *RetryCoordinator) RetryOne(ctx context.Context, projectID, resourceID string) error {
	if projectID == "" || resourceID == "" {
		return appErr.Validation("project id and resource id are required")
	}
	if snap, err := c.view.Snapshot(); err == nil && snap.Project.ID == projectID {
		if _, err := FindResource(snap, resourceID); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if _, ok := c.inFlight[resourceID]; ok {
		c.mu.Unlock()
		return appErr.New(appErr.CodeConflict, "retry already in progress").WithMeta("resource_id", resourceID)
	}
	c.inFlight[resourceID] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, resourceID)
		c.mu.Unlock()
	}()

	logger.L().Info("retry resource", zap.String("project_id", projectID), zap.String("resource_id", resourceID))
	if err := c.api.RetryResource(ctx, projectID, resourceID); err != nil {
		logger.L().Error("retry resource failed",
			zap.String("project_id", projectID), zap.String("resource_id", resourceID), zap.Error(err))
		return err
	}
	c.refreshLater(projectID)
	return nil
}

// RetryAllFailed resubmits every failed resource of the project in one request.
func (c *RetryCoordinator) RetryAllFailed(ctx context.Context, projectID string) error {
	if projectID == "" {
		return appErr.Validation("project id is required")
	}

	c.mu.Lock()
	if c.retryingAll {
		c.mu.Unlock()
		return appErr.New(appErr.CodeConflict, "retry of failed resources already in progress")
	}
	c.retryingAll = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.retryingAll = false
		c.mu.Unlock()
	}()

	logger.L().Info("retry all failed resources", zap.String("project_id", projectID))
	if err := c.api.RetryAllFailedResources(ctx, projectID); err != nil {
		logger.L().Error("retry all failed resources failed", zap.String("project_id", projectID), zap.Error(err))
		return err
	}
	c.refreshLater(projectID)
	return nil
}

func (c *RetryCoordinator) refreshLater(projectID string) {
	c.sched.After(RetryRefreshGrace, func(ctx context.Context) {
		if _, err := c.view.Reload(ctx, c.refresher, projectID); err != nil {
			logger.L().Warn("refresh after retry failed", zap.String("project_id", projectID), zap.Error(err))
		}
	})
}

func (c *RetryCoordinator) IsRetrying(resourceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[resourceID]
	return ok
}

func (c *RetryCoordinator) State() RetryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := RetryState{Retrying: make([]string, 0, len(c.inFlight)), RetryingAll: c.retryingAll}
	for id := range c.inFlight {
		st.Retrying = append(st.Retrying, id)
	}
	sort.Strings(st.Retrying)
	return st
}

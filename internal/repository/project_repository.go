package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/cache"
	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
	"github.com/iac-studio/dashboard/pkg/utils"
)

// ProjectRepository reads projects from the backend and keeps the last
// fetched snapshot of each one. The backend is always the source of truth:
// a refresh replaces the cached snapshot unconditionally.
type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	// Snapshot returns the cached snapshot, fetching it on a miss.
	Snapshot(ctx context.Context, projectID string) (*models.ProjectSnapshot, error)
	// Refresh re-fetches the project, its resources and its conversations.
	Refresh(ctx context.Context, projectID string) (*models.ProjectSnapshot, error)
	Invalidate(ctx context.Context, projectID string)
}

type projectRepository struct {
	api   remote.API
	store cache.Store
	now   func() time.Time
}

func NewProjectRepository(api remote.API, store cache.Store) ProjectRepository {
	return &projectRepository{api: api, store: store, now: time.Now}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	out, err := r.api.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepository) Snapshot(ctx context.Context, projectID string) (*models.ProjectSnapshot, error) {
	snap, ok, err := r.store.Get(ctx, r.key(ctx, projectID))
	if err != nil {
		logger.L().Warn("snapshot cache read failed", zap.String("project_id", projectID), zap.Error(err))
	}
	if ok {
		return snap, nil
	}
	return r.Refresh(ctx, projectID)
}

func (r *projectRepository) Refresh(ctx context.Context, projectID string) (*models.ProjectSnapshot, error) {
	if projectID == "" {
		return nil, appErr.Validation("project id is required")
	}
	p, err := r.api.GetProject(ctx, projectID)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			r.Invalidate(ctx, projectID)
			return nil, appErr.NotFound("project not found").WithMeta("project_id", projectID)
		}
		return nil, err
	}
	resources, err := r.api.GetProjectResources(ctx, projectID)
	if err != nil {
		return nil, err
	}
	conversations, err := r.api.GetProjectConversations(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snap := &models.ProjectSnapshot{
		Project:       *p,
		Resources:     resources,
		Conversations: conversations,
		FetchedAt:     r.now().UTC(),
	}
	if snap.Resources == nil {
		snap.Resources = []models.Resource{}
	}
	if snap.Conversations == nil {
		snap.Conversations = []models.Conversation{}
	}
	if err := r.store.Set(ctx, r.key(ctx, projectID), snap); err != nil {
		logger.L().Warn("snapshot cache write failed", zap.String("project_id", projectID), zap.Error(err))
	}
	return snap, nil
}

func (r *projectRepository) Invalidate(ctx context.Context, projectID string) {
	if err := r.store.Delete(ctx, r.key(ctx, projectID)); err != nil {
		logger.L().Warn("snapshot cache delete failed", zap.String("project_id", projectID), zap.Error(err))
	}
}

// key scopes cache entries to the caller's credential so one user never sees
// another user's cached view of a project.
func (r *projectRepository) key(ctx context.Context, projectID string) string {
	return utils.Fingerprint(remote.TokenFrom(ctx)) + ":" + projectID
}

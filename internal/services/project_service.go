package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/cost"
	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	"github.com/iac-studio/dashboard/internal/repository"
	"github.com/iac-studio/dashboard/internal/status"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// ProjectService serves the read side of the dashboard and the few project
// mutations that live outside a workflow session.
type ProjectService interface {
	Refresher

	Overview(ctx context.Context) (*Overview, error)
	Get(ctx context.Context, projectID string) (*ProjectDetail, error)
	AssignCredential(ctx context.Context, projectID, credentialID string) (*models.ProjectSnapshot, error)
	Credentials(ctx context.Context) ([]models.CloudCredential, error)
	Invalidate(ctx context.Context, projectID string)
}

// ProjectSummary is one row of the landing view.
type ProjectSummary struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	HasCredential bool           `json:"hasCredential"`
	Resources     status.Summary `json:"resources"`
}

// Overview is the dashboard landing view.
type Overview struct {
	Projects         []ProjectSummary `json:"projects"`
	ActiveProjects   int              `json:"activeProjects"`
	TotalResources   int              `json:"totalResources"`
	FailedResources  int              `json:"failedResources"`
	TotalMonthlyCost float64          `json:"totalMonthlyCost"`
}

// ProjectDetail is a snapshot together with its status rollup.
type ProjectDetail struct {
	Snapshot   *models.ProjectSnapshot `json:"snapshot"`
	Status     string                  `json:"status"`
	Summary    status.Summary          `json:"summary"`
	CostByType map[string]float64      `json:"costByType"`
}

type projectService struct {
	api  remote.API
	repo repository.ProjectRepository
}

func NewProjectService(api remote.API, repo repository.ProjectRepository) ProjectService {
	return &projectService{api: api, repo: repo}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)

func (s *projectService) Overview(ctx context.Context) (*Overview, error) {
	logger.L().Info("project overview")
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{Projects: make([]ProjectSummary, 0, len(projects))}
	_, out.TotalMonthlyCost = cost.ByProject(projects)
	for _, p := range projects {
		sum := status.Summarize(p.Resources)
		out.Projects = append(out.Projects, ProjectSummary{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Status:        status.DisplayProject(p),
			HasCredential: p.CloudCredentialID != nil && *p.CloudCredentialID != "",
			Resources:     sum,
		})
		if status.IsProject(p, status.ProjectActive) {
			out.ActiveProjects++
		}
		out.TotalResources += sum.Total
		out.FailedResources += sum.Failed
	}
	return out, nil
}

func (s *projectService) Get(ctx context.Context, projectID string) (*ProjectDetail, error) {
	logger.L().Info("get project", zap.String("project_id", projectID))
	snap, err := s.repo.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return Detail(snap), nil
}

func (s *projectService) Refresh(ctx context.Context, projectID string) (*models.ProjectSnapshot, error) {
	logger.L().Debug("refresh project", zap.String("project_id", projectID))
	return s.repo.Refresh(ctx, projectID)
}

func (s *projectService) AssignCredential(ctx context.Context, projectID, credentialID string) (*models.ProjectSnapshot, error) {
	logger.L().Info("assign credential", zap.String("project_id", projectID), zap.String("credential_id", credentialID))
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(credentialID) == "" {
		return nil, appErr.Validation("project id and credential id are required")
	}
	if err := s.api.AssignCredential(ctx, projectID, credentialID); err != nil {
		logger.L().Error("assign credential failed", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return s.repo.Refresh(ctx, projectID)
}

func (s *projectService) Credentials(ctx context.Context) ([]models.CloudCredential, error) {
	return s.api.ListCredentials(ctx)
}

func (s *projectService) Invalidate(ctx context.Context, projectID string) {
	s.repo.Invalidate(ctx, projectID)
}

// Detail builds the rollup shown next to a project snapshot.
func Detail(snap *models.ProjectSnapshot) *ProjectDetail {
	return &ProjectDetail{
		Snapshot:   snap,
		Status:     status.DisplayProject(snap.Project),
		Summary:    status.Summarize(snap.Resources),
		CostByType: cost.ByType(snap.Resources),
	}
}

// Package remotetest provides a testify mock of remote.API.
package remotetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
)

type MockAPI struct {
	mock.Mock
}

var _ remote.API = (*MockAPI)(nil)

func (m *MockAPI) ListProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) CreateProject(ctx context.Context, input models.CreateProjectInput) (*models.Project, error) {
	args := m.Called(ctx, input)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) GetProjectResources(ctx context.Context, projectID string) ([]models.Resource, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Resource), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) GetProjectConversations(ctx context.Context, projectID string) ([]models.Conversation, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) AddConversationTurn(ctx context.Context, projectID, message string) (*models.TurnReply, error) {
	args := m.Called(ctx, projectID, message)
	if v := args.Get(0); v != nil {
		return v.(*models.TurnReply), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) GenerateRecommendations(ctx context.Context, projectID string) ([]models.Recommendation, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Recommendation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) ProvisionResources(ctx context.Context, projectID string, recs []models.Recommendation) error {
	args := m.Called(ctx, projectID, recs)
	return args.Error(0)
}

func (m *MockAPI) RetryResource(ctx context.Context, projectID, resourceID string) error {
	args := m.Called(ctx, projectID, resourceID)
	return args.Error(0)
}

func (m *MockAPI) RetryAllFailedResources(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockAPI) DeleteProject(ctx context.Context, projectID string, confirmed bool) (*models.DeletionPreview, error) {
	args := m.Called(ctx, projectID, confirmed)
	if v := args.Get(0); v != nil {
		return v.(*models.DeletionPreview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) AssignCredential(ctx context.Context, projectID, credentialID string) error {
	args := m.Called(ctx, projectID, credentialID)
	return args.Error(0)
}

func (m *MockAPI) ListCredentials(ctx context.Context) ([]models.CloudCredential, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.CloudCredential), args.Error(1)
	}
	return nil, args.Error(1)
}

// ExpectSnapshot registers the three reads a project refresh performs.
func (m *MockAPI) ExpectSnapshot(projectID string, p *models.Project, resources []models.Resource, convs []models.Conversation) {
	m.On("GetProject", mock.Anything, projectID).Return(p, nil)
	m.On("GetProjectResources", mock.Anything, projectID).Return(resources, nil)
	m.On("GetProjectConversations", mock.Anything, projectID).Return(convs, nil)
}

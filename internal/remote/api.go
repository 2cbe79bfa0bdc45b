// Package remote talks to the provisioning backend that analyzes requirements,
// generates recommendations and provisions resources.
package remote

import (
	"context"

	"github.com/iac-studio/dashboard/internal/models"
)

// API is the set of backend calls the workflow consumes.
type API interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, input models.CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	GetProjectResources(ctx context.Context, projectID string) ([]models.Resource, error)
	GetProjectConversations(ctx context.Context, projectID string) ([]models.Conversation, error)

	// AddConversationTurn submits one user message and returns the AI response.
	AddConversationTurn(ctx context.Context, projectID, message string) (*models.TurnReply, error)

	// GenerateRecommendations may return items without id or isRecommended.
	GenerateRecommendations(ctx context.Context, projectID string) ([]models.Recommendation, error)
	ProvisionResources(ctx context.Context, projectID string, recs []models.Recommendation) error

	RetryResource(ctx context.Context, projectID, resourceID string) error
	RetryAllFailedResources(ctx context.Context, projectID string) error

	// DeleteProject returns the impact preview when confirmed is false and
	// nil once a confirmed delete succeeded.
	DeleteProject(ctx context.Context, projectID string, confirmed bool) (*models.DeletionPreview, error)

	AssignCredential(ctx context.Context, projectID, credentialID string) error
	ListCredentials(ctx context.Context) ([]models.CloudCredential, error)
}

type tokenKey struct{}

// WithToken attaches the caller's bearer credential to ctx. Requests made
// with ctx carry it instead of the client's static token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer credential attached by WithToken.
func TokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

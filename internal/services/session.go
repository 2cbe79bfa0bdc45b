package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
	"github.com/iac-studio/dashboard/pkg/utils"
)

// Session is one user's workflow on one project. Closing it stands for
// navigating away: delayed refreshes and follow-ups still pending are dropped.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	sched    *Scheduler
	projects ProjectService

	View            *ProjectView
	Conversation    *ConversationEngine
	Recommendations *SelectionSet
	Provisioning    *ProvisioningOrchestrator
	Retries         *RetryCoordinator
	Deletion        *DeletionFlow
}

// SessionState is everything a page needs to render the session.
type SessionState struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"projectId,omitempty"`
	Conversation    ConversationState `json:"conversation"`
	Recommendations SelectionState    `json:"recommendations"`
	Provisioning    bool              `json:"provisioning"`
	Retries         RetryState        `json:"retries"`
	Deletion        DeletionState     `json:"deletion"`
	Project         *ProjectDetail    `json:"project,omitempty"`
	NotFound        bool              `json:"notFound,omitempty"`
}

// NewSession builds a session acting with token. Background refreshes use
// the same credential as the request that opened the session.
func NewSession(token string, api remote.API, projects ProjectService) *Session {
	ctx, cancel := context.WithCancel(remote.WithToken(context.Background(), token))
	sched := NewScheduler(ctx)
	view := &ProjectView{}
	sel := NewSelectionSet(api)
	return &Session{
		ID:              uuid.NewString(),
		Owner:           utils.Fingerprint(token),
		CreatedAt:       time.Now().UTC(),
		ctx:             ctx,
		cancel:          cancel,
		sched:           sched,
		projects:        projects,
		View:            view,
		Conversation:    NewConversationEngine(api, sched),
		Recommendations: sel,
		Provisioning:    NewProvisioningOrchestrator(api, projects, view, sel, sched),
		Retries:         NewRetryCoordinator(api, projects, view, sched),
		Deletion:        NewDeletionFlow(api),
	}
}

// Resume loads an existing project and jumps to its conversation.
func (s *Session) Resume(ctx context.Context, projectID string) error {
	snap, err := s.View.Reload(ctx, s.projects, projectID)
	if err != nil {
		return err
	}
	s.Conversation.Resume(snap)
	return nil
}

func (s *Session) SubmitDetails(ctx context.Context, input models.CreateProjectInput) (*models.Project, error) {
	p, err := s.Conversation.SubmitDetails(ctx, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.View.Snapshot(); err != nil {
		s.View.Replace(&models.ProjectSnapshot{
			Project:       *p,
			Resources:     []models.Resource{},
			Conversations: []models.Conversation{},
			FetchedAt:     time.Now().UTC(),
		})
	}
	return p, nil
}

// Send submits a conversation message. The cached project copy is dropped
// afterwards because the backend recorded a new turn.
func (s *Session) Send(ctx context.Context, text string) (*Message, error) {
	msg, err := s.Conversation.Send(ctx, text)
	if err != nil {
		return nil, err
	}
	s.projects.Invalidate(ctx, s.ProjectID())
	return msg, nil
}

// GenerateRecommendations and Provision are only reachable once the
// conversation moved on to the recommendations step.
func (s *Session) GenerateRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	projectID, err := s.requireRecommendationsStep()
	if err != nil {
		return nil, err
	}
	return s.Recommendations.Generate(ctx, projectID)
}

func (s *Session) Provision(ctx context.Context) (*models.ProjectSnapshot, error) {
	projectID, err := s.requireRecommendationsStep()
	if err != nil {
		return nil, err
	}
	return s.Provisioning.Provision(ctx, projectID, s.Recommendations.Selected())
}

func (s *Session) RetryResource(ctx context.Context, resourceID string) error {
	projectID, err := s.requireProject()
	if err != nil {
		return err
	}
	return s.Retries.RetryOne(ctx, projectID, resourceID)
}

func (s *Session) RetryFailed(ctx context.Context) error {
	projectID, err := s.requireProject()
	if err != nil {
		return err
	}
	return s.Retries.RetryAllFailed(ctx, projectID)
}

func (s *Session) PreviewDeletion(ctx context.Context) (*models.DeletionPreview, error) {
	projectID, err := s.requireProject()
	if err != nil {
		return nil, err
	}
	return s.Deletion.Request(ctx, projectID)
}

func (s *Session) ConfirmDeletion(ctx context.Context) error {
	if err := s.Deletion.Confirm(ctx); err != nil {
		return err
	}
	s.projects.Invalidate(ctx, s.Deletion.State().ProjectID)
	return nil
}

// Refresh re-fetches the session's project.
func (s *Session) Refresh(ctx context.Context) (*models.ProjectSnapshot, error) {
	projectID, err := s.requireProject()
	if err != nil {
		return nil, err
	}
	return s.View.Reload(ctx, s.projects, projectID)
}

func (s *Session) ProjectID() string { return s.Conversation.ProjectID() }

func (s *Session) State() SessionState {
	st := SessionState{
		ID:              s.ID,
		ProjectID:       s.ProjectID(),
		Conversation:    s.Conversation.State(),
		Recommendations: s.Recommendations.State(),
		Provisioning:    s.Provisioning.Busy(),
		Retries:         s.Retries.State(),
		Deletion:        s.Deletion.State(),
	}
	snap, err := s.View.Snapshot()
	switch {
	case err == nil:
		st.Project = Detail(snap)
	case st.ProjectID != "" && appErr.IsCode(err, appErr.CodeNotFound):
		st.NotFound = true
	}
	return st
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	if s.ctx.Err() == nil {
		logger.L().Debug("session closed", zap.String("session_id", s.ID), zap.String("project_id", s.ProjectID()))
	}
	s.cancel()
}

// Done is closed once the session ended.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Wait blocks until delayed work has run or been dropped.
func (s *Session) Wait() { s.sched.Wait() }

func (s *Session) requireProject() (string, error) {
	id := s.ProjectID()
	if id == "" {
		return "", appErr.Validation("submit the project details first")
	}
	return id, nil
}

func (s *Session) requireRecommendationsStep() (string, error) {
	id, err := s.requireProject()
	if err != nil {
		return "", err
	}
	if step := s.Conversation.Step(); step != StepRecommendations {
		return "", appErr.Validation("recommendations are not available from the " + string(step) + " step").
			WithMeta("step", string(step))
	}
	return id, nil
}

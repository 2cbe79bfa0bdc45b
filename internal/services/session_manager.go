package services

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
	"github.com/iac-studio/dashboard/pkg/utils"
)

// SessionManager keeps a bounded set of sessions that expire when idle.
// Evicted sessions are closed.
type SessionManager struct {
	api      remote.API
	projects ProjectService
	sessions *expirable.LRU[string, *Session]
}

func NewSessionManager(api remote.API, projects ProjectService, size int, ttl time.Duration) *SessionManager {
	onEvict := func(id string, s *Session) {
		s.Close()
	}
	return &SessionManager{
		api:      api,
		projects: projects,
		sessions: expirable.NewLRU[string, *Session](size, onEvict, ttl),
	}
}

// Open starts a session for the caller of ctx. With a project id the session
// resumes that project; without one it starts at the details step.
func (m *SessionManager) Open(ctx context.Context, projectID string) (*Session, error) {
	s := NewSession(remote.TokenFrom(ctx), m.api, m.projects)
	if projectID != "" {
		if err := s.Resume(ctx, projectID); err != nil {
			s.Close()
			return nil, err
		}
	}
	m.sessions.Add(s.ID, s)
	logger.L().Info("session opened", zap.String("session_id", s.ID), zap.String("project_id", projectID))
	return s, nil
}

// Get returns the caller's session and extends its lifetime.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok || s.Owner != utils.Fingerprint(remote.TokenFrom(ctx)) {
		return nil, appErr.NotFound("session not found").WithMeta("session_id", id)
	}
	m.sessions.Add(id, s)
	return s, nil
}

// Close ends the caller's session.
func (m *SessionManager) Close(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.sessions.Remove(id)
	return nil
}

func (m *SessionManager) Len() int { return m.sessions.Len() }

// CloseAll ends every session; used on shutdown.
func (m *SessionManager) CloseAll() { m.sessions.Purge() }

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iac-studio/dashboard/internal/api/types"
	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/services"
)

// SessionsHandler exposes the per-project workflow. Every mutating route
// answers with the full session state so the front end re-renders from it.
type SessionsHandler struct {
	sessions *services.SessionManager
	validate Validator
}

func NewSessionsHandler(sessions *services.SessionManager, v Validator) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, validate: v}
}

type sendResult struct {
	Message *services.Message     `json:"message"`
	Session services.SessionState `json:"session"`
}

func (h *SessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req types.SessionOpenRequest
	if err := decode(r, h.validate, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.sessions.Open(r.Context(), strings.TrimSpace(req.ProjectID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, s.State())
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error { return nil })
}

func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectDetailsRequest
	if err := decode(r, h.validate, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	h.with(w, r, func(s *services.Session) error {
		_, err := s.SubmitDetails(r.Context(), models.CreateProjectInput{
			Name:             req.Name,
			Description:      req.Description,
			UserRequirements: req.UserRequirements,
			CredentialID:     req.CredentialID,
		})
		return err
	})
}

func (h *SessionsHandler) Continue(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error { return s.Conversation.Continue() })
}

func (h *SessionsHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error { return s.Conversation.Back() })
}

func (h *SessionsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req types.MessageRequest
	if err := decode(r, h.validate, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := s.Send(r.Context(), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, sendResult{Message: msg, Session: s.State()})
}

func (h *SessionsHandler) ToRecommendations(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error { return s.Conversation.ToRecommendations() })
}

func (h *SessionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		_, err := s.GenerateRecommendations(r.Context())
		return err
	})
}

func (h *SessionsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		s.Recommendations.Toggle(chi.URLParam(r, "rid"))
		return nil
	})
}

func (h *SessionsHandler) Provision(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		_, err := s.Provision(r.Context())
		return err
	})
}

func (h *SessionsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		_, err := s.Refresh(r.Context())
		return err
	})
}

// Retry answers 202: the refreshed statuses arrive with a later session read.
func (h *SessionsHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.withStatus(w, r, http.StatusAccepted, func(s *services.Session) error {
		return s.RetryResource(r.Context(), chi.URLParam(r, "rid"))
	})
}

func (h *SessionsHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	h.withStatus(w, r, http.StatusAccepted, func(s *services.Session) error {
		return s.RetryFailed(r.Context())
	})
}

func (h *SessionsHandler) PreviewDeletion(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		_, err := s.PreviewDeletion(r.Context())
		return err
	})
}

func (h *SessionsHandler) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error { return s.ConfirmDeletion(r.Context()) })
}

func (h *SessionsHandler) CancelDeletion(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *services.Session) error {
		s.Deletion.Cancel()
		return nil
	})
}

func (h *SessionsHandler) with(w http.ResponseWriter, r *http.Request, fn func(s *services.Session) error) {
	h.withStatus(w, r, http.StatusOK, fn)
}

func (h *SessionsHandler) withStatus(w http.ResponseWriter, r *http.Request, status int, fn func(s *services.Session) error) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := fn(s); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, status, s.State())
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iac-studio/dashboard/internal/api/types"
	"github.com/iac-studio/dashboard/internal/services"
)

type ProjectsHandler struct {
	svc      services.ProjectService
	validate Validator
}

func NewProjectsHandler(svc services.ProjectService, v Validator) *ProjectsHandler {
	return &ProjectsHandler{svc: svc, validate: v}
}

// List serves the landing overview.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    ov,
		Meta:    &types.Meta{Total: int64(len(ov.Projects))},
	})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, d)
}

// Refresh bypasses the snapshot cache.
func (h *ProjectsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, services.Detail(snap))
}

func (h *ProjectsHandler) AssignCredential(w http.ResponseWriter, r *http.Request) {
	var req types.CredentialAssignRequest
	if err := decode(r, h.validate, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.AssignCredential(r.Context(), chi.URLParam(r, "id"), req.CredentialID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, services.Detail(snap))
}

func (h *ProjectsHandler) Credentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.svc.Credentials(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    creds,
		Meta:    &types.Meta{Total: int64(len(creds))},
	})
}

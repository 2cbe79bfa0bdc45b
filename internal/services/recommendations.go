package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/cost"
	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// SelectionState is a copy of the selection set for rendering.
type SelectionState struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	SelectedIDs     []string                `json:"selectedIds"`
	SelectedCost    float64                 `json:"selectedCost"`
	Generating      bool                    `json:"generating"`
}

// SelectionSet holds the current recommendations and which of them will be
// provisioned. Every selected id refers to a recommendation in the list.
type SelectionSet struct {
	api remote.API

	mu         sync.RWMutex
	recs       []models.Recommendation
	selected   map[string]struct{}
	generating bool
}

func NewSelectionSet(api remote.API) *SelectionSet {
	return &SelectionSet{api: api, selected: map[string]struct{}{}}
}

// Generate asks the backend for a fresh list and replaces both the list and
// the selection, which starts as every recommended-by-default item. On
// failure the previous list and selection stay as they were.
func (s *SelectionSet) Generate(ctx context.Context, projectID string) ([]models.Recommendation, error) {
	if projectID == "" {
		return nil, appErr.Validation("project id is required")
	}
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, appErr.New(appErr.CodeConflict, "recommendations are already being generated")
	}
	s.generating = true
	s.mu.Unlock()

	logger.L().Info("generate recommendations", zap.String("project_id", projectID))
	recs, err := s.api.GenerateRecommendations(ctx, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		logger.L().Error("generate recommendations failed", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}

	recs = normalizeRecommendations(projectID, recs)
	s.recs = recs
	s.selected = make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if r.Recommended() {
			s.selected[r.ID] = struct{}{}
		}
	}
	logger.L().Info("recommendations generated",
		zap.String("project_id", projectID), zap.Int("count", len(recs)), zap.Int("selected", len(s.selected)))
	return append([]models.Recommendation(nil), recs...), nil
}

// normalizeRecommendations assigns a stable id to items the backend sent
// without one (or with a duplicate) and makes the default flag explicit.
func normalizeRecommendations(projectID string, in []models.Recommendation) []models.Recommendation {
	out := make([]models.Recommendation, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, r := range in {
		if _, dup := seen[r.ID]; r.ID == "" || dup {
			name := projectID + "/" + strconv.Itoa(i) + "/" + r.ResourceType + "/" + r.Name
			r.ID = "rec-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
		}
		seen[r.ID] = struct{}{}
		rec := r.Recommended()
		r.IsRecommended = &rec
		out[i] = r
	}
	return out
}

// Toggle flips membership of id and reports whether it is now selected.
// Unknown ids are ignored.
func (s *SelectionSet) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known(id) {
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

// Selected returns the selected recommendations in list order.
func (s *SelectionSet) Selected() []models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Recommendation
	for _, r := range s.recs {
		if _, ok := s.selected[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *SelectionSet) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// Clear drops the list and the selection.
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = nil
	s.selected = map[string]struct{}{}
}

func (s *SelectionSet) State() SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SelectionState{
		Recommendations: append([]models.Recommendation{}, s.recs...),
		SelectedIDs:     []string{},
		SelectedCost:    cost.SelectedCost(s.recs, s.selected),
		Generating:      s.generating,
	}
	for _, r := range s.recs {
		if _, ok := s.selected[r.ID]; ok {
			st.SelectedIDs = append(st.SelectedIDs, r.ID)
		}
	}
	return st
}

func (s *SelectionSet) known(id string) bool {
	for _, r := range s.recs {
		if r.ID == id {
			return true
		}
	}
	return false
}

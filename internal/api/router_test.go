package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iac-studio/dashboard/internal/api/handlers"
	"github.com/iac-studio/dashboard/internal/api/types"
	"github.com/iac-studio/dashboard/internal/cache"
	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote/remotetest"
	"github.com/iac-studio/dashboard/internal/repository"
	"github.com/iac-studio/dashboard/internal/services"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *types.APIError `json:"error"`
}

type testServer struct {
	t       *testing.T
	api     *remotetest.MockAPI
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	api := &remotetest.MockAPI{}
	store := cache.NewMemoryStore(64, time.Minute)
	projects := services.NewProjectService(api, repository.NewProjectRepository(api, store))
	sessions := services.NewSessionManager(api, projects, 16, time.Minute)
	t.Cleanup(sessions.CloseAll)
	v := handlers.NewValidator()

	return &testServer{t: t, api: api, handler: NewRouter(Dependencies{
		ProjectsHandler: handlers.NewProjectsHandler(projects, v),
		SessionsHandler: handlers.NewSessionsHandler(sessions, v),
		HealthHandler:   handlers.NewHealthHandler(map[string]handlers.Pinger{"cache": store}),
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	})}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr.Code, env
}

func (s *testServer) openSession(token string, projectID string) services.SessionState {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/sessions", token, types.SessionOpenRequest{ProjectID: projectID})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	var st services.SessionState
	require.NoError(s.t, json.Unmarshal(env.Data, &st))
	return st
}

func sessionState(t *testing.T, env envelope) services.SessionState {
	t.Helper()
	var st services.SessionState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	return st
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	code, _ = s.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestAPIRequiresBearer(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/v1/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "unauthorized", env.Error.Code)
	s.api.AssertNotCalled(t, "ListProjects", mock.Anything)
}

func TestBackendRejectionMapsToUnauthorized(t *testing.T) {
	s := newTestServer(t)
	s.api.On("ListProjects", mock.Anything).Return(nil, appErr.New(appErr.CodeUnauthorized, "backend rejected credentials"))

	code, env := s.do(http.MethodGet, "/api/v1/projects", "expired", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "unauthorized", env.Error.Code)
}

func TestProjectsOverviewAndDetail(t *testing.T) {
	s := newTestServer(t)
	s.api.On("ListProjects", mock.Anything).Return([]models.Project{
		{ID: "p-1", Name: "shop", Status: models.StatusCode(4), Resources: []models.Resource{
			{ID: "r1", Status: models.StatusName("Failed")},
			{ID: "r2", Status: models.StatusCode(2)},
		}},
	}, nil)
	s.api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"}, []models.Resource{{ID: "r1", Status: models.StatusCode(3)}}, nil)
	s.api.On("GetProject", mock.Anything, "gone").Return(nil, appErr.NotFound("project not found"))

	code, env := s.do(http.MethodGet, "/api/v1/projects", "token-a", nil)
	require.Equal(t, http.StatusOK, code)
	var ov services.Overview
	require.NoError(t, json.Unmarshal(env.Data, &ov))
	require.Equal(t, 1, ov.ActiveProjects)
	require.Equal(t, 1, ov.FailedResources)

	code, env = s.do(http.MethodGet, "/api/v1/projects/p-1", "token-a", nil)
	require.Equal(t, http.StatusOK, code)
	var d services.ProjectDetail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.Equal(t, 1, d.Summary.Failed)

	code, env = s.do(http.MethodGet, "/api/v1/projects/gone", "token-a", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "not_found", env.Error.Code)
}

func TestAssignCredentialValidation(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodPut, "/api/v1/projects/p-1/credential", "token-a", map[string]string{})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid", env.Error.Code)
	s.api.AssertNotCalled(t, "AssignCredential", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionWorkflow(t *testing.T) {
	s := newTestServer(t)
	s.api.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.Project{ID: "p-1", Name: "shop", UserRequirements: "An online store"}, nil)
	s.api.On("AddConversationTurn", mock.Anything, "p-1", "About 5000 users a day").
		Return(&models.TurnReply{Response: "Which region should we use?"}, nil)
	s.api.On("GenerateRecommendations", mock.Anything, "p-1").Return([]models.Recommendation{
		{ID: "web", Name: "App Service", EstimatedMonthlyCost: 55},
		{ID: "db", Name: "SQL Database", EstimatedMonthlyCost: 120, IsRecommended: ptr(false)},
	}, nil)
	s.api.On("ProvisionResources", mock.Anything, "p-1", mock.Anything).Return(nil)
	s.api.ExpectSnapshot("p-1",
		&models.Project{ID: "p-1", Name: "shop", Status: models.StatusCode(3)},
		[]models.Resource{{ID: "r1", Name: "App Service", Status: models.StatusCode(1)}},
		nil,
	)

	st := s.openSession("token-a", "")
	base := "/api/v1/sessions/" + st.ID
	require.Equal(t, services.StepDetails, st.Conversation.Step)

	code, env := s.do(http.MethodPost, base+"/details", "token-a", types.ProjectDetailsRequest{
		Name: "shop", UserRequirements: "An online store", CredentialID: "cred-1",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	require.Equal(t, services.StepAnalysis, sessionState(t, env).Conversation.Step)

	code, env = s.do(http.MethodPost, base+"/continue", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodPost, base+"/recommendations/step", "token-a", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, base+"/messages", "token-a", types.MessageRequest{Content: "About 5000 users a day"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var sent struct {
		Message services.Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	require.Equal(t, services.ReplyAI, sent.Message.Kind)

	code, env = s.do(http.MethodPost, base+"/recommendations/step", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.Equal(t, services.StepRecommendations, sessionState(t, env).Conversation.Step)

	code, env = s.do(http.MethodPost, base+"/recommendations", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	sel := sessionState(t, env).Recommendations
	require.Equal(t, []string{"web"}, sel.SelectedIDs)
	require.Equal(t, 55.0, sel.SelectedCost)

	code, env = s.do(http.MethodPost, base+"/recommendations/db/toggle", "token-a", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 175.0, sessionState(t, env).Recommendations.SelectedCost)

	code, env = s.do(http.MethodPost, base+"/provision", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	after := sessionState(t, env)
	require.Empty(t, after.Recommendations.Recommendations)
	require.NotNil(t, after.Project)
	require.Equal(t, 1, after.Project.Summary.Provisioning)
	s.api.AssertNumberOfCalls(t, "ProvisionResources", 1)

	code, _ = s.do(http.MethodDelete, base, "token-a", nil)
	require.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, base, "token-a", nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestProvisionWithoutSelectionIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"}, nil, []models.Conversation{
		{ID: "c1", UserMessage: "about 500 users", AIResponse: "Noted.", Timestamp: time.Now()},
	})
	st := s.openSession("token-a", "p-1")
	base := "/api/v1/sessions/" + st.ID

	// still in the conversation
	code, env := s.do(http.MethodPost, base+"/provision", "token-a", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "conversation", env.Error.Meta["step"])

	code, _ = s.do(http.MethodPost, base+"/recommendations/step", "token-a", nil)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodPost, base+"/provision", "token-a", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "select at least one recommendation", env.Error.Message)
	s.api.AssertNotCalled(t, "ProvisionResources", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionIsPrivateToItsToken(t *testing.T) {
	s := newTestServer(t)
	st := s.openSession("token-a", "")

	code, env := s.do(http.MethodGet, "/api/v1/sessions/"+st.ID, "token-b", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "not_found", env.Error.Code)

	code, _ = s.do(http.MethodGet, "/api/v1/sessions/"+st.ID, "token-a", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestRetryAndDeletionThroughSession(t *testing.T) {
	s := newTestServer(t)
	s.api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"},
		[]models.Resource{{ID: "r1", Status: models.StatusName("Failed")}}, nil)
	s.api.On("RetryResource", mock.Anything, "p-1", "r1").Return(nil)
	s.api.On("DeleteProject", mock.Anything, "p-1", false).
		Return(&models.DeletionPreview{ResourceCount: 1, Message: "1 resource will be deleted"}, nil)
	s.api.On("DeleteProject", mock.Anything, "p-1", true).Return(nil, nil)
	st := s.openSession("token-a", "p-1")
	base := "/api/v1/sessions/" + st.ID

	code, env := s.do(http.MethodPost, base+"/resources/r1/retry", "token-a", nil)
	require.Equal(t, http.StatusAccepted, code, env.Error)
	code, _ = s.do(http.MethodPost, base+"/resources/missing/retry", "token-a", nil)
	require.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodPost, base+"/delete/confirm", "token-a", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, base+"/delete", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	del := sessionState(t, env).Deletion
	require.Equal(t, services.DeletionConfirming, del.Phase)
	require.Equal(t, 1, del.Preview.ResourceCount)

	code, env = s.do(http.MethodPost, base+"/delete/cancel", "token-a", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, services.DeletionIdle, sessionState(t, env).Deletion.Phase)

	_, _ = s.do(http.MethodPost, base+"/delete", "token-a", nil)
	code, env = s.do(http.MethodPost, base+"/delete/confirm", "token-a", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.Equal(t, services.DeletionDone, sessionState(t, env).Deletion.Phase)
	s.api.AssertNumberOfCalls(t, "DeleteProject", 3)
}

func ptr[T any](v T) *T { return &v }

package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iac-studio/dashboard/internal/models"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Token: "static-token"})
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "not a url"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestGetProjectDecodesNumericStatuses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/projects/p-1", r.URL.Path)
		require.Equal(t, "Bearer static-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id":"p-1","name":"shop","status":4,"resources":[{"id":"r1","status":3}]}`)
	})

	p, err := c.GetProject(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "shop", p.Name)
	code, ok := p.Resources[0].Status.Code()
	require.True(t, ok)
	require.Equal(t, 3, code)
}

func TestContextTokenOverridesStaticToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.ListProjects(WithToken(context.Background(), "user-token"))
	require.NoError(t, err)
}

func TestAddConversationTurnSendsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/projects/p-1/conversations", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "we expect 10k users", body["message"])
		_, _ = io.WriteString(w, `{"response":"Noted."}`)
	})

	reply, err := c.AddConversationTurn(context.Background(), "p-1", "we expect 10k users")
	require.NoError(t, err)
	require.Equal(t, "Noted.", reply.Response)
}

func TestProvisionResourcesPostsSelection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/projects/p-1/provision", r.URL.Path)
		var body struct {
			Recommendations []models.Recommendation `json:"recommendations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Recommendations, 2)
		w.WriteHeader(http.StatusAccepted)
	})

	err := c.ProvisionResources(context.Background(), "p-1", []models.Recommendation{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
}

func TestRetryPaths(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.RetryResource(context.Background(), "p-1", "r-9"))
	require.NoError(t, c.RetryAllFailedResources(context.Background(), "p-1"))
	require.Equal(t, []string{"/api/projects/p-1/resources/r-9/retry", "/api/projects/p-1/resources/retry-failed"}, paths)
}

func TestDeleteProjectPreviewAndConfirm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Query().Get("confirmed") == "false" {
			_, _ = io.WriteString(w, `{"resourceCount":3,"estimatedMonthlyCost":99.5,"message":"3 resources will be deleted"}`)
			return
		}
		require.Equal(t, "true", r.URL.Query().Get("confirmed"))
		w.WriteHeader(http.StatusNoContent)
	})

	preview, err := c.DeleteProject(context.Background(), "p-1", false)
	require.NoError(t, err)
	require.Equal(t, 3, preview.ResourceCount)
	require.Equal(t, 99.5, preview.EstimatedMonthlyCost)

	preview, err = c.DeleteProject(context.Background(), "p-1", true)
	require.NoError(t, err)
	require.Nil(t, preview)
}

func TestErrorStatusesMapToCodes(t *testing.T) {
	cases := []struct {
		status int
		code   appErr.Code
	}{
		{http.StatusUnauthorized, appErr.CodeUnauthorized},
		{http.StatusNotFound, appErr.CodeNotFound},
		{http.StatusBadRequest, appErr.CodeInvalid},
		{http.StatusConflict, appErr.CodeConflict},
		{http.StatusInternalServerError, appErr.CodeUnavailable},
		{http.StatusBadGateway, appErr.CodeUnavailable},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"message":"nope"}`)
		})
		err := c.RetryResource(context.Background(), "p-1", "r-1")
		require.Error(t, err)
		require.True(t, appErr.IsCode(err, tc.code), "status %d: %v", tc.status, err)
	}
}

func TestTransportFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: url})
	require.NoError(t, err)
	_, err = c.GetProject(context.Background(), "p-1")
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
}

func TestReadMessage(t *testing.T) {
	require.Equal(t, "boom", readMessage(strings.NewReader(`{"error":"boom"}`)))
	require.Equal(t, "plain failure", readMessage(strings.NewReader("plain failure\n")))
	require.Equal(t, "", readMessage(strings.NewReader("")))
}


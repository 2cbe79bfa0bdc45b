package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iac-studio/dashboard/internal/models"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Token is used when the request context carries none.
	Token   string
	Timeout time.Duration
	// RPS limits outbound requests; zero disables limiting.
	RPS float64
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client is the HTTP implementation of API.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

var _ API = (*Client)(nil)

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("invalid backend url %q", opts.BaseURL))
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{base: u, token: opts.Token, http: hc}
	if opts.RPS > 0 {
		burst := int(opts.RPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, input models.CreateProjectInput) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProjectResources(ctx context.Context, projectID string) ([]models.Resource, error) {
	var out []models.Resource
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "resources"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProjectConversations(ctx context.Context, projectID string) ([]models.Conversation, error) {
	var out []models.Conversation
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "conversations"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddConversationTurn(ctx context.Context, projectID, message string) (*models.TurnReply, error) {
	var out models.TurnReply
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "conversations"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateRecommendations(ctx context.Context, projectID string) ([]models.Recommendation, error) {
	var out []models.Recommendation
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "recommendations"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProvisionResources(ctx context.Context, projectID string, recs []models.Recommendation) error {
	body := map[string]any{"recommendations": recs}
	return c.do(ctx, http.MethodPost, projectPath(projectID, "provision"), nil, body, nil)
}

func (c *Client) RetryResource(ctx context.Context, projectID, resourceID string) error {
	return c.do(ctx, http.MethodPost, projectPath(projectID, "resources", resourceID, "retry"), nil, nil, nil)
}

func (c *Client) RetryAllFailedResources(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, projectPath(projectID, "resources", "retry-failed"), nil, nil, nil)
}

func (c *Client) DeleteProject(ctx context.Context, projectID string, confirmed bool) (*models.DeletionPreview, error) {
	q := url.Values{"confirmed": []string{strconv.FormatBool(confirmed)}}
	if confirmed {
		return nil, c.do(ctx, http.MethodDelete, projectPath(projectID), q, nil, nil)
	}
	var out models.DeletionPreview
	if err := c.do(ctx, http.MethodDelete, projectPath(projectID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignCredential(ctx context.Context, projectID, credentialID string) error {
	body := map[string]string{"cloudCredentialId": credentialID}
	return c.do(ctx, http.MethodPut, projectPath(projectID, "credential"), nil, body, nil)
}

func (c *Client) ListCredentials(ctx context.Context) ([]models.CloudCredential, error) {
	var out []models.CloudCredential
	if err := c.do(ctx, http.MethodGet, "/api/credentials", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func projectPath(projectID string, rest ...string) string {
	parts := []string{"/api/projects", url.PathEscape(projectID)}
	for _, r := range rest {
		parts = append(parts, url.PathEscape(r))
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return appErr.Wrap(err, appErr.CodeDeadline, "backend rate limit wait aborted")
		}
	}

	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "encode request body failed")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "build request failed")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := TokenFrom(ctx)
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.L().Warn("backend call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		if ctx.Err() != nil {
			return appErr.Wrap(ctx.Err(), appErr.CodeDeadline, "backend call aborted")
		}
		return appErr.Remote(err, fmt.Sprintf("%s %s failed", method, path))
	}
	defer resp.Body.Close()

	logger.L().Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, method, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return appErr.Remote(err, fmt.Sprintf("decode %s %s response failed", method, path))
	}
	return nil
}

func statusError(resp *http.Response, method, path string) error {
	msg := readMessage(resp.Body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	var e *appErr.AppError
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e = appErr.New(appErr.CodeUnauthorized, "backend rejected credentials")
	case http.StatusForbidden:
		e = appErr.New(appErr.CodeForbidden, msg)
	case http.StatusNotFound:
		e = appErr.NotFound(msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e = appErr.New(appErr.CodeInvalid, msg)
	case http.StatusConflict:
		e = appErr.New(appErr.CodeConflict, msg)
	default:
		e = appErr.Remote(fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode), msg)
	}
	return e.WithMeta("status", resp.StatusCode)
}

// readMessage extracts a human readable message from an error body. The
// backend answers either {"message": ...}, {"error": ...} or plain text.
func readMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if json.Unmarshal(b, &body) == nil {
		for _, s := range []string{body.Message, body.Error, body.Title} {
			if s != "" {
				return s
			}
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Package redeploy asks the hosting platform to rebuild the site after a
// content change.
package redeploy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	content "github.com/goliatone/go-content"
)

// DefaultBaseURL is the Vercel REST API root.
const DefaultBaseURL = "https://api.vercel.com"

// ErrNotConfigured is returned when the token or project id is missing.
var ErrNotConfigured = errors.New("redeploy: token and project id are required")

// Config holds the deployment API settings.
type Config struct {
	Token     string        `mapstructure:"token" yaml:"token"`
	ProjectID string        `mapstructure:"project_id" yaml:"project_id"`
	TeamID    string        `mapstructure:"team_id" yaml:"team_id"`
	RepoOwner string        `mapstructure:"repo_owner" yaml:"repo_owner"`
	RepoSlug  string        `mapstructure:"repo_slug" yaml:"repo_slug"`
	Ref       string        `mapstructure:"ref" yaml:"ref"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Configured reports whether deployments can be requested.
func (c Config) Configured() bool {
	return c.Token != "" && c.ProjectID != ""
}

// Deployment is the subset of the API response surfaced to callers.
type Deployment struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	State string `json:"state"`
}

// Status describes the configuration without exposing the token.
type Status struct {
	Configured bool   `json:"configured"`
	ProjectID  string `json:"projectId,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Client triggers deployments.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a client authenticating with a static oauth2 bearer token.
// base supplies the transport and is optional.
func New(cfg Config, base *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Ref == "" {
		cfg.Ref = "main"
	}
	if cfg.RepoSlug == "" {
		cfg.RepoSlug = "landing"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = cfg.Timeout
	return &Client{cfg: cfg, http: httpClient}
}

// Status reports whether the client is configured.
func (c *Client) Status() Status {
	if !c.cfg.Configured() {
		return Status{Message: "Vercel configuration missing"}
	}
	team := c.cfg.TeamID
	if team == "" {
		team = "none"
	}
	return Status{Configured: true, ProjectID: c.cfg.ProjectID, TeamID: team}
}

type gitSource struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
	Ref  string `json:"ref"`
}

type deployRequest struct {
	Name      string     `json:"name"`
	GitSource *gitSource `json:"gitSource,omitempty"`
}

type deployResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	ReadyState string `json:"readyState"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Trigger requests a new production deployment. Without a repo owner the
// platform rebuilds its latest commit.
func (c *Client) Trigger(ctx context.Context) (Deployment, error) {
	if !c.cfg.Configured() {
		return Deployment{}, ErrNotConfigured
	}
	body := deployRequest{Name: c.cfg.ProjectID}
	if owner := strings.TrimSpace(c.cfg.RepoOwner); owner != "" {
		body.GitSource = &gitSource{
			Type: "github",
			Repo: owner + "/" + c.cfg.RepoSlug,
			Ref:  c.cfg.Ref,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Deployment{}, err
	}

	endpoint, err := c.endpoint()
	if err != nil {
		return Deployment{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Deployment{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Deployment{}, &content.UpstreamError{Service: "vercel", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Deployment{}, &content.UpstreamError{Service: "vercel", Status: resp.StatusCode, Err: err}
	}
	var decoded deployResponse
	_ = json.Unmarshal(raw, &decoded)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "Failed to trigger redeploy"
		if decoded.Error != nil && decoded.Error.Message != "" {
			message = decoded.Error.Message
		}
		return Deployment{}, &content.UpstreamError{Service: "vercel", Status: resp.StatusCode, Message: message}
	}
	return Deployment{ID: decoded.ID, URL: decoded.URL, State: decoded.ReadyState}, nil
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/deployments")
	if err != nil {
		return "", fmt.Errorf("redeploy: base url: %w", err)
	}
	if c.cfg.TeamID != "" {
		q := u.Query()
		q.Set("teamId", c.cfg.TeamID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

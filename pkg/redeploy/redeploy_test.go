package redeploy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "github.com/goliatone/go-content"
)

func TestTriggerSendsDeploymentRequest(t *testing.T) {
	var (
		gotAuth  string
		gotQuery string
		gotBody  deployRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("teamId")
		assert.Equal(t, "/v1/deployments", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"dpl_1","url":"landing-abc.vercel.app","readyState":"QUEUED"}`))
	}))
	defer srv.Close()

	client := New(Config{
		Token:     "vtoken",
		ProjectID: "prj_1",
		TeamID:    "team_1",
		RepoOwner: "acme",
		BaseURL:   srv.URL,
	}, srv.Client())

	deployment, err := client.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Deployment{ID: "dpl_1", URL: "landing-abc.vercel.app", State: "QUEUED"}, deployment)
	assert.Equal(t, "Bearer vtoken", gotAuth)
	assert.Equal(t, "team_1", gotQuery)
	assert.Equal(t, "prj_1", gotBody.Name)
	require.NotNil(t, gotBody.GitSource)
	assert.Equal(t, gitSource{Type: "github", Repo: "acme/landing", Ref: "main"}, *gotBody.GitSource)
}

func TestTriggerWithoutOwnerOmitsGitSource(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"id":"dpl_2"}`))
	}))
	defer srv.Close()

	_, err := New(Config{Token: "t", ProjectID: "p", BaseURL: srv.URL}, srv.Client()).Trigger(context.Background())
	require.NoError(t, err)
	_, present := raw["gitSource"]
	assert.False(t, present)
}

func TestTriggerMapsUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"Not authorized"}}`))
	}))
	defer srv.Close()

	_, err := New(Config{Token: "t", ProjectID: "p", BaseURL: srv.URL}, srv.Client()).Trigger(context.Background())
	var upstream *content.UpstreamError
	require.True(t, errors.As(err, &upstream), "got %v", err)
	assert.Equal(t, http.StatusForbidden, upstream.Status)
	assert.Equal(t, "Not authorized", upstream.Message)
	assert.Equal(t, "vercel", upstream.Service)
}

func TestTriggerRequiresConfiguration(t *testing.T) {
	_, err := New(Config{Token: "t"}, nil).Trigger(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, Status{Message: "Vercel configuration missing"}, New(Config{}, nil).Status())
	assert.Equal(t, Status{Configured: true, ProjectID: "p", TeamID: "none"}, New(Config{Token: "t", ProjectID: "p"}, nil).Status())
	assert.Equal(t, "team", New(Config{Token: "t", ProjectID: "p", TeamID: "team"}, nil).Status().TeamID)
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iav0207/fcards2-sub001/internal/api"
	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 8765, LogLevel: "debug", LogFormat: "text",
		},
		Database: config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"},
		Translation: config.TranslationConfig{
			Timeout:    time.Second,
			MaxRetries: 0,
		},
		Session: config.SessionConfig{DefaultMaxCards: 5},
	}
}

func TestNewApplicationWithoutProviders(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), testutils.QuietLogger(), testutils.NewTestDB(t))
	require.NoError(t, err)
	assert.Empty(t, app.chain.Providers())

	w := httptest.NewRecorder()
	app.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestNewApplicationSessionDefaults(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), testutils.QuietLogger(), testutils.NewTestDB(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions",
		strings.NewReader(`{"source_language":"en","target_language":"de","use_sample_cards":true}`))
	app.router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var snapshot api.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.CardIDs, 5, "session.default_max_cards applies")
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Providers.Anthropic = config.AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-3-5-haiku-latest"}
	cfg.Providers.OpenAI = config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}

	registry, err := buildRegistry(context.Background(), cfg, testutils.QuietLogger(), http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "openai"}, registry.Names())

	registry, err = buildRegistry(context.Background(), testConfig(), testutils.QuietLogger(), http.DefaultClient)
	require.NoError(t, err)
	assert.Zero(t, registry.Len())
}

func TestBuildRegistryRejectsIncompleteProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Providers.OpenAI = config.OpenAIConfig{APIKey: "sk-test"}

	_, err := buildRegistry(context.Background(), cfg, testutils.QuietLogger(), http.DefaultClient)
	assert.ErrorContains(t, err, "openai")
}

func TestRunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testutils.NewTestDB(t)
	log := testutils.QuietLogger()

	var out strings.Builder
	require.NoError(t, runMigrations(ctx, db, "status", log, &out))
	assert.NotContains(t, out.String(), "pending")
	assert.NotEmpty(t, out.String())

	require.NoError(t, runMigrations(ctx, db, "down", log, io.Discard))
	out.Reset()
	require.NoError(t, runMigrations(ctx, db, "status", log, &out))
	assert.Contains(t, out.String(), "pending")

	require.NoError(t, runMigrations(ctx, db, "up", log, io.Discard))

	assert.ErrorContains(t, runMigrations(ctx, db, "sideways", log, io.Discard), "unknown migration command")
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveListener(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}), testutils.QuietLogger())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/config"
)

type mockUpstream struct {
	err error
}

func (m *mockUpstream) Health(ctx context.Context) error { return m.err }

func testConfig() *config.Config {
	return &config.Config{
		Version: "test-version",
		Env:     "test",
		Knora: config.KnoraConfig{
			Protocol:       "http",
			Host:           "knora.example",
			Port:           3333,
			OntologyPrefix: "http://0.0.0.0:3333",
		},
	}
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(testConfig(), &mockUpstream{err: assert.AnError}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "liveness does not depend on Knora")
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	upstream := &mockUpstream{}
	mux := http.NewServeMux()
	NewHealthHandler(testConfig(), upstream, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ready ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ready))
	assert.True(t, ready.Ready)
	assert.Equal(t, "http://knora.example:3333", ready.Knora)
	assert.Empty(t, ready.Error)

	upstream.err = &apperrors.UpstreamError{Op: "health", StatusCode: http.StatusServiceUnavailable}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = ReadyResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ready))
	assert.False(t, ready.Ready)
	assert.NotEmpty(t, ready.Error)
}

func TestHealthHandler_Ping(t *testing.T) {
	handler := NewHealthHandler(testConfig(), &mockUpstream{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var response PingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "test-version", response.Version)
	assert.Equal(t, "mls-app-ng", response.Service)
	assert.Equal(t, "test", response.Environment)
	assert.Equal(t, "http://knora.example:3333", response.KnoraURL)
	assert.Equal(t, "http://0.0.0.0:3333/ontology/0807/mls/v2", response.Ontology)
	assert.NotEmpty(t, response.GoVersion)
}

func TestHealthHandler_Metrics(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(testConfig(), &mockUpstream{}, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

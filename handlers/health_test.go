package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/littlebump/sonobot/app"
	"github.com/littlebump/sonobot/config"
	"github.com/littlebump/sonobot/services/dispatch"
)

func healthDeps(apiKeys []string, fallbackKey string) *app.Dependencies {
	return &app.Dependencies{
		Config: &config.Config{
			Environment: "test",
			Gemini:      config.GeminiConfig{APIKeys: apiKeys},
			OpenRouter:  config.OpenRouterConfig{APIKey: fallbackKey},
		},
		Logger:  zap.NewNop(),
		Rotator: dispatch.NewRotator(dispatch.NewKeyPool(apiKeys), 0, dispatch.DefaultRotatorConfig(), dispatch.SystemClock(), zap.NewNop()),
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(healthDeps(nil, ""))(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready with providers and no database", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadinessCheck(healthDeps([]string{"k1"}, ""))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"database":"disabled"`)
		assert.Contains(t, rec.Body.String(), `"providers":"configured"`)
	})

	t.Run("fallback alone counts as a provider", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadinessCheck(healthDeps(nil, "or-key"))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready without any provider", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadinessCheck(healthDeps(nil, ""))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"providers":"none_configured"`)
	})
}

func TestStatusHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StatusHandler(healthDeps([]string{"k1", "k2"}, "or-key"))(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gemini_keys":2`)
	assert.Contains(t, rec.Body.String(), `"fallback_configured":true`)
	assert.Contains(t, rec.Body.String(), `"recording_enabled":false`)
}

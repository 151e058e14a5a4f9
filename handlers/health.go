package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/app"
	"github.com/littlebump/sonobot/utils"
)

// HealthCheck returns a simple liveness handler.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck performs a more thorough readiness check: database
// connectivity when one is configured, and whether any vision provider
// can serve requests.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ready"
		checks := map[string]string{}

		if deps.DB == nil {
			checks["database"] = "disabled"
		} else if err := deps.DB.HealthCheck(ctx); err != nil {
			status = "not_ready"
			checks["database"] = "unhealthy"
			deps.Logger.Error("database health check failed", zap.Error(err))
		} else {
			checks["database"] = "healthy"
		}

		if deps.Config.HasPrimaryProvider() || deps.Config.HasFallbackProvider() {
			checks["providers"] = "configured"
		} else {
			status = "not_ready"
			checks["providers"] = "none_configured"
		}

		httpStatus := http.StatusOK
		if status != "ready" {
			httpStatus = http.StatusServiceUnavailable
		}
		_ = utils.WriteJSON(w, httpStatus, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}

// StatusHandler returns application status information.
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]any{
			"version":             "0.1.0",
			"environment":         deps.Config.Environment,
			"gemini_keys":         deps.Rotator.PoolSize(),
			"fallback_configured": deps.Config.HasFallbackProvider(),
			"recording_enabled":   deps.DB != nil,
		})
	}
}

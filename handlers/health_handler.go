package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/app"
	"github.com/kushwahaamar-dev/sentinel/utils"
)

// HealthCheck reports liveness. It always succeeds while the process
// is serving requests.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck reports readiness, including database connectivity.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"database": "healthy"}
		status := "healthy"
		code := http.StatusOK

		if err := deps.DB.HealthCheck(r.Context()); err != nil {
			deps.Logger.Warn("readiness check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		_ = utils.WriteJSON(w, code, utils.SuccessResponse{Data: map[string]interface{}{
			"status": status,
			"checks": checks,
		}})
	}
}

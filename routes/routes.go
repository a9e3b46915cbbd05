package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kushwahaamar-dev/sentinel/app"
	"github.com/kushwahaamar-dev/sentinel/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Dashboard and reporting endpoints
	r.Get("/status", handlers.StatusHandler(deps))
	r.Get("/history", handlers.HistoryHandler(deps))
	r.Get("/statistics", handlers.StatisticsHandler(deps))
	r.Get("/policy", handlers.PolicyHandler(deps))
	r.Get("/mode", handlers.ModeHandler(deps))
	r.Get("/sources/status", handlers.SourceStatusHandler(deps))
	r.Get("/live/ingest", handlers.LiveIngestHandler(deps))

	// Trigger endpoints require the operator token
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireOperator)
		r.Post("/simulate", handlers.SimulateHandler(deps))
		r.Post("/analyze", handlers.AnalyzeHandler(deps))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Route not found"}`))
	})

	return r
}

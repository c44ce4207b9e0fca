package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"inward-backend/application/commands/bus"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/interfaces/http/rest/handlers"
	"inward-backend/interfaces/http/rest/middleware"
	apperrors "inward-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.inward.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	errorHandler := apperrors.NewErrorHandler(rt.logger, false)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate())

		// Emergence detection
		emergenceHandler := handlers.NewEmergenceHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/emergence", emergenceHandler.GetEmergence)

		// Pattern mirror and resonance
		patternsHandler := handlers.NewPatternsHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
		r.Route("/patterns", func(r chi.Router) {
			r.Get("/mirror", patternsHandler.GetMirror)
			r.Post("/mirror/dismiss", patternsHandler.DismissMirror)
		})
		r.Post("/statelogs/{logID}/resonance", patternsHandler.MarkResonance)

		// Activity rollup
		rollupHandler := handlers.NewRollupHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/rollup/activity", rollupHandler.GetActivity)

		// Insight spotlight
		insightsHandler := handlers.NewInsightsHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/insights/spotlight", insightsHandler.GetSpotlight)

		// On-demand synthesis
		synthesisHandler := handlers.NewSynthesisHandler(rt.queryBus, errorHandler, rt.logger)
		r.Post("/synthesis", synthesisHandler.Synthesize)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}

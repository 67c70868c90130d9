package routes

import (
	"net/http"

	"github.com/zatekoja/catalogsearch/internal/api/handlers"
	"github.com/zatekoja/catalogsearch/internal/api/middleware"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler

	providerRepo    repositories.ProviderRepository
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware may be nil.
func NewRouter(
	searchHandler *handlers.SearchHandler,
	providerRepo repositories.ProviderRepository,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		searchHandler:   searchHandler,
		providerRepo:    providerRepo,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search/services", r.searchHandler.SearchServices)
	r.mux.HandleFunc("GET /api/search/suggestions", r.searchHandler.SearchSuggestions)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoadersMiddleware(r.providerRepo)(handler)
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

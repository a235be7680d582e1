package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authHandler "jamsession/internal/auth/handler"
	"jamsession/internal/auth/models"
	"jamsession/internal/platform/health"
	"jamsession/pkg/platform/httputil"
	"jamsession/pkg/platform/middleware/cors"
	"jamsession/pkg/platform/middleware/metadata"
	request "jamsession/pkg/platform/middleware/request"
	"jamsession/pkg/platform/middleware/requesttime"
)

// Dependencies are the handlers and middleware the router mounts.
// Health and Metrics are optional.
type Dependencies struct {
	Auth           *authHandler.Handler
	Health         *health.Handler
	Metrics        http.Handler
	CORS           *cors.Middleware
	ClientMetadata *metadata.Middleware
	RequestMetrics *request.Metrics
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(deps.ClientMetadata.Handler)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.LatencyMiddleware(deps.RequestMetrics, routePattern))
	r.Use(request.BodyLimit(request.DefaultMaxBodyBytes))
	r.Use(deps.CORS.Handler)

	deps.Auth.Register(r)
	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Wrong methods on known paths are indistinguishable from unknown paths.
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, &models.NotFoundResponse{Error: "Not found"})
}

// routePattern labels latency by matched route so unknown paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	audithandlers "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/handlers"
	eventhandlers "github.com/Black-And-White-Club/stage-console/app/modules/event/infrastructure/handlers"
	roundhandlers "github.com/Black-And-White-Club/stage-console/app/modules/round/infrastructure/handlers"
	undohandlers "github.com/Black-And-White-Club/stage-console/app/modules/undo/infrastructure/handlers"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	"github.com/Black-And-White-Club/stage-console/config"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// HTTPDeps is what the HTTP surface is built from. Nil handler sets are not mounted.
type HTTPDeps struct {
	Config   config.HTTPConfig
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Health   func(ctx context.Context) error

	Round roundhandlers.Handlers
	Event eventhandlers.Handlers
	Undo  undohandlers.Handlers
	Audit audithandlers.Handlers
}

func (app *App) routes() http.Handler {
	return NewHTTPHandler(HTTPDeps{
		Config:   app.Config.HTTP,
		Logger:   app.Logger,
		Registry: app.Registry,
		Health:   app.DB.PingContext,
		Round:    app.Modules.RoundModule.Handlers,
		Event:    app.Modules.EventModule.Handlers,
		Undo:     app.Modules.UndoModule.Handlers,
		Audit:    app.Modules.AuditModule.Handlers,
	})
}

// NewHTTPHandler builds the chi router: request IDs, panic recovery, CORS and a per-IP
// rate limit in front of the event-scoped API.
func NewHTTPHandler(d HTTPDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(correlationID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				d.Logger.WarnContext(ctx, "Health check failed", attr.Error(err))
				httpapi.WriteError(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	limiter := httpapi.NewClientLimiter(rate.Limit(d.Config.RateLimit), d.Config.RateBurst)
	r.Route("/api/events/{scope}", func(r chi.Router) {
		r.Use(httpapi.RateLimit(limiter))

		if d.Round != nil {
			roundhandlers.Mount(r, d.Round)
		}
		if d.Event != nil {
			eventhandlers.Mount(r, d.Event)
		}
		if d.Undo != nil {
			undohandlers.Mount(r, d.Undo)
		}
		if d.Audit != nil {
			audithandlers.Mount(r, d.Audit)
		}
	})
	return r
}

// correlationID makes the chi request ID the correlation ID of everything the request
// triggers, including published messages.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(attr.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

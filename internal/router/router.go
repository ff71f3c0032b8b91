package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gtrac-gateway/internal/config"
	"gtrac-gateway/internal/handler"
	"gtrac-gateway/internal/metrics"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/session"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Proxy  *handler.ProxyHandler
	User   *handler.UserHandler
	Export *handler.ExportHandler
	Pages  *handler.PageHandler

	// Health reports dependency health for /health. Optional.
	Health func(ctx context.Context) error
}

// New wires the gateway routes. m may be nil when metrics are disabled.
func New(cfg *config.Config, jar *session.CookieJar, h Handlers, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler(h.Health))
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.NotFound(apiNotFound)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/logout", h.Auth.Logout)
			auth.Post("/forgot-password", h.Auth.ForgotPassword)
			auth.Post("/reset-password", h.Auth.ResetPassword)
		})

		api.Route("/dashboard", func(dash chi.Router) {
			dash.Use(middleware.RequireAccessToken(jar))

			dash.Get("/user", h.User.Current)
			dash.Route("/{resource}", func(res chi.Router) {
				res.Get("/", h.Proxy.Collection)
				res.Post("/", h.Proxy.Collection)
				res.Get("/export", h.Export.Export)
				res.Get("/{id}", h.Proxy.Item)
				res.Put("/{id}", h.Proxy.Item)
				res.Patch("/{id}", h.Proxy.Item)
				res.Delete("/{id}", h.Proxy.Item)
				res.Get("/{id}/history", h.Proxy.History)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusTemporaryRedirect)
	})
	r.With(middleware.RedirectAuthenticated(jar, "/dashboard", nil)).Get(middleware.LoginPath, h.Pages.Login)

	r.Group(func(pages chi.Router) {
		pages.Use(middleware.SessionGate(jar, nil))

		pages.Get("/dashboard", h.Pages.Dashboard)
		pages.Get("/{resource}", h.Pages.List)
		pages.Get("/{resource}/{id}", h.Pages.Detail)
	})

	r.NotFound(h.Pages.NotFound)

	return r
}

// apiNotFound keeps every /api path on the JSON error contract.
func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"detail":"Not found."}` + "\n"))
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

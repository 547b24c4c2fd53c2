package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rag-console/internal/config"
	"rag-console/internal/handler"
	"rag-console/internal/metrics"
	"rag-console/internal/middleware"
	"rag-console/internal/session"
	"rag-console/internal/view"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Chat      *handler.ChatHandler
	Document  *handler.DocumentHandler
	User      *handler.UserHandler
	Settings  *handler.SettingsHandler
	Health    *handler.HealthHandler
}

// Deps are the shared pieces the route tree mounts alongside the handlers.
type Deps struct {
	Sessions *session.Manager
	Metrics  *metrics.Collector
	Live     http.Handler
	Now      func() time.Time
}

func New(cfg *config.Config, h Handlers, deps Deps) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.TrustedProxies)

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}
	r.Handle("/static/*", view.Static())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(deps.Sessions))

		// websocket connections outlive the request timeout
		if deps.Live != nil {
			r.With(middleware.RequireSessionAPI(now)).Get("/ws", deps.Live.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Get("/", h.Auth.Home)
			r.Get("/login", h.Auth.LoginPage)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.SessionGuard(now))

				r.Get("/dashboard", h.Dashboard.Dashboard)

				r.Get("/chat/document", h.Chat.DocumentChat)
				r.Post("/chat/document", h.Chat.AskDocument)
				r.Get("/chat/policy", h.Chat.PolicyChat)
				r.Post("/chat/policy", h.Chat.AskPolicy)

				r.Get("/documents", h.Document.List)
				r.Post("/documents/upload", h.Document.Upload)
				r.Post("/documents/{id}/delete", h.Document.Delete)

				r.Get("/users", h.User.List)
				r.Post("/users", h.User.Create)
				r.Post("/users/{id}/update", h.User.Update)
				r.Post("/users/{id}/delete", h.User.Delete)

				r.Get("/settings", h.Settings.Show)
				r.Post("/settings", h.Settings.Save)
			})
		})
	})

	return r
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"rag-console/internal/apiclient"
	"rag-console/internal/config"
	"rag-console/internal/database"
	"rag-console/internal/event"
	"rag-console/internal/handler"
	"rag-console/internal/metrics"
	"rag-console/internal/observability"
	"rag-console/internal/repository"
	"rag-console/internal/router"
	"rag-console/internal/session"
	"rag-console/internal/view"
	"rag-console/internal/websocket"
)

const sessionCleanupInterval = 5 * time.Minute

type App struct {
	server       *http.Server
	cleanupFuncs []func(context.Context)
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	a := &App{}

	shutdownTracing, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.OTelServiceName,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.onShutdown(func(ctx context.Context) {
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	})

	checks := map[string]handler.HealthCheck{}
	store, err := a.sessionStore(ctx, cfg, checks)
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}

	manager := session.NewManager(store, session.Options{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	collector := metrics.New("rag_console")
	httpClient := &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: observability.Transport(http.DefaultTransport),
	}
	api := apiclient.New(cfg.APIBaseURL, httpClient, collector)
	slog.Info("backend configured", "base_url", api.BaseURL(), "timeout", cfg.APITimeout)

	views, err := view.New()
	if err != nil {
		a.cleanup(ctx)
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	hubCtx, hubCancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	a.onShutdown(func(context.Context) { hubCancel() })

	console := &handler.Console{
		API:               api,
		Bus:               bus,
		Views:             views,
		Metrics:           collector,
		AllowedExtensions: cfg.AllowedUploadExtensions,
		MaxUploadSize:     cfg.MaxUploadSize,
	}

	appRouter := router.New(cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(console),
		Dashboard: handler.NewDashboardHandler(console),
		Chat:      handler.NewChatHandler(console),
		Document:  handler.NewDocumentHandler(console),
		User:      handler.NewUserHandler(console),
		Settings:  handler.NewSettingsHandler(console),
		Health:    handler.NewHealthHandler(checks),
	}, router.Deps{
		Sessions: manager,
		Metrics:  collector,
		Live:     hub.Handler(originChecker(cfg.CORSOrigins)),
	})

	var root http.Handler = appRouter
	if cfg.OTelEnabled {
		root = observability.Handler(appRouter, "rag-console")
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           root,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

// sessionStore opens the configured session backend and registers its
// health check and cleanup.
func (a *App) sessionStore(ctx context.Context, cfg *config.Config, checks map[string]handler.HealthCheck) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		slog.Info("connecting to Redis", "addr", cfg.RedisAddr)
		client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store := session.NewRedisStore(client, cfg.RedisPrefix)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		a.onShutdown(func(context.Context) { _ = store.Close() })
		return store, nil

	case config.SessionBackendPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			ApplicationName: "rag-console",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		repo := repository.NewSessionRepository(db.Pool)
		checks["postgres"] = db.Health

		cleanupCtx, cancel := context.WithCancel(ctx)
		go runEvery(cleanupCtx, sessionCleanupInterval, func() {
			removed, err := repo.CleanExpired(cleanupCtx)
			if err != nil {
				slog.Warn("session cleanup failed", "error", err)
				return
			}
			if removed > 0 {
				slog.Debug("expired sessions removed", "count", removed)
			}
		})
		a.onShutdown(func(context.Context) {
			cancel()
			db.Close()
		})
		return repo, nil

	default:
		store := session.NewMemoryStore()
		cleanupCtx, cancel := context.WithCancel(ctx)
		go store.StartCleanupTicker(cleanupCtx, sessionCleanupInterval)
		a.onShutdown(func(context.Context) { cancel() })
		slog.Warn("using in-memory sessions; logins are lost on restart")
		return store, nil
	}
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// originChecker accepts same-host websocket upgrades plus any configured
// CORS origin. A wildcard does not widen it: the socket rides on the cookie.
func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if parsed.Host == r.Host {
			return true
		}
		return slices.Contains(origins, origin)
	}
}

func (a *App) onShutdown(fn func(context.Context)) {
	a.cleanupFuncs = append(a.cleanupFuncs, fn)
}

// cleanup runs in reverse registration order.
func (a *App) cleanup(ctx context.Context) {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i](ctx)
	}
	a.cleanupFuncs = nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup(ctx)

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

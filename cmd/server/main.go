package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/http/health"
	"github.com/janisto/fitsocial/internal/http/v1/routes"
	"github.com/janisto/fitsocial/internal/localcache"
	"github.com/janisto/fitsocial/internal/platform/auth"
	"github.com/janisto/fitsocial/internal/platform/config"
	"github.com/janisto/fitsocial/internal/platform/firebase"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
	appmiddleware "github.com/janisto/fitsocial/internal/platform/middleware"
	"github.com/janisto/fitsocial/internal/platform/respond"
	"github.com/janisto/fitsocial/internal/social"
	"github.com/janisto/fitsocial/internal/store"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const apiPrefix = "/v1"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}
	if err := run(); err != nil {
		applog.LogFatal(context.Background(), "agent stopped", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	ctx := context.Background()
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.GoogleApplicationCredentials,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := clients.Close(); err != nil {
			applog.LogError(ctx, "firestore close error", err)
		}
	}()

	backend, checks, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	cache, err := localcache.New(backend)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			applog.LogError(ctx, "cache close error", err)
		}
	}()

	tokens := auth.NewFileTokens(cfg.IDTokenFile)
	provider := auth.NewProvider(tokens, auth.NewFirebaseVerifier(clients.Auth))
	client := social.NewClient(store.NewFirestoreStore(clients.Firestore), cache, provider)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, client, tokens, checks),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("cacheBackend", cfg.CacheBackend),
			zap.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}

// newBackend opens the configured local cache backend. Backends with a
// network dependency are also returned as health checks.
func newBackend(ctx context.Context, cfg *config.Config) (localcache.Backend, map[string]health.Checker, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rb, err := localcache.NewRedisBackend(cfg.RedisURL, cfg.CachePrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		if err := rb.Ping(ctx); err != nil {
			applog.LogWarn(ctx, "redis cache not reachable at startup", zap.Error(err))
		}
		return rb, map[string]health.Checker{"cache": rb}, nil
	case config.CacheMemory:
		return localcache.NewMemoryBackend(), nil, nil
	default:
		return localcache.NewFileBackend(cfg.CachePath), nil, nil
	}
}

// newRouter builds the HTTP handler: plain chi routes for health and the Huma
// API under /v1.
func newRouter(cfg *config.Config, client *social.Client, tokens auth.TokenStore, checks map[string]health.Checker) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(apiPrefix+"/api-docs"),
		appmiddleware.Vary("Accept"),
		appmiddleware.CORS(cfg.CORSOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// Only trust it behind a reverse proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(cfg.FirebaseProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(checks))

	router.Route(apiPrefix, func(r chi.Router) {
		r.NotFound(respond.NotFoundHandler())
		r.MethodNotAllowed(respond.MethodNotAllowedHandler())

		humaCfg := huma.DefaultConfig("fitsocial agent API", Version)
		humaCfg.DocsPath = "/api-docs"
		humaCfg.Servers = []*huma.Server{{URL: apiPrefix}}
		humaCfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"session": {
				Type:        "http",
				Scheme:      "bearer",
				Description: "The agent's signed-in session; sign in with PUT /v1/session.",
			},
		}
		api := humachi.New(r, humaCfg)
		addCBORContent(api)
		routes.Register(api, client, tokens)
	})
	return router
}

// addCBORContent lists application/cbor next to every JSON request and
// response body in the OpenAPI document.
func addCBORContent(api huma.API) {
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)
}

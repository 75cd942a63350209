package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdocs/internal/auth"
	"github.com/kailas-cloud/semdocs/internal/config"
	dbRedis "github.com/kailas-cloud/semdocs/internal/db/redis"
	"github.com/kailas-cloud/semdocs/internal/domain"
	logpkg "github.com/kailas-cloud/semdocs/internal/logger"
	"github.com/kailas-cloud/semdocs/internal/metrics"
	documentrepo "github.com/kailas-cloud/semdocs/internal/repository/document"
	"github.com/kailas-cloud/semdocs/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/semdocs/internal/repository/search"
	"github.com/kailas-cloud/semdocs/internal/repository/sqlite"
	chiTransport "github.com/kailas-cloud/semdocs/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/semdocs/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/semdocs/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/semdocs/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/semdocs/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/semdocs/internal/usecase/search"
	"github.com/kailas-cloud/semdocs/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Configuration is read from config/<ENV>.yaml (ENV defaults to "local").`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, config.GetEnv())
		},
	}
}

// backend is the datastore seen by the use cases.
type backend struct {
	inserter ingestuc.Inserter
	matcher  searchuc.Matcher
	pinger   healthuc.DBPinger
	cache    *dbRedis.Store // nil for sqlite
	close    func()
}

func runServe(ctx context.Context, env string) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semdocs API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	be, err := openBackend(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	embedder := buildEmbedder(&cfg, be.cache)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", be.cache != nil && cfg.Embedding.Cache),
	)

	// Documents and queries share one embedder so their vectors are comparable.
	server := chiTransport.NewServer(
		auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer),
		ingestuc.New(be.inserter, embedder, cfg.Embedding.Dimensions),
		searchuc.New(be.matcher, embedder),
		healthuc.New(be.pinger, embedder),
		cfg.HTTP.MaxBodyBytes,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.CORS.AllowedOrigins(), logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// openBackend connects the configured datastore and prepares its schema.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}

		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database")

		docRepo := documentrepo.New(store, documentrepo.IndexOptions{
			Dimensions:     cfg.Embedding.Dimensions,
			HNSWM:          cfg.Index.HNSWM,
			EFConstruction: cfg.Index.HNSWEFConstruct,
		})
		if err := docRepo.EnsureIndex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure index: %w", err)
		}

		return &backend{
			inserter: docRepo,
			matcher:  searchrepo.New(store),
			pinger:   store,
			cache:    store,
			close:    store.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Opened sqlite database", zap.String("path", cfg.Database.SQLitePath))

		return &backend{
			inserter: store,
			matcher:  store,
			pinger:   store,
			close:    func() { _ = store.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// embedder is the chain shared by ingestion, search and health.
type embedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg *config.Config, cache *dbRedis.Store) embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})

	var inner domain.Embedder = base
	if cfg.Embedding.Cache && cache != nil {
		inner = &healthyCache{
			CachedEmbedder: embcache.New(base, cache, cfg.Embedding.Model,
				time.Duration(cfg.Embedding.CacheTTL)*time.Second, metrics.EmbeddingCacheTotal),
			checker: base,
		}
	}

	return embeddinguc.NewInstrumentedEmbedder(inner, cfg.Embedding.Provider, cfg.Embedding.Model)
}

// healthyCache keeps the provider health check reachable through the cache decorator.
type healthyCache struct {
	*embcache.CachedEmbedder
	checker domain.HealthChecker
}

func (h *healthyCache) HealthCheck(ctx context.Context) error {
	return h.checker.HealthCheck(ctx)
}

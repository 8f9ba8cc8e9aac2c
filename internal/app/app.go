package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/config"
	"github.com/vanisarees/storefront/internal/event"
	handler "github.com/vanisarees/storefront/internal/handler/http"
	"github.com/vanisarees/storefront/internal/repository"
	"github.com/vanisarees/storefront/internal/repository/file"
	"github.com/vanisarees/storefront/internal/repository/memory"
	pgrepo "github.com/vanisarees/storefront/internal/repository/postgres"
	redisrepo "github.com/vanisarees/storefront/internal/repository/redis"
	"github.com/vanisarees/storefront/internal/repository/remote"
	"github.com/vanisarees/storefront/internal/repository/sqlite"
	"github.com/vanisarees/storefront/internal/session"
	"github.com/vanisarees/storefront/pkg/database"
	"github.com/vanisarees/storefront/pkg/health"
	"github.com/vanisarees/storefront/pkg/httpclient"
	pkgkafka "github.com/vanisarees/storefront/pkg/kafka"
	"github.com/vanisarees/storefront/pkg/middleware"
	"github.com/vanisarees/storefront/pkg/tracing"
)

// closer releases one dependency during shutdown.
type closer struct {
	name  string
	close func(context.Context) error
}

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	health     *health.Handler
	sessions   *session.Manager
	httpServer *http.Server

	// closers run in reverse order of creation.
	closers []closer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{
		cfg:    cfg,
		logger: logger,
		health: health.NewHandler(),
	}

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.onClose("tracer", shutdownTracer)

	storage, err := a.openStorage(ctx)
	if err != nil {
		a.closeAll(context.Background())
		return nil, err
	}

	source, err := a.openCatalog(ctx)
	if err != nil {
		a.closeAll(context.Background())
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithPageSize(cfg.CatalogPage),
		session.WithHoverDwell(cfg.HoverDwell()),
	}
	if cfg.EventsEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.onClose("kafka producer", func(context.Context) error { return producer.Close() })
		a.health.Register("kafka", producer.Ping)
		opts = append(opts, session.WithEvents(event.NewProducer(producer, logger)))
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.sessions = session.NewManager(storage, source, opts...)

	var apiMiddleware []func(http.Handler) http.Handler
	if cfg.RateLimitRPS > 0 {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	router := handler.NewRouter(a.sessions, a.health, logger, cfg.CORSAllowedOrigins, apiMiddleware...)
	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// openStorage returns the collection storage selected by STORAGE_DRIVER.
func (a *App) openStorage(ctx context.Context) (repository.Storage, error) {
	switch a.cfg.StorageDriver {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.onClose("redis", func(context.Context) error { return rdb.Close() })
		a.health.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		a.logger.Info("connected to Redis", slog.String("addr", a.cfg.Redis().Addr()))
		return redisrepo.NewStorage(rdb, a.cfg.CollectionTTL()), nil

	case config.StorageSQLite:
		st, err := sqlite.Open(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		a.onClose("sqlite", func(context.Context) error { return st.Close() })
		a.health.Register("sqlite", st.Ping)
		a.logger.Info("opened SQLite storage", slog.String("path", a.cfg.SQLitePath))
		return st, nil

	case config.StorageFile:
		st, err := file.NewStorage(a.cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		a.logger.Info("using file storage", slog.String("dir", a.cfg.StorageDir))
		return st, nil

	default:
		a.logger.Warn("using in-memory storage, collections are lost on restart")
		return memory.New(), nil
	}
}

// openCatalog returns the catalog source selected by CATALOG_SOURCE.
func (a *App) openCatalog(ctx context.Context) (catalog.Source, error) {
	if a.cfg.CatalogSource == config.CatalogHTTP {
		breaker := httpclient.NewBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultBreakerConfig("catalog"),
			a.logger,
		)
		a.health.Register("catalog", func(context.Context) error {
			if breaker.State() == gobreaker.StateOpen {
				return httpclient.ErrCircuitOpen
			}
			return nil
		})
		a.logger.Info("reading catalog over HTTP", slog.String("base_url", a.cfg.CatalogBaseURL))
		return remote.NewCatalogSource(breaker, a.cfg.CatalogBaseURL), nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to catalog database: %w", err)
	}
	a.onClose("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})
	a.health.Register("postgres", pool.Ping)
	database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold(), a.logger)
	a.logger.Info("connected to catalog database",
		slog.String("host", a.cfg.DatabaseHost),
		slog.String("database", a.cfg.DatabaseName),
	)
	return pgrepo.NewCatalogSource(pool), nil
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and the session sweeper and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.sessions.RunSweeper(sweepCtx, a.cfg.SessionSweepInterval, a.cfg.SessionIdleTTL)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		stopSweeper()
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. In-flight requests finish, then
// every session flushes its collections before storage is closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")
	a.health.SetDraining()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.sessions.Close()
	a.closeAll(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(ctx); err != nil {
			a.logger.Error("close error",
				slog.String("component", c.name),
				slog.String("error", err.Error()),
			)
		}
	}
	a.closers = nil
}

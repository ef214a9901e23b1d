package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/config"
	"github.com/vietddude/authkit/internal/core/cooldown"
	"github.com/vietddude/authkit/internal/core/errlog"
	"github.com/vietddude/authkit/internal/core/present"
	"github.com/vietddude/authkit/internal/core/retry"
	"github.com/vietddude/authkit/internal/health"
	"github.com/vietddude/authkit/internal/infra/authapi"
	redisclient "github.com/vietddude/authkit/internal/infra/redis"
	"github.com/vietddude/authkit/internal/infra/storage"
	"github.com/vietddude/authkit/internal/infra/storage/memory"
	"github.com/vietddude/authkit/internal/infra/storage/postgres"
	"github.com/vietddude/authkit/internal/metrics"
)

// App wires the auth client and its collaborators from configuration.
type App struct {
	Client     *authapi.Client
	Classifier *classify.Classifier
	Executor   *retry.Executor
	Logger     errlog.Logger
	Dispatcher *present.Dispatcher

	cfg          *config.AppConfig
	db           *postgres.DB
	redisClient  *redisclient.Client
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger
}

// NewApp creates the application. Redis and Postgres are optional: without
// them cooldowns and sessions live in process memory.
func NewApp(ctx context.Context, cfg *config.AppConfig, presenter present.Presenter) (*App, error) {
	log := slog.Default().With("component", "app")
	logger := metrics.NewLogger(errlog.NewSlogLogger(slog.Default()))
	classifier := classify.New()
	executor := retry.NewExecutor(cfg.Retry.Policy(), classifier, logger)

	a := &App{
		Classifier: classifier,
		Executor:   executor,
		Logger:     logger,
		Dispatcher: present.NewDispatcher(presenter, logger),
		cfg:        cfg,
		log:        log,
	}

	// 1. Cooldown gate
	var gate cooldown.Gate = cooldown.NewMemoryGate()
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = rc
		gate = rc
		log.Info("Using Redis cooldown gate")
	}

	// 2. Session storage
	var sessions storage.SessionRepository = memory.NewSessionRepo()
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			a.closeStores()
			return nil, err
		}
		sessions = postgres.NewSessionRepo(db)
		log.Info("Using PostgreSQL session store")
	}

	// 3. Client
	a.Client = authapi.NewClient(cfg.API,
		authapi.WithClassifier(classifier),
		authapi.WithExecutor(executor),
		authapi.WithGate(gate),
		authapi.WithSessions(sessions),
		authapi.WithLogger(logger),
	)

	// 4. Health checks make one attempt each so a throttled or slow backend
	// cannot stall the monitor.
	checker := authapi.NewClient(cfg.API,
		authapi.WithClassifier(classifier),
		authapi.WithExecutor(retry.NewExecutor(retry.Policy{MaxRetries: 0}, classifier, logger)),
		authapi.WithGate(gate),
		authapi.WithLogger(logger),
	)
	a.healthMon = health.NewMonitor(checker, classifier)
	a.healthMon.SetCheckTimeout(cfg.Monitor.Timeout)
	if a.db != nil {
		a.healthMon.AddDependency("sessions", a.db)
	}
	if a.redisClient != nil {
		a.healthMon.AddDependency("cooldown", a.redisClient)
	}
	a.healthServer = health.NewServer(a.healthMon, cfg.Monitor.Port)

	return a, nil
}

// Start runs the health monitor and its HTTP server in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	go a.healthMon.Run(ctx, a.cfg.Monitor.Interval)

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	a.log.Info("Health monitor started", "port", a.cfg.Monitor.Port, "interval", a.cfg.Monitor.Interval)
	return nil
}

// Stop stops the server and closes the stores.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping...")
	err := a.healthServer.Stop(ctx)
	a.closeStores()
	return err
}

// Close releases the stores without touching the health server.
func (a *App) Close() {
	a.closeStores()
}

func (a *App) closeStores() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/internal/adapters/postgres"
	"github.com/aretw0/teller/internal/config"
	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/pkg/adapters/memory"
	"github.com/aretw0/teller/pkg/adapters/openai"
	"github.com/aretw0/teller/pkg/adapters/redis"
	"github.com/aretw0/teller/pkg/observability"
	"github.com/aretw0/teller/pkg/persistence/middleware"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App bundles the services built from a configuration.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Engine  *teller.Engine
	Metrics *observability.Metrics

	// Store is the session store as the engine sees it (decrypting).
	Store ports.StateStore

	closers []func() error
}

// NewLogger builds the application logger described by cfg.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == config.FormatJSON {
		return logging.NewJSON(level), nil
	}
	return logging.New(level), nil
}

// Build wires the engine and its collaborators from cfg.
// The caller must Close the returned App.
func Build(ctx context.Context, cfg config.Config) (_ *App, err error) {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	bank, err := app.buildBank(ctx)
	if err != nil {
		return nil, err
	}

	store, locker, err := app.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Store = store

	classifier, err := nlu.NewClassifier(nlu.Strategy(cfg.NLU.Classifier),
		nlu.WithThreshold(cfg.NLU.Threshold),
		nlu.WithSmoothing(cfg.NLU.Smoothing),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	app.Metrics = metrics

	opts := []teller.Option{
		teller.WithBank(bank),
		teller.WithStore(store),
		teller.WithClassifier(classifier),
		teller.WithLogger(logger),
		teller.WithAnnualRate(cfg.Bank.AnnualRate),
		teller.WithLifecycleHooks(metrics.Hooks()),
		teller.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if locker != nil {
		opts = append(opts, teller.WithLocker(locker))
	}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, teller.WithResponder(
			openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, openai.WithModel(cfg.OpenAI.Model)),
		))
		logger.Info("Model-backed responder enabled", "model", cfg.OpenAI.Model)
	}

	app.Engine, err = teller.New(opts...)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) buildBank(ctx context.Context) (ports.Banking, error) {
	cfg := a.Config.Bank
	if cfg.Driver != config.BankPostgres {
		a.Logger.Info("Using in-memory demo bank")
		return memory.NewDemoBank(memory.WithAnnualRate(cfg.AnnualRate)), nil
	}

	bank, err := postgres.Open(ctx, cfg.DSN,
		postgres.WithAnnualRate(cfg.AnnualRate),
		postgres.WithLogger(a.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open bank database: %w", err)
	}
	a.closers = append(a.closers, bank.Close)

	if cfg.Migrate {
		if err := bank.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to apply bank schema: %w", err)
		}
		a.Logger.Info("Bank schema applied")
	}
	return bank, nil
}

func (a *App) buildStore(ctx context.Context) (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config.Session

	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Store {
	case config.StoreRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.IdleTimeout),
		)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		if cfg.DistributedLock {
			locker = redis.NewLocker(rs.Client(), redis.DefaultLockPrefix)
		}
		store = rs
		a.Logger.Info("Using redis session store", "addr", cfg.Redis.Addr)
	default:
		store = memory.NewStore()
	}

	if cfg.EncryptionKey == "" {
		return store, locker, nil
	}
	encryption, err := newEncryption(cfg)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, encryption), locker, nil
}

func newEncryption(cfg config.SessionConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session.encryption_key: %w", err)
	}
	var fallbacks [][]byte
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("session.fallback_keys[%d]: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallbacks,
	})
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

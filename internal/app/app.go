package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"RunRaiser/internal/config"
	"RunRaiser/internal/domain"
	"RunRaiser/internal/generator"
	"RunRaiser/internal/infrastructure/resilience"
	"RunRaiser/internal/infrastructure/scheduler"
	"RunRaiser/internal/infrastructure/simulated"
	"RunRaiser/internal/infrastructure/snapshot"
	"RunRaiser/internal/infrastructure/storage"
	"RunRaiser/internal/infrastructure/telegram"
	"RunRaiser/internal/judge"
	"RunRaiser/internal/logging"
	"RunRaiser/internal/memory"
	"RunRaiser/internal/metrics"
	"RunRaiser/internal/ports"
	"RunRaiser/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	orchestrator *usecase.Orchestrator
	metrics      *metrics.Collector
	closers      []func() error
}

// Options overrides collaborators that New would otherwise build from cfg.
type Options struct {
	Clock func() time.Time
	NewID func() string
	Store ports.MemoryStore
}

// New builds a runnable application instance from cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.NewCollector()}
	policy := resilience.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = a.buildStore(ctx, opts.Clock())
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	store = resilience.MemoryStore(store, policy)

	provider := simulated.NewProvider(opts.Clock)
	fundraising, err := a.buildFundraising(provider)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	publisher, err := a.buildPublisher(policy)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	gate := judge.NewSafetyGate(judge.NewHeuristic(cfg.Judge.Rubric), cfg.Judge.BannedPhrases)

	a.orchestrator = usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Memory:      store,
		Activity:    resilience.ActivitySource(provider, policy),
		Fundraising: resilience.FundraisingSource(fundraising, policy),
		Generator:   resilience.Generator(generator.NewTemplate(cfg.Campaign.CharityName, cfg.Campaign.CurrencySymbol), policy),
		Judge:       resilience.Judge(gate, policy),
		Publisher:   publisher,
		Updater:     memory.NewUpdater(store, cfg.Memory.HistoryLimit, opts.Clock),
		Observer:    a.metrics,
		Logger:      baseLogger.With("component", "orchestrator"),
		Clock:       opts.Clock,
		NewID:       opts.NewID,
	})

	return a, nil
}

func (a *Application) buildStore(ctx context.Context, now time.Time) (ports.MemoryStore, error) {
	seed := simulated.SeedMemory(now)
	mc := a.cfg.Memory

	switch mc.Backend {
	case "", config.MemoryInProcess:
		return storage.NewInProcessStore(seed), nil
	case config.MemorySQLite, config.MemoryPostgres:
		dialect := storage.DialectSQLite
		if mc.Backend == config.MemoryPostgres {
			dialect = storage.DialectPostgres
		}
		db, err := storage.Open(ctx, dialect, mc.DSN)
		if err != nil {
			return nil, fmt.Errorf("open memory store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return storage.NewSQLStore(db, dialect, a.cfg.Campaign.ID, seed), nil
	case config.MemoryRedis:
		client := redis.NewClient(&redis.Options{Addr: mc.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", mc.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		return storage.NewRedisStore(client, mc.RedisKey, seed), nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", mc.Backend)
	}
}

func (a *Application) buildFundraising(provider *simulated.Provider) (ports.FundraisingSource, error) {
	fc := a.cfg.Fundraising
	switch fc.Source {
	case "", config.SourceSimulated:
		return provider, nil
	case config.SourceSnapshot:
		if fc.SnapshotPath == "" {
			return nil, errors.New("fundraising snapshot source requires snapshotPath")
		}
		return snapshot.NewFileSource(fc.SnapshotPath, fc.MaxDonations,
			a.logger.With("component", "fundraising.snapshot")), nil
	default:
		return nil, fmt.Errorf("unknown fundraising source %q", fc.Source)
	}
}

func (a *Application) buildPublisher(policy resilience.Policy) (ports.Publisher, error) {
	pc := a.cfg.Publisher
	switch pc.Mode {
	case "", config.PublisherSimulated:
		return resilience.Publisher(simulated.NewPublisher(pc.PreviewLength), policy), nil
	case config.PublisherTelegram:
		if pc.Telegram.BotToken == "" || pc.Telegram.ChatID == "" {
			return nil, errors.New("telegram publisher requires bot token and chat id")
		}
		return telegram.NewPublisher(telegram.Options{
			APIBase:       pc.Telegram.APIBase,
			BotToken:      pc.Telegram.BotToken,
			ChatID:        pc.Telegram.ChatID,
			PreviewLength: pc.PreviewLength,
			MaxRetries:    a.cfg.Retry.MaxRetries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown publisher mode %q", pc.Mode)
	}
}

// Run validates req and performs a single orchestrated session.
func (a *Application) Run(ctx context.Context, req domain.PostRequest) (usecase.Result, error) {
	if err := req.Validate(); err != nil {
		return usecase.Result{}, err
	}
	return a.orchestrator.Run(ctx, req)
}

// Schedule runs the configured request every interval until ctx is cancelled.
// When a metrics address is configured the Prometheus endpoint is served alongside.
func (a *Application) Schedule(ctx context.Context, req domain.PostRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var server *http.Server
	serveErr := make(chan error, 1)
	if addr := a.cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.logger.Info("metrics endpoint listening", "addr", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.orchestrator, req, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval.String())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		runErr = fmt.Errorf("serve metrics: %w", runErr)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if server != nil {
		if err := server.Shutdown(stopCtx); err != nil {
			a.logger.Warn("metrics shutdown", "error", err)
		}
	}
	return runErr
}

// Metrics exposes the run collector.
func (a *Application) Metrics() *metrics.Collector {
	return a.metrics
}

// Close releases store connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

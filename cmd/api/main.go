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

	"intake_backend/internal/assessment"
	"intake_backend/internal/assessment/repository"
	"intake_backend/internal/assessment/service"
	"intake_backend/internal/assessment/validation"
	"intake_backend/internal/crm"
	"intake_backend/internal/email"
	"intake_backend/internal/events"
	apphttp "intake_backend/internal/http"
	"intake_backend/internal/http/router"
	"intake_backend/internal/notification"
	"intake_backend/internal/residential"
	"intake_backend/internal/scheduler"
	"intake_backend/migrations"
	"intake_backend/platform/config"
	"intake_backend/platform/db"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"
	"intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	m := metrics.New()
	val := validator.New()
	eventBus := events.NewInMemoryBus(log)

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(cfg, migrations.FS, ".")
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not configured; submissions are kept in memory")
	}

	var rdb *redis.Client
	if cfg.IsRedisEnabled() {
		if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
			c, err := db.NewRedisClient(ctx, cfg)
			if err != nil {
				return err
			}
			rdb = c
			return nil
		}); err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = rdb.Close() }()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule := notification.New(email.NewSender(cfg), cfg.GetSalesAlertEmail(), log)
	notificationModule.RegisterHandlers(eventBus)

	dispatcher, closeDispatcher := initDispatcher(cfg, log, m)
	defer closeDispatcher()

	gate, err := validation.NewGate(val, cfg.GetMinB2BUnits())
	if err != nil {
		panic("failed to initialize validation gate: " + err.Error())
	}

	guard := initCooldownGuard(pool, rdb)
	assessmentSvc := service.New(service.Options{
		Store:      initSubmissionStore(pool),
		Guard:      guard,
		Gate:       gate,
		Dispatcher: dispatcher,
		Bus:        eventBus,
		Metrics:    m,
		Log:        log,
		Cooldown:   cfg.GetIPCooldown(),
		CampaignID: cfg.GetA2PCampaignID(),
	})
	assessmentModule := assessment.NewModule(assessmentSvc, val)

	var residentialStore residential.Store = residential.NewMemoryStore()
	if pool != nil {
		residentialStore = residential.NewRepository(pool)
	}
	residentialModule := residential.NewModule(residentialStore, val, dispatcher, eventBus, m, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Metrics:  m,
		Modules: []apphttp.Module{
			assessmentModule,
			residentialModule,
		},
	}
	if pool != nil {
		app.Health = db.NewPoolAdapter(pool)
	} else if rdb != nil {
		app.Health = db.NewRedisAdapter(rdb)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		scheduler.NewCooldownSweeper(guard, log, cfg.GetCooldownSweepInterval()).Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		assessmentSvc.Wait()
		residentialModule.Service().Wait()
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func initSubmissionStore(pool *pgxpool.Pool) repository.SubmissionStore {
	if pool != nil {
		return repository.NewRepository(pool)
	}
	return repository.NewMemoryStore()
}

// initCooldownGuard prefers Redis, then Postgres, then process memory.
func initCooldownGuard(pool *pgxpool.Pool, rdb *redis.Client) repository.CooldownGuard {
	switch {
	case rdb != nil:
		return repository.NewRedisCooldownGuard(rdb)
	case pool != nil:
		return repository.NewPostgresCooldownGuard(pool)
	default:
		return repository.NewMemoryCooldownGuard()
	}
}

// initDispatcher queues CRM deliveries on asynq when Redis is configured and
// otherwise posts them inline.
func initDispatcher(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (crm.Dispatcher, func()) {
	inline := crm.NewClient(cfg, log, m)
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; CRM webhooks are delivered inline")
		return inline, func() {}
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize delivery queue, falling back to inline delivery", "error", err)
		return inline, func() {}
	}
	return client, func() { _ = client.Close() }
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

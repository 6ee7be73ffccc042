package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"intake_backend/internal/crm"
	"intake_backend/internal/email"
	"intake_backend/internal/events"
	"intake_backend/internal/notification"
	"intake_backend/internal/scheduler"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewInMemoryBus(log)

	notificationModule := notification.New(email.NewSender(cfg), cfg.GetSalesAlertEmail(), log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker metrics are not exposed over HTTP.
	crmClient := crm.NewClient(cfg, log, metrics.New())

	worker, err := scheduler.NewWorker(cfg, crmClient, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	log.Info("scheduler stopped")
}

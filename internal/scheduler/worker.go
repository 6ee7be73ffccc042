package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    *crm.Client
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, client *crm.Client, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(client, bus, log)
	w.server = server
	return w, nil
}

func newWorker(client *crm.Client, bus events.Bus, log *logger.Logger) *Worker {
	w := &Worker{
		mux: asynq.NewServeMux(),
		crm: client,
		bus: bus,
		log: log,
	}
	w.mux.HandleFunc(TaskCRMDelivery, w.handleCRMDelivery)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return
	}

	<-ctx.Done()
	w.server.Shutdown()
}

func (w *Worker) handleCRMDelivery(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMDeliveryPayload(task)
	if err != nil {
		return fmt.Errorf("parse crm delivery: %v: %w", err, asynq.SkipRetry)
	}

	submissionID, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("parse submission id: %v: %w", err, asynq.SkipRetry)
	}

	res := w.crm.Send(ctx, payload.Target, json.RawMessage(payload.Body))

	finished := events.CRMDeliveryFinished{
		BaseEvent:    events.NewBaseEvent(),
		SubmissionID: submissionID,
		Target:       payload.Target,
		Outcome:      string(res.Outcome),
		Status:       res.Status,
		Latency:      res.Latency,
		Tier:         payload.Tier,
	}
	if res.Err != nil {
		finished.Error = res.Err.Error()
	}
	if w.bus != nil {
		w.bus.Publish(ctx, finished)
	}

	if res.Outcome == crm.Failed {
		return fmt.Errorf("crm delivery %s: %v: %w", submissionID, res.Err, asynq.SkipRetry)
	}
	return nil
}

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type crmConfig struct{ url string }

func (c crmConfig) GetCRMWebhookURL() string            { return c.url }
func (c crmConfig) GetCRMResidentialWebhookURL() string { return "" }
func (c crmConfig) GetCRMWebhookTimeout() time.Duration { return time.Second }
func (c crmConfig) GetA2PCampaignID() string            { return "" }

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newDeliveryTask(t *testing.T, id uuid.UUID, body string) *asynq.Task {
	t.Helper()
	task, err := NewCRMDeliveryTask(CRMDeliveryPayload{
		SubmissionID: id.String(),
		Target:       crm.TargetAssessment,
		Tier:         "elite",
		Body:         json.RawMessage(body),
	})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestHandleCRMDelivery_ForwardsBodyVerbatim(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies <- string(raw)
	}))
	defer srv.Close()

	bus := &recordingBus{}
	w := newWorker(crm.NewClient(crmConfig{url: srv.URL}, logger.Discard(), metrics.New()), bus, logger.Discard())
	id := uuid.New()

	if err := w.handleCRMDelivery(context.Background(), newDeliveryTask(t, id, `{"email":"ada@example.com"}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := <-bodies; got != `{"email":"ada@example.com"}` {
		t.Fatalf("unexpected body %s", got)
	}

	if len(bus.events) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.events))
	}
	finished, ok := bus.events[0].(events.CRMDeliveryFinished)
	if !ok || finished.SubmissionID != id || finished.Outcome != string(crm.Delivered) || finished.Tier != "elite" {
		t.Fatalf("unexpected event %+v", bus.events[0])
	}
}

func TestHandleCRMDelivery_FailureSkipsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	bus := &recordingBus{}
	w := newWorker(crm.NewClient(crmConfig{url: srv.URL}, logger.Discard(), metrics.New()), bus, logger.Discard())

	err := w.handleCRMDelivery(context.Background(), newDeliveryTask(t, uuid.New(), `{}`))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	finished := bus.events[0].(events.CRMDeliveryFinished)
	if finished.Outcome != string(crm.Failed) || finished.Status != http.StatusServiceUnavailable || finished.Error == "" {
		t.Fatalf("unexpected event %+v", finished)
	}
}

func TestHandleCRMDelivery_RejectsMalformedTask(t *testing.T) {
	w := newWorker(crm.NewClient(crmConfig{}, logger.Discard(), metrics.New()), nil, logger.Discard())
	err := w.handleCRMDelivery(context.Background(), asynq.NewTask(TaskCRMDelivery, []byte("not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestNewCRMDeliveryTask_IsAtMostOnce(t *testing.T) {
	task := newDeliveryTask(t, uuid.New(), `{}`)
	payload, err := ParseCRMDeliveryPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Target != crm.TargetAssessment || string(payload.Body) != `{}` {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

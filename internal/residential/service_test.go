package residential

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	"intake_backend/platform/apperr"
	"intake_backend/platform/validator"

	"github.com/google/uuid"
)

type fakeDispatcher struct {
	mu         sync.Mutex
	deliveries []crm.Delivery
	outcome    crm.Outcome
}

func (d *fakeDispatcher) Dispatch(_ context.Context, delivery crm.Delivery) crm.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, delivery)
	outcome := d.outcome
	if outcome == "" {
		outcome = crm.Delivered
	}
	return crm.Result{Target: delivery.Target, Outcome: outcome, Status: 200}
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

type failingStore struct{}

func (failingStore) Create(context.Context, Inquiry) error {
	return errors.New("connection refused")
}

func validRequest() Request {
	return Request{
		FirstName:            "Grace",
		LastName:             "Hopper",
		Email:                "Grace@Example.com",
		Phone:                "(650) 253-0000",
		Company:              "Hopper Family",
		Source:               "website",
		ProjectUnitCount:     3,
		ConstructionProvince: "Ontario",
		HousingInterest:      "<b>Duplex</b>",
		ResidentialPathway:   "consumer",
		LeadType:             "residential",
	}
}

func TestSubmit_StoresAndForwards(t *testing.T) {
	store := NewMemoryStore()
	dispatcher := &fakeDispatcher{}
	bus := &recordingBus{}
	svc := NewService(store, validator.New(), dispatcher, bus, nil, nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	inq, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	svc.Wait()

	stored, ok := store.Get(inq.ID)
	if !ok {
		t.Fatalf("inquiry was not stored")
	}
	if stored.Request.Email != "grace@example.com" || stored.Request.Phone != "+16502530000" {
		t.Fatalf("expected normalized contact, got %q %q", stored.Request.Email, stored.Request.Phone)
	}
	if stored.Request.HousingInterest != "Duplex" {
		t.Fatalf("expected markup stripped, got %q", stored.Request.HousingInterest)
	}

	if len(dispatcher.deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(dispatcher.deliveries))
	}
	delivery := dispatcher.deliveries[0]
	if delivery.Target != crm.TargetResidential || delivery.SubmissionID != inq.ID {
		t.Fatalf("unexpected delivery %+v", delivery)
	}
	payload := delivery.Payload.(Payload)
	if payload.SubmissionTimestamp != "2025-03-01T12:00:00Z" || payload.ResidentialPathway != "consumer" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	names := bus.names()
	if len(names) != 2 || names[0] != "residential.submitted" || names[1] != "crm.delivery.finished" {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{name: "missing first name", mutate: func(r *Request) { r.FirstName = "" }, field: "first_name"},
		{name: "bad email", mutate: func(r *Request) { r.Email = "nope" }, field: "email"},
		{name: "bad phone", mutate: func(r *Request) { r.Phone = "123" }, field: "phone"},
		{name: "zero units", mutate: func(r *Request) { r.ProjectUnitCount = 0 }, field: "project_unit_count"},
		{name: "partnership sized", mutate: func(r *Request) { r.ProjectUnitCount = 50 }, field: "project_unit_count"},
		{name: "missing pathway", mutate: func(r *Request) { r.ResidentialPathway = " " }, field: "residential_pathway"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			dispatcher := &fakeDispatcher{}
			svc := NewService(store, validator.New(), dispatcher, nil, nil, nil)

			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Submit(context.Background(), req)

			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details := appErr.Details.([]validator.FieldError)
			if len(details) != 1 || details[0].Field != tc.field {
				t.Fatalf("expected error on %s, got %+v", tc.field, details)
			}
			svc.Wait()
			if len(dispatcher.deliveries) != 0 {
				t.Fatalf("rejected inquiry must not be forwarded")
			}
		})
	}
}

func TestSubmit_WebhookFailureDoesNotFail(t *testing.T) {
	dispatcher := &fakeDispatcher{outcome: crm.Failed}
	svc := NewService(NewMemoryStore(), validator.New(), dispatcher, nil, nil, nil)

	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("expected success despite webhook failure, got %v", err)
	}
	svc.Wait()
}

func TestSubmit_StoreFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewService(failingStore{}, validator.New(), dispatcher, nil, nil, nil)

	_, err := svc.Submit(context.Background(), validRequest())
	if err == nil {
		t.Fatalf("expected store error")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		t.Fatalf("store failure must surface as an internal error, got %v", appErr)
	}
	if len(dispatcher.deliveries) != 0 {
		t.Fatalf("unstored inquiry must not be forwarded")
	}
}

func TestMemoryStore_RejectsDuplicateID(t *testing.T) {
	store := NewMemoryStore()
	inq := Inquiry{ID: uuid.New()}
	if err := store.Create(context.Background(), inq); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(context.Background(), inq); !errors.Is(err, errDuplicateInquiry) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

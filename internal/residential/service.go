package residential

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	"intake_backend/platform/apperr"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"
	"intake_backend/platform/validator"

	"github.com/google/uuid"
)

const form = "residential"

// Service accepts residential inquiries and forwards them to the residential
// CRM webhook.
type Service struct {
	store      Store
	val        *validator.Validator
	dispatcher crm.Dispatcher
	bus        events.Bus
	metrics    *metrics.Metrics
	log        *logger.Logger
	now        func() time.Time

	deliveries sync.WaitGroup
}

// NewService creates a residential service. dispatcher and bus may be nil.
func NewService(store Store, val *validator.Validator, dispatcher crm.Dispatcher, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:      store,
		val:        val,
		dispatcher: dispatcher,
		bus:        bus,
		metrics:    m,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and stores req, then hands it to the CRM in the background.
// Webhook failures never fail the submission.
func (s *Service) Submit(ctx context.Context, req Request) (Inquiry, error) {
	req = req.sanitized()
	req.Email = strings.ToLower(req.Email)

	if err := s.val.Struct(req); err != nil {
		s.metrics.IncrSubmission(form, "rejected")
		return Inquiry{}, apperr.Validation("Validation failed").
			WithDetails(validator.FieldErrors(err)).
			WithOp("residential.Submit")
	}

	inq := Inquiry{ID: uuid.New(), Request: req, SubmittedAt: s.now()}
	if err := s.store.Create(ctx, inq); err != nil {
		s.metrics.IncrSubmission(form, "error")
		return Inquiry{}, fmt.Errorf("store residential inquiry: %w", err)
	}

	s.metrics.IncrSubmission(form, "accepted")
	s.log.WithContext(ctx).Info("residential inquiry accepted",
		"submission_id", inq.ID.String(),
		"units", req.ProjectUnitCount,
		"pathway", req.ResidentialPathway,
	)

	if s.bus != nil {
		s.bus.Publish(ctx, events.ResidentialSubmitted{
			BaseEvent:    events.NewBaseEventAt(inq.SubmittedAt),
			SubmissionID: inq.ID,
			Email:        req.Email,
			Province:     req.ConstructionProvince,
			Units:        req.ProjectUnitCount,
		})
	}
	s.deliver(ctx, inq)

	return inq, nil
}

// Wait blocks until in-flight webhook deliveries have finished.
func (s *Service) Wait() {
	s.deliveries.Wait()
}

func (s *Service) deliver(ctx context.Context, inq Inquiry) {
	if s.dispatcher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	delivery := crm.Delivery{
		SubmissionID: inq.ID,
		Target:       crm.TargetResidential,
		Payload:      NewPayload(inq),
	}

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		res := s.dispatcher.Dispatch(ctx, delivery)
		if res.Outcome == crm.Queued || s.bus == nil {
			return
		}
		finished := events.CRMDeliveryFinished{
			BaseEvent:    events.NewBaseEvent(),
			SubmissionID: inq.ID,
			Target:       res.Target,
			Outcome:      string(res.Outcome),
			Status:       res.Status,
			Latency:      res.Latency,
		}
		if res.Err != nil {
			finished.Error = res.Err.Error()
		}
		s.bus.Publish(ctx, finished)
	}()
}

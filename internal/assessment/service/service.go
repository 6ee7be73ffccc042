// Package service coordinates one assessment submission from raw body to
// stored, scored and forwarded lead.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"intake_backend/internal/assessment/domain"
	"intake_backend/internal/assessment/normalize"
	"intake_backend/internal/assessment/repository"
	"intake_backend/internal/assessment/scoring"
	"intake_backend/internal/assessment/tags"
	"intake_backend/internal/assessment/tiers"
	"intake_backend/internal/assessment/transport"
	"intake_backend/internal/assessment/validation"
	"intake_backend/internal/crm"
	"intake_backend/internal/events"
	"intake_backend/platform/apperr"
	"intake_backend/platform/httpkit"
	"intake_backend/platform/logger"
	"intake_backend/platform/metrics"

	"github.com/google/uuid"
)

const form = "assessment"

// ErrSubmissionNotFound is returned by the admin lookups.
var ErrSubmissionNotFound = apperr.NotFound("submission not found")

// CooldownError reports that the client already completed an assessment
// within the cooldown window. It unwraps to a 429 apperr.
type CooldownError struct {
	CompletedAt  time.Time
	PreviousTier domain.Tier
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("assessment already completed at %s", e.CompletedAt.Format(time.RFC3339))
}

func (e *CooldownError) Unwrap() error {
	return apperr.TooManyRequests("Assessment already completed").
		WithDetail("You have already completed an assessment recently. Our team will be in touch soon.")
}

// Options wires the service collaborators. Store, Guard and Gate are required.
type Options struct {
	Store      repository.SubmissionStore
	Guard      repository.CooldownGuard
	Gate       *validation.Gate
	Dispatcher crm.Dispatcher
	Bus        events.Bus
	Metrics    *metrics.Metrics
	Log        *logger.Logger
	Cooldown   time.Duration
	CampaignID string
}

type Service struct {
	store      repository.SubmissionStore
	guard      repository.CooldownGuard
	gate       *validation.Gate
	dispatcher crm.Dispatcher
	bus        events.Bus
	metrics    *metrics.Metrics
	log        *logger.Logger
	cooldown   time.Duration
	campaignID string
	now        func() time.Time

	deliveries sync.WaitGroup
}

func New(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		store:      opts.Store,
		guard:      opts.Guard,
		gate:       opts.Gate,
		dispatcher: opts.Dispatcher,
		bus:        opts.Bus,
		metrics:    m,
		log:        log,
		cooldown:   opts.Cooldown,
		campaignID: opts.CampaignID,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs one raw assessment body through cooldown check, screening,
// normalization, validation, scoring, tagging and persistence, then hands
// the lead to the CRM without waiting for the outcome.
func (s *Service) Submit(ctx context.Context, raw map[string]any, clientIP string) (transport.SubmitAssessmentResponse, error) {
	log := s.log.WithContext(ctx)
	ipKey := s.cooldownKey(clientIP)

	if ipKey != "" {
		rec, active, err := s.guard.Active(ctx, ipKey, s.now())
		if err != nil {
			return transport.SubmitAssessmentResponse{}, fmt.Errorf("check cooldown: %w", err)
		}
		if active {
			return transport.SubmitAssessmentResponse{}, s.rejectCooldown(log, ipKey, rec)
		}
	}

	if errs := validation.Screen(raw); len(errs) > 0 {
		s.metrics.IncrSubmission(form, "rejected")
		return transport.SubmitAssessmentResponse{}, apperr.Validation("Input validation failed").WithDetails(errs)
	}

	input := normalize.Assessment(raw)
	log.Debug("assessment normalized", "units", input.ProjectUnitCount, "province", input.ConstructionProvince)

	validated, errs := s.gate.Validate(input)
	if len(errs) > 0 {
		s.metrics.IncrSubmission(form, "rejected")
		log.Debug("assessment rejected by validation", "errors", len(errs))
		return transport.SubmitAssessmentResponse{}, validation.ValidationError(errs)
	}
	if err := s.gate.CheckMinimumUnits(validated); err != nil {
		s.metrics.IncrSubmission(form, "below_minimum")
		return transport.SubmitAssessmentResponse{}, err
	}

	result := scoring.Calculate(validated.AssessmentInput)
	sub := domain.Submission{
		ID:          uuid.New(),
		Input:       validated.AssessmentInput,
		Score:       result.Score,
		Breakdown:   result.Breakdown,
		Tier:        result.Tier,
		Tags:        tags.Generate(validated.AssessmentInput, result.Score, result.Tier),
		SubmittedAt: s.now(),
	}
	log.Debug("assessment scored", "score", sub.Score, "tier", sub.Tier, "tags", len(sub.Tags))

	if ipKey != "" {
		rec := domain.CooldownRecord{SubmissionID: sub.ID, Tier: sub.Tier, CompletedAt: sub.SubmittedAt}
		existing, claimed, err := s.guard.Claim(ctx, ipKey, rec, s.cooldown)
		if err != nil {
			return transport.SubmitAssessmentResponse{}, fmt.Errorf("claim cooldown: %w", err)
		}
		if !claimed {
			return transport.SubmitAssessmentResponse{}, s.rejectCooldown(log, ipKey, existing)
		}
	}

	if err := s.store.Create(ctx, sub); err != nil {
		if ipKey != "" {
			if releaseErr := s.guard.Release(context.WithoutCancel(ctx), ipKey, sub.ID); releaseErr != nil {
				log.Warn("failed to release cooldown claim", "error", releaseErr)
			}
		}
		s.metrics.IncrSubmission(form, "error")
		log.DatabaseError("create_submission", err)
		return transport.SubmitAssessmentResponse{}, fmt.Errorf("store submission: %w", err)
	}

	s.metrics.IncrSubmission(form, "accepted")
	s.metrics.ObserveScore(sub.Score, string(sub.Tier))
	log.SubmissionScored(sub.ID.String(), string(sub.Tier), sub.Score, sub.Input.ProjectUnitCount)

	s.publishSubmitted(ctx, sub)
	s.deliver(ctx, sub)

	return transport.SubmitAssessmentResponse{
		Success:       true,
		SubmissionID:  sub.ID,
		PriorityScore: sub.Score,
		CustomerTier:  string(sub.Tier),
		ResponseTime:  tiers.ResponseTime(sub.Score),
		PriorityLevel: tiers.PriorityLevel(sub.Score),
		Message:       tiers.PriorityMessage(sub.Score),
	}, nil
}

// Preview scores raw exactly as Submit would, without validation, cooldown
// or persistence.
func (s *Service) Preview(raw map[string]any) transport.ScorePreviewResponse {
	result := scoring.Calculate(normalize.Assessment(raw))
	return transport.ScorePreviewResponse{
		PriorityScore: result.Score,
		CustomerTier:  string(result.Tier),
		ResponseTime:  result.Breakdown.ResponseTime,
		Breakdown:     result.Breakdown,
	}
}

// GetByID returns a stored submission.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.SubmissionResponse, error) {
	sub, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.SubmissionResponse{}, ErrSubmissionNotFound
	}
	if err != nil {
		return transport.SubmissionResponse{}, err
	}
	return transport.NewSubmissionResponse(sub), nil
}

// ListByEmail returns every stored submission for email, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) (transport.SubmissionListResponse, error) {
	subs, err := s.store.ListByEmail(ctx, email)
	if err != nil {
		return transport.SubmissionListResponse{}, err
	}
	items := make([]transport.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, transport.NewSubmissionResponse(sub))
	}
	return transport.SubmissionListResponse{Items: items, Total: len(items)}, nil
}

// Wait blocks until every in-flight CRM delivery has finished.
func (s *Service) Wait() {
	s.deliveries.Wait()
}

func (s *Service) cooldownKey(clientIP string) string {
	if s.guard == nil || s.cooldown <= 0 || clientIP == "" || clientIP == httpkit.UnknownClientIP {
		return ""
	}
	return repository.IPKey(clientIP)
}

func (s *Service) rejectCooldown(log *logger.Logger, ipKey string, rec domain.CooldownRecord) error {
	s.metrics.IncrSubmission(form, "cooldown")
	s.metrics.IncrCooldownRejection()
	log.CooldownRejected(ipKey, string(rec.Tier), rec.CompletedAt)
	return &CooldownError{CompletedAt: rec.CompletedAt, PreviousTier: rec.Tier}
}

func (s *Service) publishSubmitted(ctx context.Context, sub domain.Submission) {
	if s.bus == nil {
		return
	}
	in := sub.Input
	s.bus.Publish(ctx, events.AssessmentSubmitted{
		BaseEvent:    events.NewBaseEventAt(sub.SubmittedAt),
		SubmissionID: sub.ID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Company:      in.Company,
		Province:     in.ConstructionProvince,
		Units:        in.ProjectUnitCount,
		Score:        sub.Score,
		Tier:         string(sub.Tier),
		ResponseTime: tiers.ResponseTime(sub.Score),
		Tags:         sub.Tags,
	})
}

// deliver forwards sub to the CRM in the background. The outcome is logged
// by the dispatcher and published as CRMDeliveryFinished; it never reaches
// the submitter.
func (s *Service) deliver(ctx context.Context, sub domain.Submission) {
	if s.dispatcher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	delivery := crm.Delivery{
		SubmissionID: sub.ID,
		Target:       crm.TargetAssessment,
		Tier:         string(sub.Tier),
		Payload:      crm.NewAssessmentPayload(sub, s.campaignID),
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
			SubmissionID: sub.ID,
			Target:       res.Target,
			Outcome:      string(res.Outcome),
			Status:       res.Status,
			Latency:      res.Latency,
			Tier:         string(sub.Tier),
		}
		if res.Err != nil {
			finished.Error = res.Err.Error()
		}
		s.bus.Publish(ctx, finished)
	}()
}

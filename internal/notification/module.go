// Package notification provides event handlers for sending notifications
// in response to domain events. Domain modules publish events and never talk
// to the mail provider directly.
package notification

import (
	"context"
	"strings"

	"intake_backend/internal/assessment/domain"
	"intake_backend/internal/crm"
	"intake_backend/internal/email"
	"intake_backend/internal/events"
	"intake_backend/platform/logger"
)

// AlertScoreThreshold is the priority score from which every lead is alerted,
// regardless of tier.
const AlertScoreThreshold = 80

// Module handles all notification-related event subscriptions.
type Module struct {
	sender     email.Sender
	salesInbox string
	log        *logger.Logger
}

// New creates the notification module. An empty salesInbox disables alerts.
func New(sender email.Sender, salesInbox string, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender:     sender,
		salesInbox: strings.TrimSpace(salesInbox),
		log:        log,
	}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.AssessmentSubmitted{}.EventName(), m)
	bus.Subscribe(events.CRMDeliveryFinished{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AssessmentSubmitted:
		return m.handleAssessmentSubmitted(ctx, e)
	case events.CRMDeliveryFinished:
		return m.handleCRMDeliveryFinished(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleAssessmentSubmitted(ctx context.Context, e events.AssessmentSubmitted) error {
	if m.salesInbox == "" || !shouldAlert(e.Tier, e.Score) {
		return nil
	}

	alert := email.SalesAlert{
		SubmissionID: e.SubmissionID.String(),
		FullName:     strings.TrimSpace(e.FirstName + " " + e.LastName),
		Email:        e.Email,
		Company:      e.Company,
		Province:     e.Province,
		Units:        e.Units,
		Score:        e.Score,
		Tier:         e.Tier,
		ResponseTime: e.ResponseTime,
		Tags:         e.Tags,
	}
	if err := m.sender.SendSalesAlert(ctx, m.salesInbox, alert); err != nil {
		m.log.Error("failed to send sales alert",
			"submissionId", e.SubmissionID,
			"tier", e.Tier,
			"error", err,
		)
		return err
	}
	m.log.Info("sales alert sent", "submissionId", e.SubmissionID, "tier", e.Tier, "score", e.Score)
	return nil
}

// Only failed deliveries of alert-worthy leads are escalated; everything
// else is already visible in logs and metrics.
func (m *Module) handleCRMDeliveryFinished(ctx context.Context, e events.CRMDeliveryFinished) error {
	if m.salesInbox == "" || e.Outcome != string(crm.Failed) || e.Tier != string(domain.TierElite) {
		return nil
	}

	failure := email.DeliveryFailure{
		SubmissionID: e.SubmissionID.String(),
		Target:       e.Target,
		Tier:         e.Tier,
		Status:       e.Status,
		Error:        e.Error,
	}
	if err := m.sender.SendDeliveryFailureAlert(ctx, m.salesInbox, failure); err != nil {
		m.log.Error("failed to send delivery failure alert", "submissionId", e.SubmissionID, "error", err)
		return err
	}
	return nil
}

func shouldAlert(tier string, score int) bool {
	return tier == string(domain.TierElite) || score >= AlertScoreThreshold
}

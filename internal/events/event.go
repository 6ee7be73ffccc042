// Package events defines the intake domain events: accepted assessments and
// residential inquiries, and finished CRM deliveries. The bus itself lives in
// platform/events and is re-exported here so modules need a single import.
package events

import (
	"time"

	"intake_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Assessment Domain Events
// =============================================================================

// AssessmentSubmitted is published once an assessment has been scored and stored.
type AssessmentSubmitted struct {
	BaseEvent
	SubmissionID uuid.UUID `json:"submissionId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Company      string    `json:"company"`
	Province     string    `json:"province"`
	Units        int       `json:"units"`
	Score        int       `json:"score"`
	Tier         string    `json:"tier"`
	ResponseTime string    `json:"responseTime"`
	Tags         []string  `json:"tags"`
}

func (e AssessmentSubmitted) EventName() string { return "assessment.submitted" }

// =============================================================================
// Residential Domain Events
// =============================================================================

// ResidentialSubmitted is published when a residential inquiry is accepted.
type ResidentialSubmitted struct {
	BaseEvent
	SubmissionID uuid.UUID `json:"submissionId"`
	Email        string    `json:"email"`
	Province     string    `json:"province"`
	Units        int       `json:"units"`
}

func (e ResidentialSubmitted) EventName() string { return "residential.submitted" }

// =============================================================================
// CRM Delivery Events
// =============================================================================

// CRMDeliveryFinished is published after every webhook attempt, inline or queued.
type CRMDeliveryFinished struct {
	BaseEvent
	SubmissionID uuid.UUID     `json:"submissionId"`
	Target       string        `json:"target"`
	Outcome      string        `json:"outcome"`
	Status       int           `json:"status"`
	Latency      time.Duration `json:"latency"`
	Error        string        `json:"error,omitempty"`
	Tier         string        `json:"tier,omitempty"`
}

func (e CRMDeliveryFinished) EventName() string { return "crm.delivery.finished" }

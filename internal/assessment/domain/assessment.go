// Package domain holds the assessment intake model: the canonical input
// record, the score breakdown, customer tiers and the stored submission.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxUnitCount bounds the unit count before any scoring arithmetic.
const MaxUnitCount = 10000

// Tier is the customer tier derived from the project unit count.
type Tier string

const (
	TierPioneer   Tier = "pioneer"
	TierPreferred Tier = "preferred"
	TierElite     Tier = "elite"
)

// AssessmentInput is the canonical, post-normalization assessment record.
// Optional free-text fields are empty when absent.
type AssessmentInput struct {
	FirstName            string   `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName             string   `json:"lastName" validate:"required,min=2,max=50,personname"`
	Email                string   `json:"email" validate:"required,email,max=254"`
	Phone                string   `json:"phone" validate:"required,phone_e164"`
	Company              string   `json:"company" validate:"required,min=2,max=100"`
	ProjectUnitCount     int      `json:"projectUnitCount" validate:"min=0,max=10000"`
	DecisionTimeline     string   `json:"decisionTimeline" validate:"required,timeline"`
	ConstructionProvince string   `json:"constructionProvince" validate:"required,province"`
	DeveloperType        string   `json:"developerType" validate:"required,developer_type"`
	GovernmentPrograms   string   `json:"governmentPrograms" validate:"required,government_programs"`
	BuildCanadaEligible  string   `json:"buildCanadaEligible" validate:"required,build_canada"`
	ProjectDescription   string   `json:"projectDescription" validate:"max=1000"`
	BudgetRange          string   `json:"budgetRange" validate:"max=100"`
	Readiness            string   `json:"readiness" validate:"omitempty,readiness"`
	Source               string   `json:"source" validate:"max=200"`
	ClientTags           []string `json:"tags" validate:"max=20,dive,max=50"`
	ConsentMarketing     bool     `json:"consentMarketing" validate:"eq=true"`
	ConsentSMS           bool     `json:"consentSMS"`
	AgeVerified          bool     `json:"ageVerified" validate:"eq=true"`
}

// IsResearching reports whether the lead is only in the research phase.
func (in AssessmentInput) IsResearching() bool {
	return in.Readiness == ReadinessResearching
}

// ClampedUnits returns the unit count limited to [0, MaxUnitCount].
func (in AssessmentInput) ClampedUnits() int {
	return ClampUnits(in.ProjectUnitCount)
}

// ClampUnits limits units to [0, MaxUnitCount].
func ClampUnits(units int) int {
	switch {
	case units < 0:
		return 0
	case units > MaxUnitCount:
		return MaxUnitCount
	default:
		return units
	}
}

// ValidatedAssessment is an AssessmentInput that passed the validation gate.
// Only the validation package constructs it.
type ValidatedAssessment struct {
	AssessmentInput
}

// ScoreBreakdown records every named point contribution and the final score.
type ScoreBreakdown struct {
	UnitVolume       int    `json:"unitVolume"`
	Government       int    `json:"government"`
	Indigenous       int    `json:"indigenous"`
	Province         int    `json:"province"`
	ESGAffordability int    `json:"esgAffordability"`
	UrgencyBonus     int    `json:"urgencyBonus"`
	RawScore         int    `json:"rawScore"`
	FloorApplied     int    `json:"floorApplied,omitempty"`
	CapApplied       int    `json:"capApplied,omitempty"`
	NormalizedScore  int    `json:"normalizedScore"`
	Tier             Tier   `json:"tier"`
	ResponseTime     string `json:"responseTime"`
}

// Submission is an accepted, scored assessment. Immutable once stored.
type Submission struct {
	ID          uuid.UUID       `json:"id"`
	Input       AssessmentInput `json:"input"`
	Score       int             `json:"priorityScore"`
	Breakdown   ScoreBreakdown  `json:"breakdown"`
	Tier        Tier            `json:"customerTier"`
	Tags        []string        `json:"tags"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// CooldownRecord remembers the last accepted submission from one client IP.
type CooldownRecord struct {
	SubmissionID uuid.UUID `json:"submissionId"`
	Tier         Tier      `json:"tier"`
	CompletedAt  time.Time `json:"completedAt"`
}

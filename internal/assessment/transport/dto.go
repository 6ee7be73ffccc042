package transport

import (
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
)

// SubmitAssessmentResponse is returned for an accepted assessment.
type SubmitAssessmentResponse struct {
	Success       bool      `json:"success"`
	SubmissionID  uuid.UUID `json:"submissionId"`
	PriorityScore int       `json:"priorityScore"`
	CustomerTier  string    `json:"customerTier"`
	ResponseTime  string    `json:"responseTime"`
	PriorityLevel string    `json:"priorityLevel"`
	Message       string    `json:"message"`
}

// CooldownResponse is returned when the client IP already completed an
// assessment within the cooldown window.
type CooldownResponse struct {
	Success      bool      `json:"success"`
	Error        string    `json:"error"`
	Message      string    `json:"message"`
	CompletedAt  time.Time `json:"completedAt"`
	PreviousTier string    `json:"previousTier"`
}

// ScorePreviewResponse mirrors the authoritative score without validating
// or storing anything.
type ScorePreviewResponse struct {
	PriorityScore int                   `json:"priorityScore"`
	CustomerTier  string                `json:"customerTier"`
	ResponseTime  string                `json:"responseTime"`
	Breakdown     domain.ScoreBreakdown `json:"breakdown"`
}

// ListSubmissionsQuery filters the admin listing.
type ListSubmissionsQuery struct {
	Email string `form:"email" validate:"required,email,max=254"`
}

// SubmissionResponse is the admin view of a stored submission.
type SubmissionResponse struct {
	ID                   uuid.UUID             `json:"id"`
	FirstName            string                `json:"firstName"`
	LastName             string                `json:"lastName"`
	Email                string                `json:"email"`
	Phone                string                `json:"phone"`
	Company              string                `json:"company"`
	ProjectUnitCount     int                   `json:"projectUnitCount"`
	DecisionTimeline     string                `json:"decisionTimeline"`
	ConstructionProvince string                `json:"constructionProvince"`
	DeveloperType        string                `json:"developerType"`
	GovernmentPrograms   string                `json:"governmentPrograms"`
	BuildCanadaEligible  string                `json:"buildCanadaEligible"`
	ProjectDescription   string                `json:"projectDescription,omitempty"`
	BudgetRange          string                `json:"budgetRange,omitempty"`
	Readiness            string                `json:"readiness,omitempty"`
	Source               string                `json:"source"`
	ConsentMarketing     bool                  `json:"consentMarketing"`
	ConsentSMS           bool                  `json:"consentSMS"`
	AgeVerified          bool                  `json:"ageVerified"`
	PriorityScore        int                   `json:"priorityScore"`
	CustomerTier         string                `json:"customerTier"`
	Breakdown            domain.ScoreBreakdown `json:"breakdown"`
	Tags                 []string              `json:"tags"`
	SubmittedAt          time.Time             `json:"submittedAt"`
}

// SubmissionListResponse wraps a listing.
type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int                  `json:"total"`
}

// NewSubmissionResponse maps a stored submission onto its admin view.
func NewSubmissionResponse(sub domain.Submission) SubmissionResponse {
	in := sub.Input
	tags := sub.Tags
	if tags == nil {
		tags = []string{}
	}
	return SubmissionResponse{
		ID:                   sub.ID,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		Phone:                in.Phone,
		Company:              in.Company,
		ProjectUnitCount:     in.ProjectUnitCount,
		DecisionTimeline:     in.DecisionTimeline,
		ConstructionProvince: in.ConstructionProvince,
		DeveloperType:        in.DeveloperType,
		GovernmentPrograms:   in.GovernmentPrograms,
		BuildCanadaEligible:  in.BuildCanadaEligible,
		ProjectDescription:   in.ProjectDescription,
		BudgetRange:          in.BudgetRange,
		Readiness:            in.Readiness,
		Source:               in.Source,
		ConsentMarketing:     in.ConsentMarketing,
		ConsentSMS:           in.ConsentSMS,
		AgeVerified:          in.AgeVerified,
		PriorityScore:        sub.Score,
		CustomerTier:         string(sub.Tier),
		Breakdown:            sub.Breakdown,
		Tags:                 tags,
		SubmittedAt:          sub.SubmittedAt,
	}
}

// Package residential provides the consumer intake pathway for projects
// below the partnership threshold.
package residential

import (
	"time"

	"intake_backend/platform/phone"
	"intake_backend/platform/sanitize"

	"github.com/google/uuid"
)

// MaxUnits is the largest project the residential pathway accepts.
const MaxUnits = 49

// Request is the residential form body. Field names follow the CRM's
// snake_case contact fields.
type Request struct {
	FirstName            string `json:"first_name" validate:"required,max=50"`
	LastName             string `json:"last_name" validate:"required,max=50"`
	Email                string `json:"email" validate:"required,email,max=254"`
	Phone                string `json:"phone" validate:"required,phone_e164"`
	Company              string `json:"company" validate:"required,max=100"`
	Source               string `json:"source" validate:"max=200"`
	ProjectUnitCount     int    `json:"project_unit_count" validate:"min=1,max=49"`
	ConstructionProvince string `json:"construction_province" validate:"required,max=100"`
	ProjectBudgetRange   string `json:"project_budget_range" validate:"max=100"`
	HousingInterest      string `json:"housing_interest" validate:"max=200"`
	QuestionsInterests   string `json:"questions_interests" validate:"max=1000"`
	ResidentialPathway   string `json:"residential_pathway" validate:"required,max=100"`
	LeadType             string `json:"lead_type" validate:"required,max=100"`
}

// sanitized returns a copy with every text field stripped and the phone in
// E.164 form when it parses.
func (r Request) sanitized() Request {
	return Request{
		FirstName:            sanitize.Text(r.FirstName),
		LastName:             sanitize.Text(r.LastName),
		Email:                sanitize.Text(r.Email),
		Phone:                phone.NormalizeE164(r.Phone),
		Company:              sanitize.Text(r.Company),
		Source:               sanitize.Text(r.Source),
		ProjectUnitCount:     r.ProjectUnitCount,
		ConstructionProvince: sanitize.Text(r.ConstructionProvince),
		ProjectBudgetRange:   sanitize.Text(r.ProjectBudgetRange),
		HousingInterest:      sanitize.Text(r.HousingInterest),
		QuestionsInterests:   sanitize.Text(r.QuestionsInterests),
		ResidentialPathway:   sanitize.Text(r.ResidentialPathway),
		LeadType:             sanitize.Text(r.LeadType),
	}
}

// Inquiry is an accepted residential request.
type Inquiry struct {
	ID          uuid.UUID
	Request     Request
	SubmittedAt time.Time
}

// Payload is the residential CRM webhook body.
type Payload struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Company              string `json:"company"`
	Source               string `json:"source"`
	ProjectUnitCount     int    `json:"project_unit_count"`
	ProjectBudgetRange   string `json:"project_budget_range"`
	ConstructionProvince string `json:"construction_province"`
	HousingInterest      string `json:"housing_interest"`
	QuestionsInterests   string `json:"questions_interests"`
	ResidentialPathway   string `json:"residential_pathway"`
	LeadType             string `json:"lead_type"`
	SubmissionID         string `json:"submission_id"`
	SubmissionTimestamp  string `json:"submission_timestamp"`
}

// NewPayload builds the webhook body for inq.
func NewPayload(inq Inquiry) Payload {
	r := inq.Request
	return Payload{
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Email:                r.Email,
		Phone:                r.Phone,
		Company:              r.Company,
		Source:               r.Source,
		ProjectUnitCount:     r.ProjectUnitCount,
		ProjectBudgetRange:   r.ProjectBudgetRange,
		ConstructionProvince: r.ConstructionProvince,
		HousingInterest:      r.HousingInterest,
		QuestionsInterests:   r.QuestionsInterests,
		ResidentialPathway:   r.ResidentialPathway,
		LeadType:             r.LeadType,
		SubmissionID:         inq.ID.String(),
		SubmissionTimestamp:  inq.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

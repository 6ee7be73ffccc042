package crm

import (
	"strings"
	"time"

	"intake_backend/internal/assessment/domain"
	"intake_backend/internal/assessment/tiers"
)

// AssessmentPayload is the JSON body forwarded to the CRM for a B2B assessment.
type AssessmentPayload struct {
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	Company              string   `json:"company"`
	Source               string   `json:"source"`
	ProjectUnitCount     int      `json:"project_unit_count"`
	ProjectBudgetRange   string   `json:"project_budget_range,omitempty"`
	DeliveryTimeline     string   `json:"delivery_timeline"`
	ConstructionProvince string   `json:"construction_province"`
	DeveloperType        string   `json:"developer_type"`
	GovernmentPrograms   string   `json:"government_programs"`
	BuildCanadaEligible  string   `json:"build_canada_eligible"`
	ProjectDescription   string   `json:"project_description,omitempty"`
	AIPriorityScore      int      `json:"ai_priority_score"`
	CustomerTier         string   `json:"customer_tier"`
	AssignedTo           string   `json:"assigned_to"`
	ResponseTime         string   `json:"response_time"`
	PriorityLevel        string   `json:"priority_level"`
	TagsArray            []string `json:"tags_array"`
	CustomerTags         string   `json:"customer_tags"`
	SubmissionID         string   `json:"submission_id"`
	SubmissionTimestamp  string   `json:"submission_timestamp"`
	A2PCampaignID        string   `json:"a2p_campaign_id,omitempty"`
	CASLConsentTimestamp string   `json:"casl_consent_timestamp,omitempty"`
	SMSConsentTimestamp  string   `json:"sms_consent_timestamp,omitempty"`
	AgeVerifiedAt        string   `json:"age_verified_at,omitempty"`
}

// NewAssessmentPayload maps an accepted submission onto the CRM field names.
// Consent timestamps are only present when the matching flag is set.
// customer_tags carries the generated tag set as one comma-separated string.
func NewAssessmentPayload(sub domain.Submission, campaignID string) AssessmentPayload {
	in := sub.Input
	at := sub.SubmittedAt.UTC().Format(time.RFC3339)

	p := AssessmentPayload{
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		Phone:                in.Phone,
		Company:              in.Company,
		Source:               in.Source,
		ProjectUnitCount:     in.ProjectUnitCount,
		ProjectBudgetRange:   in.BudgetRange,
		DeliveryTimeline:     in.DecisionTimeline,
		ConstructionProvince: in.ConstructionProvince,
		DeveloperType:        in.DeveloperType,
		GovernmentPrograms:   in.GovernmentPrograms,
		BuildCanadaEligible:  in.BuildCanadaEligible,
		ProjectDescription:   in.ProjectDescription,
		AIPriorityScore:      sub.Score,
		CustomerTier:         string(sub.Tier),
		AssignedTo:           tiers.Assignee(sub.Tier),
		ResponseTime:         tiers.ResponseTime(sub.Score),
		PriorityLevel:        tiers.PriorityLevel(sub.Score),
		TagsArray:            nonNil(sub.Tags),
		CustomerTags:         strings.Join(sub.Tags, ", "),
		SubmissionID:         sub.ID.String(),
		SubmissionTimestamp:  at,
		A2PCampaignID:        campaignID,
	}
	if in.ConsentMarketing {
		p.CASLConsentTimestamp = at
	}
	if in.ConsentSMS {
		p.SMSConsentTimestamp = at
	}
	if in.AgeVerified {
		p.AgeVerifiedAt = at
	}
	return p
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

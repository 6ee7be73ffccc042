// Package normalize turns an untyped form body into the canonical
// AssessmentInput. It never fails: unparseable numbers become 0, unknown
// fields are ignored, and every string is sanitized.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"intake_backend/internal/assessment/domain"
	"intake_backend/platform/sanitize"
)

// DefaultSource labels submissions that do not name their origin.
const DefaultSource = "Website Assessment"

// Company placeholders for leads that leave the company blank. Projects
// below minCompanyDefaultUnits get none and fail validation.
const (
	DefaultCompanyIndividual   = "Individual Investor"
	DefaultCompanyOrganization = "Organization"

	minCompanyDefaultUnits   = 10
	organizationDefaultUnits = 50
)

// Field aliases, in priority order. The first non-empty key wins.
var (
	timelineKeys    = []string{"timeline", "deliveryTimeline", "decisionTimeline"}
	provinceKeys    = []string{"province", "constructionProvince"}
	companyKeys     = []string{"companyName", "company"}
	unitKeys        = []string{"unitCount", "projectUnitCount"}
	descriptionKeys = []string{"projectDescription", "projectDescriptionText"}
	readinessKeys   = []string{"readiness", "readinessToBuy"}
	budgetKeys      = []string{"budgetRange", "projectBudgetRange"}
	marketingKeys   = []string{"consentCommunications", "consentMarketing"}
	smsKeys         = []string{"consentSMS", "smsConsent"}
	ageKeys         = []string{"ageVerification", "ageVerified"}
)

var developerTypeAliases = map[string]string{
	"Individual/Family":       domain.DeveloperIndividual,
	"Individual":              domain.DeveloperIndividual,
	"Family":                  domain.DeveloperIndividual,
	"Commercial Developer":    domain.DeveloperCommercial,
	"Government/Municipal":    domain.DeveloperGovernment,
	"Non-Profit Organization": domain.DeveloperNonProfit,
	"Private Developer":       domain.DeveloperPrivate,
}

var governmentAliases = map[string]string{
	"Currently participating":       domain.GovernmentParticipating,
	"Yes - Currently participating": domain.GovernmentParticipating,
	"Just learning about options":   domain.GovernmentNotParticipating,
	"Not interested":                domain.GovernmentNotParticipating,
	"Somewhat interested":           domain.GovernmentNotParticipating,
	"Very interested":               domain.GovernmentNotParticipating,
}

var readinessAliases = map[string]string{
	"Just researching - want to learn more": domain.ReadinessResearching,
	"Planning future project (6+ months)":   domain.ReadinessPlanningLong,
	"Planning active project (3-6 months)":  domain.ReadinessPlanningMedium,
	"Planning active project (0-3 months)":  domain.ReadinessPlanningShort,
	"Ready to move forward immediately":     domain.ReadinessImmediate,
}

var buildCanadaAliases = map[string]string{
	"I don't know": domain.BuildCanadaUnknown,
	"Unknown":      domain.BuildCanadaUnknown,
	"Not sure":     domain.BuildCanadaUnknown,
}

// Assessment maps raw onto the canonical input shape.
func Assessment(raw map[string]any) domain.AssessmentInput {
	in := domain.AssessmentInput{
		FirstName:            text(raw, "firstName"),
		LastName:             text(raw, "lastName"),
		Email:                strings.ToLower(text(raw, "email")),
		Phone:                text(raw, "phone"),
		Company:              first(raw, companyKeys),
		ProjectUnitCount:     integer(raw, unitKeys),
		DecisionTimeline:     first(raw, timelineKeys),
		ConstructionProvince: first(raw, provinceKeys),
		DeveloperType:        alias(text(raw, "developerType"), developerTypeAliases),
		GovernmentPrograms:   alias(text(raw, "governmentPrograms"), governmentAliases),
		BuildCanadaEligible:  alias(text(raw, "buildCanadaEligible"), buildCanadaAliases),
		ProjectDescription:   first(raw, descriptionKeys),
		BudgetRange:          first(raw, budgetKeys),
		Readiness:            alias(first(raw, readinessKeys), readinessAliases),
		Source:               text(raw, "source"),
		ClientTags:           list(raw, "tags"),
		ConsentMarketing:     flag(raw, marketingKeys),
		ConsentSMS:           flag(raw, smsKeys),
		AgeVerified:          flag(raw, ageKeys),
	}

	if in.BuildCanadaEligible == "" {
		in.BuildCanadaEligible = domain.BuildCanadaUnknown
	}
	if in.Source == "" {
		in.Source = DefaultSource
	}
	if in.Company == "" {
		in.Company = defaultCompany(in.ProjectUnitCount)
	}
	return in
}

func defaultCompany(units int) string {
	switch {
	case units >= organizationDefaultUnits:
		return DefaultCompanyOrganization
	case units >= minCompanyDefaultUnits:
		return DefaultCompanyIndividual
	default:
		return ""
	}
}

// Text returns the sanitized string at key, or "" when absent or not a string.
func Text(raw map[string]any, key string) string {
	return text(raw, key)
}

// Int parses the value at key as a non-negative count, falling back to 0.
func Int(raw map[string]any, key string) int {
	return integer(raw, []string{key})
}

// Flag reports whether the value at key is true or "true".
func Flag(raw map[string]any, key string) bool {
	return flag(raw, []string{key})
}

func text(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return sanitize.Text(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func first(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if v := text(raw, key); v != "" {
			return v
		}
	}
	return ""
}

func alias(value string, aliases map[string]string) string {
	if canonical, ok := aliases[value]; ok {
		return canonical
	}
	return value
}

func integer(raw map[string]any, keys []string) int {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0
			}
			if v > float64(math.MaxInt32) {
				return math.MaxInt32
			}
			if v < 0 {
				return 0
			}
			return int(v)
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				continue
			}
			digits := leadingDigits(trimmed)
			if len(digits) > 9 {
				return math.MaxInt32
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return 0
			}
			return n
		default:
			return 0
		}
	}
	return 0
}

// leadingDigits keeps the numeric prefix so "120 units" parses as 120.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func flag(raw map[string]any, keys []string) bool {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.EqualFold(strings.TrimSpace(v), "true") {
				return true
			}
		}
	}
	return false
}

func list(raw map[string]any, key string) []string {
	var items []string
	switch v := raw[key].(type) {
	case string:
		items = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := sanitize.Text(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Package tags derives the CRM tag set for a scored assessment.
package tags

import (
	"regexp"
	"strings"

	"intake_backend/internal/assessment/domain"
	"intake_backend/internal/assessment/tiers"
)

// MaxTags is the hard limit on tags per submission.
const MaxTags = 12

const maxTagLength = 50

var invalidTagChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// deprecated tags are dropped even when a client still sends them.
var deprecated = map[string]struct{}{
	"optimized-tags":        {},
	"early-stage":           {},
	"planning-phase":        {},
	"pre-development":       {},
	"single-multi-unit":     {},
	"starter-budget":        {},
	"high-budget":           {},
	"private-only":          {},
	"government-interested": {},
	"tier-tier_1":           {},
	"tier-tier_2":           {},
	"tier-tier_3":           {},
	"tier-tier_4":           {},
}

var priorityProvinces = map[string]bool{
	domain.ProvinceAlberta:              true,
	domain.ProvinceBritishColumbia:      true,
	domain.ProvinceOntario:              true,
	domain.ProvinceNorthwestTerritories: true,
}

// rule appends at most one tag when its predicate holds.
type rule func(in domain.AssessmentInput, score int, tier domain.Tier) string

var rules = []rule{
	func(_ domain.AssessmentInput, _ int, tier domain.Tier) string {
		return "tier-" + string(tier)
	},
	func(_ domain.AssessmentInput, score int, _ domain.Tier) string {
		return "priority-" + tiers.PriorityLevel(score)
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.DeveloperType == domain.DeveloperIndigenous, "indigenous-community")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.GovernmentPrograms == domain.GovernmentParticipating, "government-participating")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(priorityProvinces[in.ConstructionProvince], "priority-province")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.BuildCanadaEligible == domain.BuildCanadaYes, "build-canada-eligible")
	},
	func(in domain.AssessmentInput, _ int, tier domain.Tier) string {
		return when(in.DecisionTimeline == domain.TimelineImmediate && tier != domain.TierPioneer, "urgent-at-scale")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.ConsentMarketing, "casl-consent")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.ConsentSMS, "sms-consent")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.AgeVerified, "age-verified")
	},
	func(in domain.AssessmentInput, _ int, _ domain.Tier) string {
		return when(in.ConstructionProvince != "", "province-"+in.ConstructionProvince)
	},
}

// Generate returns the deduplicated, order-stable tag list for a submission:
// rule tags first, then any client-supplied tags. Deprecated tags are removed
// and the result never exceeds MaxTags.
func Generate(in domain.AssessmentInput, score int, tier domain.Tier) []string {
	candidates := make([]string, 0, len(rules)+len(in.ClientTags))
	for _, r := range rules {
		candidates = append(candidates, r(in, score, tier))
	}
	candidates = append(candidates, in.ClientTags...)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, MaxTags)
	for _, raw := range candidates {
		tag := Normalize(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, banned := deprecated[tag]; banned {
			continue
		}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// Normalize lower-cases a tag, replaces runs of unsupported characters with a
// single dash and bounds its length.
func Normalize(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = invalidTagChars.ReplaceAllString(tag, "-")
	tag = strings.Trim(tag, "-_")
	if len(tag) > maxTagLength {
		tag = strings.TrimRight(tag[:maxTagLength], "-_")
	}
	return tag
}

func when(cond bool, tag string) string {
	if cond {
		return tag
	}
	return ""
}

// Package scoring computes the deterministic priority score for an assessment.
//
// Every factor is a lookup table keyed by the exact enumerated value; a value
// missing from its table contributes zero. The same Calculate function backs
// both the authoritative submission path and the live preview.
package scoring

import (
	"intake_backend/internal/assessment/domain"
	"intake_backend/internal/assessment/tiers"
)

const (
	// MaxScore is the absolute ceiling for any score.
	MaxScore = 100
	// ResearchingCap is the ceiling for leads that are only researching.
	ResearchingCap = 25

	largeProjectUnits = 1000
)

// unitVolumePoints is keyed by tier rather than raw units.
var unitVolumePoints = map[domain.Tier]int{
	domain.TierPioneer:   15,
	domain.TierPreferred: 40,
	domain.TierElite:     50,
}

var governmentPoints = map[string]int{
	domain.GovernmentParticipating: 20,
}

var developerPoints = map[string]int{
	domain.DeveloperIndigenous: 15,
}

var provincePoints = map[string]int{
	domain.ProvinceAlberta:              10,
	domain.ProvinceBritishColumbia:      10,
	domain.ProvinceOntario:              10,
	domain.ProvinceNorthwestTerritories: 10,
}

var buildCanadaPoints = map[string]int{
	domain.BuildCanadaYes: 5,
}

// urgencyPoints apply only when the tier is also eligible.
var urgencyPoints = map[string]int{
	domain.TimelineImmediate: 5,
}

var urgencyEligibleTiers = map[domain.Tier]bool{
	domain.TierPreferred: true,
	domain.TierElite:     true,
}

// floor guarantees a minimum score when its condition holds. Only the first
// matching floor, in slice order, is applied.
type floor struct {
	name    string
	minimum int
	applies func(in domain.AssessmentInput, units int) bool
}

var floors = []floor{
	{
		name:    "indigenous",
		minimum: 25,
		applies: func(in domain.AssessmentInput, _ int) bool {
			return in.DeveloperType == domain.DeveloperIndigenous
		},
	},
	{
		name:    "large_project",
		minimum: 50,
		applies: func(_ domain.AssessmentInput, units int) bool {
			return units >= largeProjectUnits
		},
	},
	{
		name:    "government",
		minimum: 20,
		applies: func(in domain.AssessmentInput, _ int) bool {
			return in.GovernmentPrograms == domain.GovernmentParticipating
		},
	},
}

// Result is the outcome of scoring one input.
type Result struct {
	Score     int                   `json:"score"`
	Tier      domain.Tier           `json:"tier"`
	Breakdown domain.ScoreBreakdown `json:"breakdown"`
}

// Calculate scores in. It is pure: the same input always yields the same result.
func Calculate(in domain.AssessmentInput) Result {
	units := in.ClampedUnits()
	tier := tiers.Classify(units, in.Readiness)

	b := domain.ScoreBreakdown{
		UnitVolume:       unitVolumePoints[tier],
		Government:       governmentPoints[in.GovernmentPrograms],
		Indigenous:       developerPoints[in.DeveloperType],
		Province:         provincePoints[in.ConstructionProvince],
		ESGAffordability: buildCanadaPoints[in.BuildCanadaEligible],
		Tier:             tier,
	}
	if urgencyEligibleTiers[tier] {
		b.UrgencyBonus = urgencyPoints[in.DecisionTimeline]
	}

	b.RawScore = b.UnitVolume + b.Government + b.Indigenous + b.Province + b.ESGAffordability + b.UrgencyBonus
	score := b.RawScore

	for _, f := range floors {
		if f.applies(in, units) {
			if score < f.minimum {
				score = f.minimum
				b.FloorApplied = f.minimum
			}
			break
		}
	}

	ceiling := MaxScore
	if in.IsResearching() {
		ceiling = ResearchingCap
	}
	if score > ceiling {
		score = ceiling
		b.CapApplied = ceiling
	}
	if score < 0 {
		score = 0
	}

	b.NormalizedScore = score
	b.ResponseTime = tiers.ResponseTime(score)

	return Result{Score: score, Tier: tier, Breakdown: b}
}

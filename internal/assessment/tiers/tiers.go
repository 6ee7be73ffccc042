// Package tiers classifies a project into a customer tier and maps a priority
// score to its sales follow-up commitment.
package tiers

import "intake_backend/internal/assessment/domain"

// band is a closed-open unit-count interval [min, max). max == 0 means unbounded.
type band struct {
	tier     domain.Tier
	min      int
	max      int
	assignee string
}

// bands are ascending and non-overlapping; a count on a boundary belongs to
// the higher tier.
var bands = []band{
	{tier: domain.TierPioneer, min: 0, max: 50, assignee: "Lead Development Team"},
	{tier: domain.TierPreferred, min: 50, max: 200, assignee: "Sales Representative"},
	{tier: domain.TierElite, min: 200, max: 0, assignee: "Senior Sales Manager"},
}

// Classify returns the tier for units. Researching leads and zero-unit
// projects are always pioneer.
func Classify(units int, readiness string) domain.Tier {
	units = domain.ClampUnits(units)
	if readiness == domain.ReadinessResearching || units == 0 {
		return domain.TierPioneer
	}
	for i := len(bands) - 1; i >= 0; i-- {
		if units >= bands[i].min {
			return bands[i].tier
		}
	}
	return domain.TierPioneer
}

// Assignee returns the sales role that owns leads in tier.
func Assignee(tier domain.Tier) string {
	for _, b := range bands {
		if b.tier == tier {
			return b.assignee
		}
	}
	return bands[0].assignee
}

// sla maps a minimum score to the committed response window.
type sla struct {
	minScore     int
	responseTime string
	level        string
	message      string
}

var slas = []sla{
	{minScore: 80, responseTime: "2 hours", level: "critical", message: "PRIORITY PROJECT: a senior member of our sales team will contact you within 2 hours."},
	{minScore: 60, responseTime: "6 hours", level: "high", message: "HIGH-VALUE PROJECT: a sales representative will contact you within 6 hours."},
	{minScore: 40, responseTime: "24 hours", level: "medium", message: "QUALIFIED PROJECT: a sales representative will contact you within 24 hours."},
	{minScore: 0, responseTime: "72 hours", level: "low", message: "FUTURE OPPORTUNITY: our lead development team will contact you within 72 hours."},
}

func slaFor(score int) sla {
	for _, s := range slas {
		if score >= s.minScore {
			return s
		}
	}
	return slas[len(slas)-1]
}

// ResponseTime returns the committed follow-up window for score.
func ResponseTime(score int) string {
	return slaFor(score).responseTime
}

// PriorityLevel returns a short label (critical, high, medium, low) for score.
func PriorityLevel(score int) string {
	return slaFor(score).level
}

// PriorityMessage returns the user-facing follow-up message for score.
func PriorityMessage(score int) string {
	return slaFor(score).message
}

package tiers

import (
	"strings"
	"testing"

	"intake_backend/internal/assessment/domain"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		units     int
		readiness string
		want      domain.Tier
	}{
		{units: 0, want: domain.TierPioneer},
		{units: 1, want: domain.TierPioneer},
		{units: 10, want: domain.TierPioneer},
		{units: 49, want: domain.TierPioneer},
		{units: 50, want: domain.TierPreferred},
		{units: 199, want: domain.TierPreferred},
		{units: 200, want: domain.TierElite},
		{units: 10000, want: domain.TierElite},
		{units: 50000, want: domain.TierElite},
		{units: -5, want: domain.TierPioneer},
		{units: 500, readiness: domain.ReadinessResearching, want: domain.TierPioneer},
		{units: 500, readiness: domain.ReadinessImmediate, want: domain.TierElite},
	}

	for _, tc := range tests {
		if got := Classify(tc.units, tc.readiness); got != tc.want {
			t.Fatalf("Classify(%d, %q) = %s, want %s", tc.units, tc.readiness, got, tc.want)
		}
	}
}

func TestResponseTime(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 100, want: "2 hours"},
		{score: 80, want: "2 hours"},
		{score: 79, want: "6 hours"},
		{score: 60, want: "6 hours"},
		{score: 59, want: "24 hours"},
		{score: 40, want: "24 hours"},
		{score: 39, want: "72 hours"},
		{score: 0, want: "72 hours"},
	}

	for _, tc := range tests {
		if got := ResponseTime(tc.score); got != tc.want {
			t.Fatalf("ResponseTime(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAssignee(t *testing.T) {
	if got := Assignee(domain.TierElite); got != "Senior Sales Manager" {
		t.Fatalf("unexpected elite assignee %q", got)
	}
	if got := Assignee(domain.TierPioneer); got != "Lead Development Team" {
		t.Fatalf("unexpected pioneer assignee %q", got)
	}
	if got := Assignee(domain.Tier("unknown")); got != "Lead Development Team" {
		t.Fatalf("unknown tier should fall back to pioneer assignee, got %q", got)
	}
}

func TestPriorityMessageMatchesResponseTime(t *testing.T) {
	for _, score := range []int{0, 39, 40, 60, 80, 100} {
		msg := PriorityMessage(score)
		if !strings.Contains(msg, ResponseTime(score)) {
			t.Fatalf("message %q does not mention %q", msg, ResponseTime(score))
		}
		if level := PriorityLevel(score); level == "" {
			t.Fatalf("empty level for score %d", score)
		}
	}
}

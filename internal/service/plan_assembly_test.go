package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateKey(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		expected  string
	}{
		{"wedding", "Wedding Reception", "wedding"},
		{"corporate", "Corporate Offsite", "corporate"},
		{"product launch maps to corporate", "Product Launch", "corporate"},
		{"conference maps to corporate", "Tech Conference", "corporate"},
		{"birthday", "Birthday Party", "birthday"},
		{"unknown falls back to birthday", "Garden Gathering", "birthday"},
		{"empty falls back to birthday", "", "birthday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, templateKey(tt.eventType))
		})
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		name     string
		budget   string
		expected int
	}{
		{"plain number", "50000", 50000},
		{"currency formatting", "$10,000", 10000},
		{"embedded in prose", "around 25000 rupees", 25000},
		{"no digits defaults", "flexible", 10000},
		{"empty defaults", "", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseBudget(tt.budget))
		})
	}
}

func TestBuildBudgetBreakdownPercentagesApply(t *testing.T) {
	breakdown := buildBudgetBreakdown("wedding", "$20,000")

	assert.Len(t, breakdown, 6)
	assert.Equal(t, "Venue", breakdown[0].Category)
	assert.Equal(t, 8000, breakdown[0].Amount) // 40% of 20000

	totalPct := 0
	for _, item := range breakdown {
		totalPct += item.Percentage
	}
	assert.Equal(t, 100, totalPct)
}

func TestBuildTimelineHasStableIDs(t *testing.T) {
	timeline := buildTimeline("corporate")

	assert.NotEmpty(t, timeline)
	assert.Equal(t, "timeline_0", timeline[0].ID)
	assert.Equal(t, "priority", timeline[0].Status)
}

func TestBuildTitle(t *testing.T) {
	assert.Equal(t, "Wedding Celebration - June 2026", buildTitle("wedding", "2026-06-20"))
	assert.Equal(t, "Corporate Event - TBD", buildTitle("corporate", "someday"))
	assert.Equal(t, "Event - TBD", buildTitle("", ""))
}

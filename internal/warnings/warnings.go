// ABOUTME: Advisory warning engine for a day's extracted hour registrations.
// ABOUTME: Flags suspiciously low weekday totals unless an absence entry explains the gap.

// Package warnings post-processes a day's timesheet entries into advisory
// annotations. Warnings ride alongside the data and never block a response.
package warnings

import (
	"fmt"
	"strings"

	"github.com/trifork/tidsreg-gateway/internal/extract"
)

// TypeSuspiciousHours flags a weekday whose registered total falls short of a
// full working day without an absence entry explaining the gap.
const TypeSuspiciousHours = "suspicious_hours"

// DefaultFullDayHours is the expected weekday total when none is configured.
const DefaultFullDayHours = 7.0

// DefaultAbsenceActivities are the activity names treated as leave or absence
// in the upstream locale. Matching is case-insensitive on the activity name.
var DefaultAbsenceActivities = []string{"sygdom", "ferie", "barsel", "afspadsering", "orlov"}

// weekend holds the source-locale day names that never produce warnings.
var weekend = map[string]bool{
	"Samedi":   true,
	"Dimanche": true,
}

// Warning is an advisory annotation on timesheet data. Computed, never
// persisted.
type Warning struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Engine evaluates a day's entries against the configured full-day policy.
// The zero value is not usable; construct with New.
type Engine struct {
	fullDayHours float64
	absence      map[string]bool
}

// New builds an Engine. Zero fullDayHours and a nil activity list select the
// defaults.
func New(fullDayHours float64, absenceActivities []string) *Engine {
	if fullDayHours <= 0 {
		fullDayHours = DefaultFullDayHours
	}
	if absenceActivities == nil {
		absenceActivities = DefaultAbsenceActivities
	}

	absence := make(map[string]bool, len(absenceActivities))
	for _, a := range absenceActivities {
		absence[strings.ToLower(a)] = true
	}

	return &Engine{fullDayHours: fullDayHours, absence: absence}
}

// Evaluate returns the warnings for one day. It never mutates entries and
// always returns a newly constructed slice, possibly empty.
//
// Policy: a weekday whose total falls below the full-day threshold produces
// exactly one suspicious_hours warning, unless any entry is an absence or
// leave category, in which case the shortfall is considered explained.
func (e *Engine) Evaluate(dayName string, totalHours float64, entries []extract.Registration) []Warning {
	result := make([]Warning, 0)

	if weekend[dayName] {
		return result
	}
	if totalHours >= e.fullDayHours {
		return result
	}

	for _, entry := range entries {
		if e.absence[strings.ToLower(entry.ActivityName)] {
			return result
		}
	}

	result = append(result, Warning{
		Type: TypeSuspiciousHours,
		Message: fmt.Sprintf("Seulement %sh enregistrées pour %s (journée complète attendue: %sh)",
			extract.FormatHours(totalHours), dayName, extract.FormatHours(e.fullDayHours)),
		Suggestion: "Vérifie que toutes les heures de cette journée ont bien été saisies dans Tidsreg",
	})
	return result
}

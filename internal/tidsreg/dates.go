// ABOUTME: Date helpers: ISO date parsing, source-locale day names, ISO week arithmetic.
// ABOUTME: The upstream Hours view is addressed by a compact yyyymmdd path segment.

package tidsreg

import (
	"fmt"
	"time"
)

// isoDate is the wire format for every date parameter (YYYY-MM-DD).
const isoDate = "2006-01-02"

// dayNames maps Go weekdays to the source-locale names the upstream renders.
var dayNames = map[time.Weekday]string{
	time.Monday:    "Lundi",
	time.Tuesday:   "Mardi",
	time.Wednesday: "Mercredi",
	time.Thursday:  "Jeudi",
	time.Friday:    "Vendredi",
	time.Saturday:  "Samedi",
	time.Sunday:    "Dimanche",
}

// parseDate validates and parses an ISO YYYY-MM-DD date string.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: got %q", ErrInvalidDate, s)
	}
	return t, nil
}

// hoursPath converts a date into the upstream week timesheet path. The Hours
// view always serves the full week containing the date.
func hoursPath(t time.Time) string {
	return "/Hours/" + t.Format("20060102")
}

// dayName returns the source-locale name for a date's weekday.
func dayName(t time.Time) string {
	return dayNames[t.Weekday()]
}

// mondayOfISOWeek returns the Monday starting the given ISO week. January 4th
// always falls in ISO week 1.
func mondayOfISOWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	back := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -back)
	return monday.AddDate(0, 0, (week-1)*7)
}

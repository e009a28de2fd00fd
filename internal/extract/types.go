// ABOUTME: Typed records produced by the HTML extraction functions.
// ABOUTME: Mirrors the upstream hierarchy: customer, project, phase, activity, kind.

// Package extract maps raw Tidsreg HTML views to typed records.
//
// Every function in this package is pure: it takes already-fetched markup and
// returns either an ordered slice of records or a ParseError. A missing
// structural anchor is always a ParseError; an anchor with zero rows is a
// legitimately empty result. Nothing here performs network I/O.
package extract

// Customer is one entry from the customer selection view.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is one entry from the project selection view, scoped to a customer
// and to the query date that produced it.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CustomerID string `json:"customer_id"`
}

// Phase is one entry from the phase selection view.
type Phase struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

// Activity is one entry from the activity selection view.
type Activity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhaseID  string `json:"phase_id"`
	Billable bool   `json:"billable"`
}

// Kind is one entry from the kind selection view. Upstream keys this view by
// (project name, activity name), not by a numeric id.
type Kind struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registration is a single row from the week timesheet view. Hours carries
// the normalized value; HoursDisplay preserves the upstream comma-decimal
// string for user-facing echo.
type Registration struct {
	Date         string  `json:"date"`
	CustomerName string  `json:"customer"`
	ProjectName  string  `json:"project"`
	ActivityName string  `json:"activity"`
	KindName     string  `json:"kind"`
	Hours        float64 `json:"hours"`
	HoursDisplay string  `json:"hours_display"`
	Billable     bool    `json:"billable"`
}

// WeekInfo identifies the week a timesheet view covers.
type WeekInfo struct {
	Week  int    `json:"week"`
	Year  int    `json:"year"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeekData is the full result of extracting one week timesheet view.
type WeekData struct {
	Info          WeekInfo       `json:"week_info"`
	Registrations []Registration `json:"registrations"`
}

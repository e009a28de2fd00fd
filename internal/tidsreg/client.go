// ABOUTME: Navigation client composing the session store and the HTML extraction layer.
// ABOUTME: One hierarchical query API plus the week-granular timesheet query with day filtering.

// Package tidsreg is the query API over the upstream time-registration
// application. It threads every call through the shared session store,
// hands the fetched markup to the extraction layer, and augments timesheet
// results with advisory warnings.
//
// The hierarchy below Customer is not date-invariant: upstream scopes
// project/phase/activity visibility by the query date, so ids must always be
// reused together with the date that produced them. The client passes dates
// through unmodified and never caches across distinct dates.
package tidsreg

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/trifork/tidsreg-gateway/internal/extract"
	"github.com/trifork/tidsreg-gateway/internal/session"
	"github.com/trifork/tidsreg-gateway/internal/warnings"
)

// Upstream hierarchy endpoints. All take mode=0 plus their scope parameters.
const (
	pathCustomers  = "/Find/SelectCustomers"
	pathProjects   = "/Find/SelectProjects"
	pathPhases     = "/Find/SelectPhases"
	pathActivities = "/Find/SelectActivities"
	pathKinds      = "/Find/SelectKinds"
)

// HourEntry is one day-filtered registration. Hours carries the normalized
// value; HoursDisplay echoes the upstream comma-decimal string.
type HourEntry struct {
	ActivityName string  `json:"activity"`
	ProjectName  string  `json:"project"`
	Hours        float64 `json:"hours_value"`
	HoursDisplay string  `json:"hours"`
	Billable     bool    `json:"billable"`
	Date         string  `json:"date"`
}

// DayReport is the complete result of one timesheet query: the day's filtered
// entries, their total, the advisory warnings, and the raw week the filter ran
// over. Callers get every derived view in one call; the week fetch is the
// expensive operation and is never repeated per sub-query.
type DayReport struct {
	Date          string                 `json:"date"`
	DayName       string                 `json:"day_name"`
	Week          extract.WeekInfo       `json:"week_info"`
	TotalHours    float64                `json:"total_hours_for_day"`
	TotalDisplay  string                 `json:"total_hours_display"`
	Entries       []HourEntry            `json:"hours_for_day"`
	Warnings      []warnings.Warning     `json:"warnings"`
	Registrations []extract.Registration `json:"raw_registrations"`
}

// Client is the navigation client. All operations share one session store;
// the mutex serializes session mutation and the navigation cursor across
// concurrent adapter requests.
type Client struct {
	mu      sync.Mutex
	session *session.Store
	engine  *warnings.Engine
	logger  *slog.Logger
	cursor  time.Time
}

// New builds a Client around an existing session store and warning engine.
// The navigation cursor starts at today.
func New(store *session.Store, engine *warnings.Engine, logger *slog.Logger) *Client {
	return &Client{
		session: store,
		engine:  engine,
		logger:  logger,
		cursor:  time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// Login authenticates against the upstream application. Idempotent on
// success; a failure is returned without retry.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Login(ctx, username, password)
}

// Logout drops the stored session.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Logout()
}

// Authenticated reports whether a login has succeeded.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Authenticated()
}

// ListCustomers returns all customers visible to the session.
func (c *Client) ListCustomers(ctx context.Context) ([]extract.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	html, err := c.fetch(ctx, pathCustomers, url.Values{"mode": {"0"}})
	if err != nil {
		return nil, err
	}
	return extract.Customers(html)
}

// ListProjects returns the projects of a customer active on the given date.
func (c *Client) ListProjects(ctx context.Context, customerID, date string) ([]extract.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	html, err := c.fetch(ctx, pathProjects, url.Values{
		"mode":       {"0"},
		"date":       {date},
		"customerId": {customerID},
	})
	if err != nil {
		return nil, notFoundAs(err, "customer", customerID)
	}
	return extract.Projects(html, customerID)
}

// ListPhases returns the phases of a project on the given date.
func (c *Client) ListPhases(ctx context.Context, projectID, date string) ([]extract.Phase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	html, err := c.fetch(ctx, pathPhases, url.Values{
		"mode":      {"0"},
		"date":      {date},
		"projectId": {projectID},
	})
	if err != nil {
		return nil, notFoundAs(err, "project", projectID)
	}
	return extract.Phases(html, projectID)
}

// ListActivities returns the activities of a phase on the given date.
func (c *Client) ListActivities(ctx context.Context, phaseID, date string) ([]extract.Activity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	html, err := c.fetch(ctx, pathActivities, url.Values{
		"mode":    {"0"},
		"date":    {date},
		"phaseId": {phaseID},
	})
	if err != nil {
		return nil, notFoundAs(err, "phase", phaseID)
	}
	return extract.Activities(html, phaseID)
}

// ListKinds returns the kinds available for a project/activity pair. Upstream
// keys this view by the NAME pair, not by numeric ids; the names are part of
// the lookup key, not display-only strings.
func (c *Client) ListKinds(ctx context.Context, projectName, activityName string) ([]extract.Kind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	html, err := c.fetch(ctx, pathKinds, url.Values{
		"mode":         {"0"},
		"projectName":  {projectName},
		"activityName": {activityName},
	})
	if err != nil {
		return nil, notFoundAs(err, "kind", projectName+"/"+activityName)
	}
	return extract.Kinds(html)
}

// RegisteredHours fetches the week containing date in one round trip, filters
// the extracted registrations to that day, sums the total, and runs the
// warning engine. An empty date uses the navigation cursor.
func (c *Client) RegisteredHours(ctx context.Context, date string) (*DayReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var day time.Time
	var err error
	if date == "" {
		day = c.cursor
		date = day.Format(isoDate)
	} else if day, err = parseDate(date); err != nil {
		return nil, err
	}

	html, err := c.fetch(ctx, hoursPath(day), nil)
	if err != nil {
		return nil, err
	}

	week, err := extract.Week(html)
	if err != nil {
		return nil, err
	}

	var entries []HourEntry
	var dayRegs []extract.Registration
	var total float64
	for _, reg := range week.Registrations {
		if reg.Date != date {
			continue
		}
		dayRegs = append(dayRegs, reg)
		entries = append(entries, HourEntry{
			ActivityName: reg.ActivityName,
			ProjectName:  reg.ProjectName,
			Hours:        reg.Hours,
			HoursDisplay: reg.HoursDisplay,
			Billable:     reg.Billable,
			Date:         reg.Date,
		})
		total += reg.Hours
	}
	if entries == nil {
		entries = make([]HourEntry, 0)
	}

	report := &DayReport{
		Date:          date,
		DayName:       dayName(day),
		Week:          week.Info,
		TotalHours:    total,
		TotalDisplay:  extract.FormatHours(total),
		Entries:       entries,
		Warnings:      c.engine.Evaluate(dayName(day), total, dayRegs),
		Registrations: week.Registrations,
	}

	c.logger.Debug("registered hours",
		"date", date,
		"entries", len(entries),
		"total", report.TotalDisplay,
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// NavigateToDate re-points the navigation cursor without fetching.
func (c *Client) NavigateToDate(date string) error {
	day, err := parseDate(date)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = day
	return nil
}

// NavigateWeeks moves the cursor by whole weeks relative to its current
// position. Purely a cursor update.
func (c *Client) NavigateWeeks(offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = c.cursor.AddDate(0, 0, 7*offset)
}

// NavigateToWeek points the cursor at the Monday of an explicit ISO week.
func (c *Client) NavigateToWeek(year, week int) error {
	if week < 1 || week > 53 {
		return errors.New("week must be between 1 and 53")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = mondayOfISOWeek(year, week)
	return nil
}

// CurrentDate returns the navigation cursor as an ISO date.
func (c *Client) CurrentDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.Format(isoDate)
}

// fetch guards every upstream read with the fail-fast authentication check.
// Callers must hold the client mutex.
func (c *Client) fetch(ctx context.Context, path string, query url.Values) (string, error) {
	if err := c.session.EnsureAuthenticated(); err != nil {
		return "", err
	}
	return c.session.Get(ctx, path, query)
}

// notFoundAs converts an upstream 404 into a typed not-found error carrying
// the resource kind and key of the request that produced it.
func notFoundAs(err error, resource, key string) error {
	var ue *session.UpstreamError
	if errors.As(err, &ue) && ue.StatusCode == 404 {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return err
}

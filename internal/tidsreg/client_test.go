// ABOUTME: Tests for the navigation client against a fake upstream.
// ABOUTME: Covers idempotence, date passthrough, day filtering, warnings, and expiry conversion.

package tidsreg

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trifork/tidsreg-gateway/internal/extract"
	"github.com/trifork/tidsreg-gateway/internal/session"
	"github.com/trifork/tidsreg-gateway/internal/warnings"
)

// weekFixture is the week containing 2025-10-01 (Mercredi) and 2025-10-02
// (Jeudi). Wednesday totals 7,50 across an absence and a billable entry;
// Thursday has only 5,50 and no absence entry.
const weekFixture = `
<html><body>
<div id="WeekHeader" data-week="40" data-year="2025" data-start="2025-09-29" data-end="2025-10-05">Uge 40</div>
<table id="Registrations">
  <tr class="registration" data-date="2025-09-29" data-billable="true">
    <td class="customer">Trifork</td><td class="project">Backend Service</td>
    <td class="activity">API</td><td class="kind">Development</td><td class="hours">7,50</td>
  </tr>
  <tr class="registration" data-date="2025-10-01" data-billable="false">
    <td class="customer">Trifork</td><td class="project">Intern</td>
    <td class="activity">Sygdom</td><td class="kind">Absence</td><td class="hours">4,50</td>
  </tr>
  <tr class="registration" data-date="2025-10-01" data-billable="true">
    <td class="customer">Trifork</td><td class="project">Backend Service</td>
    <td class="activity">Backend Service / API</td><td class="kind">Development</td><td class="hours">3,00</td>
  </tr>
  <tr class="registration" data-date="2025-10-02" data-billable="true">
    <td class="customer">Trifork</td><td class="project">Backend Service</td>
    <td class="activity">API</td><td class="kind">Development</td><td class="hours">5,50</td>
  </tr>
</table>
</body></html>`

// fakeUpstream records every request so tests can assert passthrough and
// fetch counts.
type fakeUpstream struct {
	mu       sync.Mutex
	requests []string
	server   *httptest.Server
	expired  bool
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}

	mux := http.NewServeMux()
	mux.HandleFunc("/Login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.SetCookie(w, &http.Cookie{Name: "AuthTicket", Value: "t", Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/Find/SelectCustomers", f.record(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<select id="Customers">
		  <option value="42">Trifork</option>
		  <option value="57">Danske Bank</option>
		</select>`)
	}))
	mux.HandleFunc("/Find/SelectProjects", f.record(func(w http.ResponseWriter, r *http.Request) {
		// Visibility is date-scoped upstream; the fake mimics that.
		if r.URL.Query().Get("date") == "2025-10-02" {
			fmt.Fprint(w, `<select id="Projects"><option value="101">Backend Service</option></select>`)
			return
		}
		fmt.Fprint(w, `<select id="Projects">
		  <option value="101">Backend Service</option>
		  <option value="102">Legacy Migration</option>
		</select>`)
	}))
	mux.HandleFunc("/Find/SelectPhases", f.record(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	mux.HandleFunc("/Find/SelectActivities", f.record(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<select id="Activities"><option value="11" data-billable="true">API</option></select>`)
	}))
	mux.HandleFunc("/Find/SelectKinds", f.record(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<select id="Kinds"><option value="3">Development</option></select>`)
	}))
	mux.HandleFunc("/Hours/", f.record(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, weekFixture)
	}))

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) record(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.String())
		expired := f.expired
		f.mu.Unlock()

		if expired {
			http.Redirect(w, r, "/Login?ReturnUrl=%2F", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (f *fakeUpstream) expire() {
	f.mu.Lock()
	f.expired = true
	f.mu.Unlock()
}

func (f *fakeUpstream) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newClient(t *testing.T, upstream *fakeUpstream) *Client {
	t.Helper()
	store, err := session.New(upstream.server.URL, 5*time.Second, slog.Default())
	require.NoError(t, err)
	return New(store, warnings.New(0, nil), slog.Default())
}

func login(t *testing.T, c *Client) {
	t.Helper()
	require.NoError(t, c.Login(context.Background(), "alice", "secret"))
}

func TestOperationsRequireAuthentication(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	ctx := context.Background()

	var authErr *session.AuthError

	_, err := c.ListCustomers(ctx)
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, session.ReasonNotAuthenticated, authErr.Reason)

	_, err = c.RegisteredHours(ctx, "2025-10-01")
	assert.ErrorAs(t, err, &authErr)

	// The fail-fast check never reached upstream.
	assert.Empty(t, upstream.recorded())
}

func TestListCustomers_Idempotent(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)
	ctx := context.Background()

	first, err := c.ListCustomers(ctx)
	require.NoError(t, err)
	second, err := c.ListCustomers(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []extract.Customer{
		{ID: "42", Name: "Trifork"},
		{ID: "57", Name: "Danske Bank"},
	}, first)
}

func TestListProjects_DatePassthroughWithoutCaching(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)
	ctx := context.Background()

	wide, err := c.ListProjects(ctx, "42", "2025-10-01")
	require.NoError(t, err)
	narrow, err := c.ListProjects(ctx, "42", "2025-10-02")
	require.NoError(t, err)

	// Same customer, different dates: legitimately different results.
	assert.Len(t, wide, 2)
	assert.Len(t, narrow, 1)
	assert.Equal(t, "42", wide[0].CustomerID)

	// Both dates went upstream unmodified; nothing was served from a cache.
	var dates []string
	for _, u := range upstream.recorded() {
		if req, err := http.NewRequest(http.MethodGet, u, nil); err == nil && req.URL.Path == "/Find/SelectProjects" {
			dates = append(dates, req.URL.Query().Get("date"))
		}
	}
	assert.Equal(t, []string{"2025-10-01", "2025-10-02"}, dates)
}

func TestListProjects_RejectsBadDate(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	_, err := c.ListProjects(context.Background(), "42", "01/10/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, upstream.recorded())
}

func TestListPhases_404BecomesNotFound(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	_, err := c.ListPhases(context.Background(), "999", "2025-10-01")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "project", nfErr.Resource)
	assert.Equal(t, "999", nfErr.Key)
}

func TestListKinds_KeyedByNamePair(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	kinds, err := c.ListKinds(context.Background(), "Backend Service", "API")
	require.NoError(t, err)
	require.Len(t, kinds, 1)
	assert.Equal(t, "Development", kinds[0].Name)

	recorded := upstream.recorded()
	require.Len(t, recorded, 1)
	req, err := http.NewRequest(http.MethodGet, recorded[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "Backend Service", req.URL.Query().Get("projectName"))
	assert.Equal(t, "API", req.URL.Query().Get("activityName"))
}

func TestRegisteredHours_FullDay(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	report, err := c.RegisteredHours(context.Background(), "2025-10-01")
	require.NoError(t, err)

	assert.Equal(t, "Mercredi", report.DayName)
	assert.Equal(t, extract.WeekInfo{Week: 40, Year: 2025, Start: "2025-09-29", End: "2025-10-05"}, report.Week)
	assert.Equal(t, 7.5, report.TotalHours)
	assert.Equal(t, "7,50", report.TotalDisplay)
	assert.Empty(t, report.Warnings)

	// Exactly the Wednesday entries, in document order.
	require.Len(t, report.Entries, 2)
	assert.Equal(t, HourEntry{
		ActivityName: "Sygdom",
		ProjectName:  "Intern",
		Hours:        4.5,
		HoursDisplay: "4,50",
		Billable:     false,
		Date:         "2025-10-01",
	}, report.Entries[0])
	assert.Equal(t, HourEntry{
		ActivityName: "Backend Service / API",
		ProjectName:  "Backend Service",
		Hours:        3.0,
		HoursDisplay: "3,00",
		Billable:     true,
		Date:         "2025-10-01",
	}, report.Entries[1])

	// The raw week rides along untouched.
	assert.Len(t, report.Registrations, 4)
}

func TestRegisteredHours_ShortWeekdayWarns(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	report, err := c.RegisteredHours(context.Background(), "2025-10-02")
	require.NoError(t, err)

	assert.Equal(t, "Jeudi", report.DayName)
	assert.Equal(t, 5.5, report.TotalHours)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "suspicious_hours", report.Warnings[0].Type)
	assert.Contains(t, report.Warnings[0].Message, "5,50h")
	assert.Contains(t, report.Warnings[0].Message, "Jeudi")
}

func TestRegisteredHours_DayWithoutEntries(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	// Sunday of the fixture week: no entries, no warnings.
	report, err := c.RegisteredHours(context.Background(), "2025-10-05")
	require.NoError(t, err)

	assert.Equal(t, "Dimanche", report.DayName)
	assert.Zero(t, report.TotalHours)
	assert.Empty(t, report.Entries)
	assert.NotNil(t, report.Entries)
	assert.Empty(t, report.Warnings)
}

func TestRegisteredHours_SessionExpiryConversion(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)
	login(t, c)

	upstream.expire()

	_, err := c.RegisteredHours(context.Background(), "2025-10-01")
	assert.ErrorIs(t, err, session.ErrSessionExpired)

	var upErr *session.UpstreamError
	assert.NotErrorAs(t, err, &upErr)
}

func TestRegisteredHours_ParseErrorIsSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "AuthTicket", Value: "t", Path: "/"})
	})
	mux.HandleFunc("/Hours/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>maintenance page</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store, err := session.New(srv.URL, 5*time.Second, slog.Default())
	require.NoError(t, err)
	c := New(store, warnings.New(0, nil), slog.Default())
	login(t, c)

	_, err = c.RegisteredHours(context.Background(), "2025-10-01")

	var perr *extract.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, extract.ViewHours, perr.View)
}

func TestNavigation(t *testing.T) {
	upstream := newFakeUpstream(t)
	c := newClient(t, upstream)

	t.Run("navigate to date updates the cursor without fetching", func(t *testing.T) {
		require.NoError(t, c.NavigateToDate("2025-10-01"))
		assert.Equal(t, "2025-10-01", c.CurrentDate())
		assert.Empty(t, upstream.recorded())
	})

	t.Run("relative week offsets", func(t *testing.T) {
		require.NoError(t, c.NavigateToDate("2025-10-01"))
		c.NavigateWeeks(-1)
		assert.Equal(t, "2025-09-24", c.CurrentDate())
		c.NavigateWeeks(2)
		assert.Equal(t, "2025-10-08", c.CurrentDate())
	})

	t.Run("explicit ISO week lands on its Monday", func(t *testing.T) {
		require.NoError(t, c.NavigateToWeek(2025, 40))
		assert.Equal(t, "2025-09-29", c.CurrentDate())

		require.NoError(t, c.NavigateToWeek(2026, 1))
		assert.Equal(t, "2025-12-29", c.CurrentDate())
	})

	t.Run("week bounds are validated", func(t *testing.T) {
		assert.Error(t, c.NavigateToWeek(2025, 0))
		assert.Error(t, c.NavigateToWeek(2025, 54))
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		assert.ErrorIs(t, c.NavigateToDate("tomorrow"), ErrInvalidDate)
	})

	t.Run("hours query with empty date uses the cursor", func(t *testing.T) {
		login(t, c)
		require.NoError(t, c.NavigateToDate("2025-10-02"))

		report, err := c.RegisteredHours(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "2025-10-02", report.Date)
		assert.Equal(t, "Jeudi", report.DayName)
	})
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &session.AuthError{Reason: session.ReasonNotAuthenticated}, CategoryAuth},
		{"expired", session.ErrSessionExpired, CategorySessionExpired},
		{"network", &session.NetworkError{Kind: session.NetworkTimeout}, CategoryNetwork},
		{"parse", &extract.ParseError{View: extract.ViewHours, Reason: "x"}, CategoryParse},
		{"upstream", &session.UpstreamError{StatusCode: 500}, CategoryUpstream},
		{"notfound", &NotFoundError{Resource: "customer", Key: "1"}, CategoryNotFound},
		{"bad date", fmt.Errorf("wrap: %w", ErrInvalidDate), CategoryInvalidInput},
		{"unknown", fmt.Errorf("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

// ABOUTME: Cookie-based session store for the upstream Tidsreg application.
// ABOUTME: Owns login/logout lifecycle, the shared http.Client, and expiry detection.

// Package session holds the authentication state against the upstream
// application: the cookie jar carrying the AuthTicket, the base URL, and the
// bounded-timeout HTTP client every navigation call goes through.
//
// Exactly one Store lives per process. Login is performed only on an explicit
// request and is idempotent on success; a detected expiry is surfaced as
// ErrSessionExpired and never silently repaired.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// authCookie is the upstream session ticket cookie name.
const authCookie = "AuthTicket"

// loginPath is the upstream credential exchange endpoint.
const loginPath = "/Login"

// Store holds the authenticated session against the upstream application.
type Store struct {
	baseURL       *url.URL
	client        *http.Client
	logger        *slog.Logger
	authenticated bool
}

// New creates a Store for the given upstream base URL. Every request carries
// the bounded timeout; expiry of the timeout surfaces as a NetworkError with
// kind timeout, never a hang.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Store, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("upstream base URL must be absolute")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Store{
		baseURL: u,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Login performs the upstream credential exchange once. On success the
// resulting AuthTicket cookie is stored in the jar and the store becomes
// authenticated; calling Login again with valid credentials simply replaces
// the stored session. A failed login is a user-input problem: no retry, no
// credential caching.
func (s *Store) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"userName": {username},
		"password": {password},
	}

	loginURL := s.resolve(loginPath)
	loginURL.RawQuery = url.Values{"ReturnUrl": {"/"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return mapNetworkError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	if !s.hasTicket() {
		s.authenticated = false
		s.logger.Warn("login rejected by upstream")
		return &AuthError{Reason: ReasonInvalidCredentials}
	}

	s.authenticated = true
	s.logger.Info("authenticated against upstream", "base_url", s.baseURL.Host)
	return nil
}

// Logout drops the stored ticket. The upstream session, if still live, is
// simply abandoned.
func (s *Store) Logout() {
	jar, err := cookiejar.New(nil)
	if err == nil {
		s.client.Jar = jar
	}
	s.authenticated = false
	s.logger.Info("session cleared")
}

// EnsureAuthenticated fails fast when no session exists. It never triggers an
// implicit re-login.
func (s *Store) EnsureAuthenticated() error {
	if !s.authenticated {
		return &AuthError{Reason: ReasonNotAuthenticated}
	}
	return nil
}

// Authenticated reports whether a login has succeeded this session.
func (s *Store) Authenticated() bool {
	return s.authenticated
}

// Get fetches an upstream path with the session cookie attached and returns
// the response body. Transport failures, expiry signatures, and non-2xx
// statuses all come back as typed errors.
func (s *Store) Get(ctx context.Context, path string, query url.Values) (string, error) {
	u := s.resolve(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", mapNetworkError(err)
	}
	defer resp.Body.Close()

	if !s.ValidResponse(resp) {
		// A live session just went stale. Convert the generic HTTP failure
		// into the typed expiry signal and drop the dead ticket.
		s.authenticated = false
		return "", ErrSessionExpired
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", mapNetworkError(err)
	}
	return string(body), nil
}

// ValidResponse inspects a response for the silent session-expiry signature:
// a 401, or a redirect (or final URL, after following redirects) pointing at
// the login page.
func (s *Store) ValidResponse(resp *http.Response) bool {
	if resp.StatusCode == http.StatusUnauthorized {
		return false
	}
	if loc := resp.Header.Get("Location"); loc != "" && strings.Contains(loc, loginPath) {
		return false
	}
	if resp.Request != nil && resp.Request.URL != nil &&
		strings.HasPrefix(resp.Request.URL.Path, loginPath) {
		return false
	}
	return true
}

func (s *Store) hasTicket() bool {
	for _, c := range s.client.Jar.Cookies(s.baseURL) {
		if c.Name == authCookie {
			return true
		}
	}
	return false
}

func (s *Store) resolve(path string) *url.URL {
	return s.baseURL.ResolveReference(&url.URL{Path: path})
}

// mapNetworkError categorizes a transport failure. Timeouts cover both the
// client deadline and a canceled context.
func mapNetworkError(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &NetworkError{Kind: NetworkDNS, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &NetworkError{Kind: NetworkConnectionRefused, Err: err}
	}

	return &NetworkError{Kind: NetworkOther, Err: err}
}

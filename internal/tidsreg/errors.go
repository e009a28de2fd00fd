// ABOUTME: Resource-level error types and the adapter-facing error categorization.
// ABOUTME: Transport and auth errors live in internal/session, parse errors in internal/extract.

package tidsreg

import (
	"errors"
	"fmt"

	"github.com/trifork/tidsreg-gateway/internal/extract"
	"github.com/trifork/tidsreg-gateway/internal/session"
)

// ErrInvalidDate reports a date parameter that is not ISO YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

// NotFoundError reports that an upstream lookup returned 404 for a specific
// resource key. Adapters map it to HTTP 404 or an isError tool result.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found upstream", e.Resource, e.Key)
}

// Error categories shared by both protocol adapters. Each typed error in the
// core maps to exactly one category; adapters translate categories 1:1 into
// HTTP status codes or JSON-RPC tool errors.
const (
	CategoryAuth           = "auth_error"
	CategorySessionExpired = "session_expired"
	CategoryNetwork        = "network_error"
	CategoryParse          = "parse_error"
	CategoryUpstream       = "upstream_error"
	CategoryNotFound       = "not_found"
	CategoryInvalidInput   = "invalid_input"
	CategoryInternal       = "internal_error"
)

// Categorize maps a typed core error onto its adapter category.
func Categorize(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return CategoryAuth
	}
	if errors.Is(err, session.ErrSessionExpired) {
		return CategorySessionExpired
	}

	var netErr *session.NetworkError
	if errors.As(err, &netErr) {
		return CategoryNetwork
	}

	var parseErr *extract.ParseError
	if errors.As(err, &parseErr) {
		return CategoryParse
	}

	var upErr *session.UpstreamError
	if errors.As(err, &upErr) {
		return CategoryUpstream
	}

	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return CategoryNotFound
	}

	if errors.Is(err, ErrInvalidDate) {
		return CategoryInvalidInput
	}

	return CategoryInternal
}

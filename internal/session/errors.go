// ABOUTME: Typed errors for authentication and upstream transport failures.
// ABOUTME: Adapters map these onto JSON-RPC error objects and HTTP status codes.

package session

import (
	"errors"
	"fmt"
)

// AuthReason distinguishes the two authentication failure modes.
type AuthReason string

const (
	// ReasonNotAuthenticated means no login has been performed this session.
	ReasonNotAuthenticated AuthReason = "not_authenticated"
	// ReasonInvalidCredentials means the upstream rejected the credential
	// exchange. The message stays generic: upstream does not reveal which of
	// username/password was wrong, and neither do we.
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
)

// AuthError is returned for both missing and rejected authentication.
type AuthError struct {
	Reason AuthReason
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "authentication failed: invalid credentials"
	default:
		return "not authenticated: call login first"
	}
}

// ErrSessionExpired is returned when a response carries the login-redirect
// signature while we believed the session was live. It is reported, never
// silently repaired: re-login needs credentials this process does not retain.
var ErrSessionExpired = errors.New("session expired: upstream redirected to login")

// NetworkKind categorizes transport-level failures.
type NetworkKind string

const (
	NetworkTimeout           NetworkKind = "timeout"
	NetworkConnectionRefused NetworkKind = "connection_refused"
	NetworkDNS               NetworkKind = "dns"
	NetworkOther             NetworkKind = "network"
)

// NetworkError wraps a transport failure with its category.
type NetworkError struct {
	Kind NetworkKind
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx status from the upstream application that
// is not a session-expiry signal.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

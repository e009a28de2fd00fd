// ABOUTME: REST/HTTP mirror of the MCP tool surface.
// ABOUTME: Plain net/http handlers with CORS, JSON errors, and typed-error status mapping.

// Package api exposes the navigation client over plain HTTP for clients that
// do not speak MCP. Routes mirror the stdio tool surface one to one; typed
// core errors map onto HTTP status codes.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/trifork/tidsreg-gateway/internal/session"
	"github.com/trifork/tidsreg-gateway/internal/tidsreg"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (64KB).
// The only body this API accepts is the login credential pair.
const MaxRequestBodySize = 64 << 10

// Server holds the REST handlers around the shared navigation client.
type Server struct {
	client         *tidsreg.Client
	logger         *slog.Logger
	allowedOrigins []string
}

// New creates the REST server. An empty origins list allows any origin,
// matching the wide-open CORS posture of the surface this mirrors.
func New(client *tidsreg.Client, logger *slog.Logger, allowedOrigins []string) *Server {
	return &Server{
		client:         client,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/customers", s.handleCustomers)
	mux.HandleFunc("/api/projects", s.handleProjects)
	mux.HandleFunc("/api/phases", s.handlePhases)
	mux.HandleFunc("/api/activities", s.handleActivities)
	mux.HandleFunc("/api/kinds", s.handleKinds)
	mux.HandleFunc("/api/hours", s.handleHours)
	mux.HandleFunc("/api/tools", s.handleTools)
	return s.corsMiddleware(mux)
}

// corsMiddleware applies the configured origin policy and answers preflight
// requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// sendJSON writes a JSON response body with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// sendJSONError writes a JSON error response body.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message, category string) {
	s.sendJSON(w, status, map[string]string{
		"error":    message,
		"category": category,
	})
}

// sendCoreError maps a typed core error onto its HTTP status. HTTP has no
// status 0, so network failures surface as 502 with the network category in
// the body.
func (s *Server) sendCoreError(w http.ResponseWriter, requestID string, err error) {
	category := tidsreg.Categorize(err)

	var status int
	switch category {
	case tidsreg.CategoryAuth, tidsreg.CategorySessionExpired:
		status = http.StatusUnauthorized
	case tidsreg.CategoryNotFound:
		status = http.StatusNotFound
	case tidsreg.CategoryInvalidInput:
		status = http.StatusBadRequest
	case tidsreg.CategoryNetwork:
		status = http.StatusBadGateway
	case tidsreg.CategoryUpstream:
		// Pass a server-side upstream status through; anything below the
		// 5xx range collapses to 500.
		status = http.StatusInternalServerError
		var ue *session.UpstreamError
		if errors.As(err, &ue) && ue.StatusCode >= 500 {
			status = ue.StatusCode
		}
	default:
		status = http.StatusInternalServerError
	}

	s.logger.Warn("request failed",
		"request_id", requestID,
		"category", category,
		"status", status,
	)
	s.sendJSONError(w, status, err.Error(), category)
}

// requestID tags a request for the log trail.
func requestID() string {
	return uuid.New().String()
}

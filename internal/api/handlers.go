// ABOUTME: HTTP handlers mirroring the MCP tool surface route by route.
// ABOUTME: Query parameters are validated here; domain errors come typed from the client.

package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/trifork/tidsreg-gateway/internal/tidsreg"
)

// LoginRequest is the JSON request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// ToolDescription documents one REST endpoint in GET /api/tools.
type ToolDescription struct {
	Name        string            `json:"name"`
	Method      string            `json:"method"`
	Endpoint    string            `json:"endpoint"`
	Description string            `json:"description"`
	Params      map[string]string `json:"params,omitempty"`
	Body        map[string]string `json:"body,omitempty"`
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Authenticated: s.client.Authenticated(),
	})
}

// handleLogin handles POST /api/login requests. Credentials live only in the
// request body; they are never logged or echoed in error responses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "reading request body", tidsreg.CategoryInvalidInput)
		return
	}

	var req LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body", tidsreg.CategoryInvalidInput)
		return
	}
	if req.Username == "" || req.Password == "" {
		s.sendJSONError(w, http.StatusBadRequest, "missing username or password", tidsreg.CategoryInvalidInput)
		return
	}

	id := requestID()
	if err := s.client.Login(r.Context(), req.Username, req.Password); err != nil {
		s.sendCoreError(w, id, err)
		return
	}

	s.logger.Info("login succeeded", "request_id", id)
	s.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleLogout handles POST /api/logout requests.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.client.Logout()
	s.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleCustomers handles GET /api/customers requests.
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	customers, err := s.client.ListCustomers(r.Context())
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// handleProjects handles GET /api/projects?customerId=X&date=YYYY-MM-DD.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	customerID := r.URL.Query().Get("customerId")
	date := r.URL.Query().Get("date")
	if customerID == "" || date == "" {
		s.sendJSONError(w, http.StatusBadRequest, "missing customerId or date parameter", tidsreg.CategoryInvalidInput)
		return
	}

	projects, err := s.client.ListProjects(r.Context(), customerID, date)
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// handlePhases handles GET /api/phases?projectId=X&date=YYYY-MM-DD.
func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	projectID := r.URL.Query().Get("projectId")
	date := r.URL.Query().Get("date")
	if projectID == "" || date == "" {
		s.sendJSONError(w, http.StatusBadRequest, "missing projectId or date parameter", tidsreg.CategoryInvalidInput)
		return
	}

	phases, err := s.client.ListPhases(r.Context(), projectID, date)
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"phases": phases})
}

// handleActivities handles GET /api/activities?phaseId=X&date=YYYY-MM-DD.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	phaseID := r.URL.Query().Get("phaseId")
	date := r.URL.Query().Get("date")
	if phaseID == "" || date == "" {
		s.sendJSONError(w, http.StatusBadRequest, "missing phaseId or date parameter", tidsreg.CategoryInvalidInput)
		return
	}

	activities, err := s.client.ListActivities(r.Context(), phaseID, date)
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

// handleKinds handles GET /api/kinds?projectName=X&activityName=Y. The name
// pair is the upstream lookup key for this view.
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	projectName := r.URL.Query().Get("projectName")
	activityName := r.URL.Query().Get("activityName")
	if projectName == "" || activityName == "" {
		s.sendJSONError(w, http.StatusBadRequest, "missing projectName or activityName parameter", tidsreg.CategoryInvalidInput)
		return
	}

	kinds, err := s.client.ListKinds(r.Context(), projectName, activityName)
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"kinds": kinds})
}

// handleHours handles GET /api/hours?date=YYYY-MM-DD. An omitted date uses
// the navigation cursor.
func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	report, err := s.client.RegisteredHours(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.sendCoreError(w, requestID(), err)
		return
	}
	s.sendJSON(w, http.StatusOK, report)
}

// handleTools handles GET /api/tools: a self-describing endpoint catalogue.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tools := []ToolDescription{
		{
			Name:        "login",
			Method:      http.MethodPost,
			Endpoint:    "/api/login",
			Description: "Authenticate with Tidsreg",
			Body:        map[string]string{"username": "string", "password": "string"},
		},
		{
			Name:        "logout",
			Method:      http.MethodPost,
			Endpoint:    "/api/logout",
			Description: "Drop the current session",
		},
		{
			Name:        "list_customers",
			Method:      http.MethodGet,
			Endpoint:    "/api/customers",
			Description: "List all available customers",
		},
		{
			Name:        "list_projects",
			Method:      http.MethodGet,
			Endpoint:    "/api/projects",
			Description: "List projects for a customer",
			Params:      map[string]string{"customerId": "string", "date": "YYYY-MM-DD"},
		},
		{
			Name:        "list_phases",
			Method:      http.MethodGet,
			Endpoint:    "/api/phases",
			Description: "List phases for a project",
			Params:      map[string]string{"projectId": "string", "date": "YYYY-MM-DD"},
		},
		{
			Name:        "list_activities",
			Method:      http.MethodGet,
			Endpoint:    "/api/activities",
			Description: "List activities for a phase",
			Params:      map[string]string{"phaseId": "string", "date": "YYYY-MM-DD"},
		},
		{
			Name:        "list_kinds",
			Method:      http.MethodGet,
			Endpoint:    "/api/kinds",
			Description: "List kinds for a project and activity",
			Params:      map[string]string{"projectName": "string", "activityName": "string"},
		},
		{
			Name:        "get_registered_hours",
			Method:      http.MethodGet,
			Endpoint:    "/api/hours",
			Description: "Registered hours for one day with total and warnings",
			Params:      map[string]string{"date": "YYYY-MM-DD (optional)"},
		},
	}

	s.sendJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

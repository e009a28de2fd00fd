// ABOUTME: Tool definitions and dispatch for the MCP surface.
// ABOUTME: Each tool wraps one navigation client operation; failures become isError results.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/trifork/tidsreg-gateway/internal/tidsreg"
)

// toolDefinitions returns the MCP tool catalogue.
func toolDefinitions() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "login",
			Description: "Authenticate with Tidsreg using username and password. Must be called before using other tools.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"username": {"type": "string", "description": "Tidsreg username"},
					"password": {"type": "string", "description": "Tidsreg password"}
				},
				"required": ["username", "password"]
			}`),
		},
		{
			Name:        "logout",
			Description: "Drop the current Tidsreg session.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "list_customers",
			Description: "Retrieve the list of all available customers from Tidsreg",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "list_projects",
			Description: "Retrieve the list of projects for a specific customer",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"customerId": {"type": "string", "description": "The customer ID"},
					"date": {"type": "string", "description": "Date in format YYYY-MM-DD"}
				},
				"required": ["customerId", "date"]
			}`),
		},
		{
			Name:        "list_phases",
			Description: "Retrieve the list of phases for a specific project",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"projectId": {"type": "string", "description": "The project ID"},
					"date": {"type": "string", "description": "Date in format YYYY-MM-DD"}
				},
				"required": ["projectId", "date"]
			}`),
		},
		{
			Name:        "list_activities",
			Description: "Retrieve the list of activities for a specific phase",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"phaseId": {"type": "string", "description": "The phase ID"},
					"date": {"type": "string", "description": "Date in format YYYY-MM-DD"}
				},
				"required": ["phaseId", "date"]
			}`),
		},
		{
			Name:        "list_kinds",
			Description: "Retrieve the list of kinds for a specific project and activity combination",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"projectName": {"type": "string", "description": "The project name"},
					"activityName": {"type": "string", "description": "The activity name"}
				},
				"required": ["projectName", "activityName"]
			}`),
		},
		{
			Name:        "get_registered_hours",
			Description: "Retrieve the registered hours for one day, with the day's total, advisory warnings, and the raw week registrations. Omit date to use the navigation cursor.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "Date in format YYYY-MM-DD (optional)"}
				}
			}`),
		},
		{
			Name:        "navigate_to_date",
			Description: "Point the navigation cursor at a date without fetching anything",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "Date in format YYYY-MM-DD"}
				},
				"required": ["date"]
			}`),
		},
		{
			Name:        "navigate_to_week",
			Description: "Move the navigation cursor by a relative week offset, or to the Monday of an explicit ISO week",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"offset": {"type": "integer", "description": "Relative week offset (e.g. -1 for last week)"},
					"year": {"type": "integer", "description": "ISO year (use together with week)"},
					"week": {"type": "integer", "description": "ISO week number 1-53 (use together with year)"}
				}
			}`),
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return s.errorResponse(req.ID, JSONRPCInvalidParams, "invalid params")
		}
	}

	if params.Name == "" {
		return s.errorResponse(req.ID, JSONRPCInvalidParams, "tool name is required")
	}

	// Correlation ID for the log trail; arguments are never logged because
	// login carries credentials.
	requestID := uuid.New().String()
	s.logger.Debug("tools/call", "tool_name", params.Name, "request_id", requestID)

	payload, err := s.dispatch(ctx, params.Name, params.Arguments)
	if err != nil {
		category := tidsreg.Categorize(err)
		s.logger.Warn("tool failed",
			"tool_name", params.Name,
			"request_id", requestID,
			"category", category,
		)
		return s.resultResponse(req.ID, toolError(err, category))
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return s.errorResponse(req.ID, JSONRPCInternalError, "encoding tool result")
	}

	s.logger.Debug("tools/call complete", "tool_name", params.Name, "request_id", requestID)
	return s.resultResponse(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: string(text)}},
	})
}

func toolError(err error, category string) CallToolResult {
	body, _ := json.Marshal(map[string]string{
		"error":    err.Error(),
		"category": category,
	})
	return CallToolResult{
		Content: []Content{{Type: "text", Text: string(body)}},
		IsError: true,
	}
}

// Argument shapes for the tools that take any.

type loginArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type projectsArgs struct {
	CustomerID string `json:"customerId"`
	Date       string `json:"date"`
}

type phasesArgs struct {
	ProjectID string `json:"projectId"`
	Date      string `json:"date"`
}

type activitiesArgs struct {
	PhaseID string `json:"phaseId"`
	Date    string `json:"date"`
}

type kindsArgs struct {
	ProjectName  string `json:"projectName"`
	ActivityName string `json:"activityName"`
}

type hoursArgs struct {
	Date string `json:"date"`
}

type dateArgs struct {
	Date string `json:"date"`
}

type weekArgs struct {
	Offset *int `json:"offset"`
	Year   int  `json:"year"`
	Week   int  `json:"week"`
}

// dispatch routes a tool call to the navigation client.
func (s *Server) dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "login":
		var a loginArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("missing required argument: username and password")
		}
		if err := s.client.Login(ctx, a.Username, a.Password); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true}, nil

	case "logout":
		s.client.Logout()
		return map[string]any{"ok": true}, nil

	case "list_customers":
		customers, err := s.client.ListCustomers(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"customers": customers}, nil

	case "list_projects":
		var a projectsArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.CustomerID == "" || a.Date == "" {
			return nil, fmt.Errorf("missing required argument: customerId and date")
		}
		projects, err := s.client.ListProjects(ctx, a.CustomerID, a.Date)
		if err != nil {
			return nil, err
		}
		return map[string]any{"projects": projects}, nil

	case "list_phases":
		var a phasesArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.ProjectID == "" || a.Date == "" {
			return nil, fmt.Errorf("missing required argument: projectId and date")
		}
		phases, err := s.client.ListPhases(ctx, a.ProjectID, a.Date)
		if err != nil {
			return nil, err
		}
		return map[string]any{"phases": phases}, nil

	case "list_activities":
		var a activitiesArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.PhaseID == "" || a.Date == "" {
			return nil, fmt.Errorf("missing required argument: phaseId and date")
		}
		activities, err := s.client.ListActivities(ctx, a.PhaseID, a.Date)
		if err != nil {
			return nil, err
		}
		return map[string]any{"activities": activities}, nil

	case "list_kinds":
		var a kindsArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.ProjectName == "" || a.ActivityName == "" {
			return nil, fmt.Errorf("missing required argument: projectName and activityName")
		}
		kinds, err := s.client.ListKinds(ctx, a.ProjectName, a.ActivityName)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kinds": kinds}, nil

	case "get_registered_hours":
		var a hoursArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return s.client.RegisteredHours(ctx, a.Date)

	case "navigate_to_date":
		var a dateArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Date == "" {
			return nil, fmt.Errorf("missing required argument: date")
		}
		if err := s.client.NavigateToDate(a.Date); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "current_date": s.client.CurrentDate()}, nil

	case "navigate_to_week":
		var a weekArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		switch {
		case a.Offset != nil:
			s.client.NavigateWeeks(*a.Offset)
		case a.Year != 0 && a.Week != 0:
			if err := s.client.NavigateToWeek(a.Year, a.Week); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("missing required argument: offset, or year and week")
		}
		return map[string]any{"ok": true, "current_date": s.client.CurrentDate()}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func decodeArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

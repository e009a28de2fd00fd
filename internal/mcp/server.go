// ABOUTME: JSON-RPC 2.0 stdio server implementing the MCP surface.
// ABOUTME: One frame per line; notifications get no response; stdout carries frames only.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/trifork/tidsreg-gateway/internal/tidsreg"
)

// protocolVersion is the MCP revision this server implements.
const protocolVersion = "2024-11-05"

// serverVersion is reported in the initialize handshake.
const serverVersion = "1.0.0"

// maxFrameSize bounds a single JSON-RPC line (1MB).
const maxFrameSize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// ToolInfo represents an MCP tool definition.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents content in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Server reads JSON-RPC frames from in and writes responses to out. All tool
// calls go through the shared navigation client; the single-goroutine read
// loop serializes them.
type Server struct {
	client *tidsreg.Client
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

// New creates a stdio MCP server around the shared navigation client.
func New(client *tidsreg.Client, logger *slog.Logger, in io.Reader, out io.Writer) *Server {
	return &Server{
		client: client,
		logger: logger,
		in:     in,
		out:    out,
	}
}

// Run processes frames until EOF or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP stdio server starting", "protocol_version", protocolVersion)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	writer := bufio.NewWriter(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("invalid JSON frame", "error", err)
			if werr := writeResponse(writer, &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &JSONRPCError{Code: JSONRPCParseError, Message: "parse error"},
			}); werr != nil {
				return werr
			}
			continue
		}

		resp := s.handle(ctx, &req)
		if resp == nil {
			// Notification: no response.
			continue
		}
		if err := writeResponse(writer, resp); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	s.logger.Info("MCP stdio server shutting down")
	return nil
}

func writeResponse(w *bufio.Writer, resp *JSONRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.Flush()
}

// handle routes one request. Returns nil for notifications.
func (s *Server) handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"
	if isNotification {
		s.logger.Debug("notification", "method", req.Method)
		return nil
	}

	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
	}

	s.logger.Debug("MCP request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return s.errorResponse(req.ID, JSONRPCMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	s.logger.Info("MCP client initializing")

	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "tidsreg-gateway",
			"version": serverVersion,
		},
	}
	return s.resultResponse(req.ID, result)
}

func (s *Server) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	tools := toolDefinitions()
	s.logger.Debug("tools/list", "count", len(tools))
	return s.resultResponse(req.ID, ListToolsResult{Tools: tools})
}

func (s *Server) resultResponse(id json.RawMessage, result any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func (s *Server) errorResponse(id json.RawMessage, code int, message string) *JSONRPCResponse {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
}

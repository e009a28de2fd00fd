// Package mcp implements the Model Context Protocol server over stdio.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0, one message per line, reading stdin and
// writing stdout. Logging goes to stderr; stdout is reserved for frames.
// Supported methods:
//
//   - initialize - protocol handshake and server info
//   - tools/list - tool discovery with JSON Schema input definitions
//   - tools/call - tool execution
//
// Notifications (requests without an id) are accepted and produce no
// response. Invalid JSON produces a -32700 error response with a null id.
//
// # Tools
//
// Each tool wraps one navigation client operation: login, logout, the five
// hierarchy listings, the timesheet query, and the two cursor updates. Tool
// failures are returned as isError results carrying the typed error's
// category; only transport-level problems use JSON-RPC error objects.
//
// # Integration
//
// Add to an MCP client configuration:
//
//	{
//	  "mcpServers": {
//	    "tidsreg": {
//	      "command": "tidsreg-gateway",
//	      "args": ["mcp"]
//	    }
//	  }
//	}
package mcp

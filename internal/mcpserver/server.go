// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mcpserver exposes the table_schema and select_query tools to MCP
// clients over stdio, so an external agent can query the configured datastore
// with the same validation and formatting the built-in agents get.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pterm/pterm"

	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/tools"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "dataorch"

// New registers every tool of set on a new MCP server.
func New(set *tools.Set, version string, logger *pterm.Logger) (*server.MCPServer, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range set.Tools() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, err
		}
		tool := mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema)
		tool.Annotations.ReadOnlyHint = mcp.ToBoolPtr(true)
		tool.Annotations.DestructiveHint = mcp.ToBoolPtr(false)
		s.AddTool(tool, handler(t, logger))
	}
	return s, nil
}

// handler adapts a tool to an MCP handler. Call failures are reported as
// error results so the client sees them as tool output.
func handler(t tools.Tool, logger *pterm.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
		}

		logger.Debug("MCP tool call", logger.Args("tool", t.Name()))
		out, err := t.Call(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(logging.Mask(err.Error())), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// Serve runs the server on the given streams until ctx is done or in is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

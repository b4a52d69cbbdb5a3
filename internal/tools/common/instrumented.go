package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/manymail/manymail/internal/instrumentation"
	"github.com/manymail/manymail/internal/logging"
	"github.com/manymail/manymail/internal/server"
)

// ToolHandler is the handler signature expected by the MCP server.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with invocation metrics and
// debug logging. A result with IsError set counts as an error outcome even
// though the handler returned nil.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := handler(ctx, request)
		duration := time.Since(start)

		outcome := instrumentation.ResultSuccess
		if err != nil || (result != nil && result.IsError) {
			outcome = instrumentation.ResultError
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, outcome, duration)
		sc.Logger().Debug("tool invocation",
			logging.Tool(toolName),
			logging.Status(outcome),
			"duration_ms", duration.Milliseconds(),
		)

		return result, err
	}
}

package simplepg

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the name of the single tool this server exposes.
const ToolName = "execute_query"

// RegisterMCPTools registers execute_query as an MCP tool on the given MCP server.
// Both transports answer calls to any other tool name with a JSON-RPC
// method-not-found error (see UnknownToolResponse).
func RegisterMCPTools(mcpServer *server.MCPServer, p *SimplePg) {
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Execute SQL queries on PostgreSQL database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SQL query to execute"),
		),
		mcp.WithBoolean("readOnly",
			mcp.Description("If true, only allows read-only queries (SELECT, EXPLAIN, etc.)"),
			mcp.DefaultBool(false),
		),
	)

	mcpServer.AddTool(tool, p.loggedToolHandler(ToolName, p.executeQueryHandler))
}

// executeQueryHandler always answers with a well-formed tool result. Execution
// failures become error-flagged text, never a protocol fault.
func (p *SimplePg) executeQueryHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("Error: query parameter is required"), nil
	}
	readOnly := req.GetBool("readOnly", false)

	result, err := p.Execute(ctx, QueryInput{Query: query, ReadOnly: readOnly})
	if err != nil {
		return mcp.NewToolResultError("Error: " + err.Error()), nil
	}
	return marshalResult(result), nil
}

// marshalResult renders the success envelope as two-space indented JSON.
func marshalResult(result interface{}) *mcp.CallToolResult {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("Error: failed to marshal query result: " + err.Error())
	}
	return mcp.NewToolResultText(string(jsonBytes))
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (p *SimplePg) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.NewString()
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		p.logger.Info().
			Str("tool", tool).
			Str("call_id", callID).
			Int("request_bytes", reqLen).
			Int("response_bytes", resultLength(result)).
			Bool("is_error", result != nil && result.IsError).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}

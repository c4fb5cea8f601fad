package rpc

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the dispatcher's tools through a standard MCP
// server. Tool calls are validated and executed the same way as on the
// line protocol; failures become tool error results.
func (d *Dispatcher) NewMCPServer(name, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false))
	for _, tool := range d.catalog.Tools() {
		s.AddTool(tool, d.mcpHandler())
	}
	return s
}

func (d *Dispatcher) mcpHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := json.Marshal(map[string]any{
			"name":      req.Params.Name,
			"arguments": req.GetArguments(),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		call, rerr := decodeCallTool(params)
		if rerr != nil {
			return mcp.NewToolResultError(rerr.Message), nil
		}
		text, err := d.Execute(call.(CallTool))
		if err != nil {
			return mcp.NewToolResultError(internalError(err).Message), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

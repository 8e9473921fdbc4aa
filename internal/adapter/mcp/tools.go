package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sqlbridge/employee-mcp/internal/core/port"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers every tool the provider exposes. Handlers always
// return text results, never protocol errors: validation rejections,
// execution faults, and unknown-tool responses are all envelope-shaped JSON
// inside a successful tool response, so nothing throws past the boundary.
func RegisterTools(s *server.MCPServer, provider port.ToolProvider) {
	for _, spec := range provider.ListTools() {
		opts := []mcp.ToolOption{
			mcp.WithDescription(spec.Description),
		}
		for _, p := range spec.Params {
			paramOpts := []mcp.PropertyOption{
				mcp.Description(p.Description),
			}
			if p.Required {
				paramOpts = append(paramOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithString(p.Name, paramOpts...))
		}

		s.AddTool(mcp.NewTool(spec.Name, opts...), callHandler(provider, spec.Name))
	}
}

func callHandler(provider port.ToolProvider, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload := provider.CallTool(ctx, name, request.GetArguments())

		data, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

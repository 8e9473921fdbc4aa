package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlbridge/employee-mcp/internal/core/port"
	"go.opentelemetry.io/otel/trace"
)

const serverName = "employee-data-server"

// NewServer creates an MCPServer with the provider's tools and logging hooks.
func NewServer(version string, provider port.ToolProvider, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, provider)

	return s
}

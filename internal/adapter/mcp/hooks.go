package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlbridge/employee-mcp/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// callState holds per-request timing and span data, keyed by request id.
type callState struct {
	start time.Time
	span  trace.Span
}

// finish closes out one tool call: structured log line, tool-duration
// metric, span status.
func (c *callState) finish(ctx context.Context, logger *slog.Logger, inst port.Instrumentation, tool string, callErr error) {
	duration := time.Since(c.start)

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("rpc.method", "tools/call"),
		slog.String("mcp.tool", tool),
		slog.Duration("duration", duration),
		slog.Bool("error", callErr != nil),
	}
	if callErr != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error.message", callErr.Error()))
	}
	logger.LogAttrs(ctx, level, "tool call", attrs...)

	if inst != nil {
		inst.RecordToolDuration(ctx, float64(duration.Milliseconds()))
	}

	if c.span != nil {
		if callErr != nil {
			c.span.RecordError(callErr)
			c.span.SetStatus(codes.Error, callErr.Error())
		}
		c.span.End()
	}
}

// ToolCallHooks creates MCP hooks that log every tool call and optionally
// record OTel spans and metrics around it.
func ToolCallHooks(logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.Hooks {
	hooks := &server.Hooks{}
	var calls sync.Map // id -> *callState

	take := func(id any) *callState {
		if v, ok := calls.LoadAndDelete(id); ok {
			return v.(*callState)
		}
		return &callState{start: time.Now()}
	}

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		state := &callState{start: time.Now()}
		if tracer != nil {
			_, span := tracer.Start(ctx, "mcp.tool.call",
				trace.WithAttributes(attribute.String("mcp.tool", req.Params.Name)),
			)
			state.span = span
		}
		calls.Store(id, state)
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, result any) {
		// A result with IsError set still counts as a failed call for
		// logging, even though the dispatcher shapes most failures as
		// plain-text envelopes instead.
		var callErr error
		if r, ok := result.(*mcp.CallToolResult); ok && r.IsError {
			callErr = fmt.Errorf("tool %s returned error", req.Params.Name)
		}
		take(id).finish(ctx, logger, inst, req.Params.Name, callErr)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		req, ok := message.(*mcp.CallToolRequest)
		if !ok {
			return
		}
		take(id).finish(ctx, logger, inst, req.Params.Name, err)
	})

	return hooks
}

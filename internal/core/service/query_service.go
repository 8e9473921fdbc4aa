package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlbridge/employee-mcp/internal/core/domain"
	"github.com/sqlbridge/employee-mcp/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}

// WithToolName returns a context carrying the tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

// QueryService orchestrates SQL validation (domain) and execution
// (infrastructure), converting every outcome into a result envelope. It
// never returns an error: validation rejections and execution faults are
// both surfaced inside the envelope, per the never-throw boundary contract.
type QueryService struct {
	validator port.QueryValidator
	executor  port.QueryExecutor
	auditor   port.QueryAuditor
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewQueryService(validator port.QueryValidator, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		validator: validator,
		executor:  executor,
		auditor:   auditor,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// Run trims the statement, validates it, and, if accepted, executes it once.
// The returned envelope's ExecutedQuery always equals the trimmed input.
func (s *QueryService) Run(ctx context.Context, sql string) domain.Envelope {
	sql = strings.TrimSpace(sql)

	ctx, span := s.tracer.Start(ctx, "QueryService.Run",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", "query"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	if err := s.validator.Validate(sql); err != nil {
		// Caller-input fault: warn, never a server error.
		s.logger.WarnContext(ctx, "query validation rejected",
			slog.String("db.statement", sql),
			slog.String("reason", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		s.auditor.Record(ctx, port.AuditEntry{
			Tool:     toolNameFromCtx(ctx),
			SQL:      sql,
			Rejected: true,
			Err:      err,
		})
		return domain.Failed(err.Error(), sql)
	}

	start := time.Now()
	rows, err := s.executor.Execute(ctx, sql)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordQueryDuration(ctx, float64(durationMS))

	s.auditor.Record(ctx, port.AuditEntry{
		Tool:       toolNameFromCtx(ctx),
		SQL:        sql,
		RowCount:   len(rows),
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil {
		// Execution fault: the driver's message text is the envelope error.
		s.logger.ErrorContext(ctx, "query execution failed",
			slog.String("db.statement", sql),
			slog.String("error.message", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return domain.Failed(err.Error(), sql)
	}

	s.inst.IncrementQueryCount(ctx)
	span.SetAttributes(attribute.Int("db.response.rows", len(rows)))

	return domain.Succeeded(rows, sql)
}

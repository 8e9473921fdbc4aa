package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sqlbridge/employee-mcp/internal/adapter/postgres"
	"github.com/sqlbridge/employee-mcp/internal/audit"
	"github.com/sqlbridge/employee-mcp/internal/core/domain"
	"github.com/sqlbridge/employee-mcp/internal/core/service"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const e2eSchema = `
	CREATE TABLE public.employee (
		id         SERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL,
		salary     NUMERIC(12,2) NOT NULL
	);

	INSERT INTO public.employee (first_name, last_name, email, department, salary)
	SELECT
		'First' || i,
		'Last' || i,
		'user' || i || '@example.com',
		CASE (i % 3) WHEN 0 THEN 'Engineering' WHEN 1 THEN 'Sales' ELSE 'Marketing' END,
		50000 + (i * 1000)
	FROM generate_series(1, 30) AS i;
`

// setupE2E starts a Postgres testcontainer, seeds the employee table, and
// returns a fully wired MCP server backed by the real executor.
func setupE2E(t *testing.T) *server.MCPServer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()
	_, err = conn.Exec(ctx, e2eSchema)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	executor := postgres.NewExecutor(connStr)
	querySvc := service.NewQueryService(domain.NewKeywordValidator(), executor, audit.NoopAuditor{}, logger, nil, nil)
	dispatcher := service.NewDispatcher(querySvc)

	return NewServer("test", dispatcher, logger, nil, nil)
}

func TestE2E_ShowAllEngineers(t *testing.T) {
	s := setupE2E(t)

	result := callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT * FROM public.employee WHERE department = 'Engineering' LIMIT 100",
	})
	require.False(t, result.IsError)

	env := envelopeOf(t, result)
	require.Equal(t, true, env["success"])

	rows, ok := env["data"].([]any)
	require.True(t, ok)
	assert.LessOrEqual(t, len(rows), 100)
	assert.Equal(t, float64(len(rows)), env["row_count"])
	for _, r := range rows {
		row, ok := r.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Engineering", row["department"])
	}
}

func TestE2E_SalaryComesBackAsDecimalString(t *testing.T) {
	s := setupE2E(t)

	result := callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT salary FROM public.employee WHERE id = 1",
	})
	env := envelopeOf(t, result)
	require.Equal(t, true, env["success"])

	rows := env["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "51000.00", rows[0].(map[string]any)["salary"])
}

func TestE2E_ZeroRowEnvelope(t *testing.T) {
	s := setupE2E(t)

	result := callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT * FROM public.employee WHERE department = 'Legal'",
	})
	env := envelopeOf(t, result)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, []any{}, env["data"])
	assert.Equal(t, float64(0), env["row_count"])
}

func TestE2E_IdempotentReads(t *testing.T) {
	s := setupE2E(t)

	sql := "SELECT id, first_name, salary FROM public.employee ORDER BY id LIMIT 10"
	first := envelopeOf(t, callTool(t, s, "query_employee_data", map[string]any{"sql": sql}))
	second := envelopeOf(t, callTool(t, s, "query_employee_data", map[string]any{"sql": sql}))

	assert.Equal(t, first["data"], second["data"])
	assert.Equal(t, first["row_count"], second["row_count"])
}

func TestE2E_SQLErrorBecomesFailureEnvelope(t *testing.T) {
	s := setupE2E(t)

	result := callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT no_such_column FROM public.employee",
	})
	require.False(t, result.IsError)

	env := envelopeOf(t, result)
	assert.Equal(t, false, env["success"])
	errMsg, ok := env["error"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, errMsg)
	assert.NotContains(t, env, "data")
}

func TestE2E_RejectionNeverReachesDatabase(t *testing.T) {
	s := setupE2E(t)

	result := callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT * FROM public.employee; DROP TABLE public.employee;",
	})
	env := envelopeOf(t, result)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Query contains forbidden operations", env["error"])

	// The table must still be intact.
	check := envelopeOf(t, callTool(t, s, "query_employee_data", map[string]any{
		"sql": "SELECT COUNT(*) AS n FROM public.employee",
	}))
	require.Equal(t, true, check["success"])
	rows := check["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(30), rows[0].(map[string]any)["n"])
}

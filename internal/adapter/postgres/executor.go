package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Executor runs statements against PostgreSQL. Each call opens one fresh
// connection, runs the statement exactly as handed to it (no rewriting, no
// transaction wrapping, implicit auto-commit), fetches the full result set,
// and closes the connection on every path. There is no retry and no pool;
// concurrent calls are independent and the database server is the point of
// contention.
type Executor struct {
	connString string
}

// NewExecutor takes the connection string explicitly so tests can inject
// fake targets; nothing reads ambient process state at query time.
func NewExecutor(connString string) *Executor {
	return &Executor{connString: connString}
}

func (e *Executor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	conn, err := pgx.Connect(ctx, e.connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return rowsToMaps(rows)
}

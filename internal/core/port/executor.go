package port

import "context"

// QueryExecutor runs an accepted SQL statement and returns the full result
// set as maps keyed by the database's column names.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) ([]map[string]any, error)
}

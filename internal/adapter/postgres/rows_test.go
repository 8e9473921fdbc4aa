package postgres

import (
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue_Primitives(t *testing.T) {
	t.Parallel()

	assert.Nil(t, normalizeValue(nil))
	assert.Equal(t, true, normalizeValue(true))
	assert.Equal(t, "x", normalizeValue("x"))
	assert.Equal(t, int64(42), normalizeValue(int64(42)))
	assert.Equal(t, 3.5, normalizeValue(3.5))
}

func TestNormalizeValue_NonFiniteFloats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NaN", normalizeValue(math.NaN()))
	assert.Equal(t, "+Inf", normalizeValue(math.Inf(1)))
	assert.Equal(t, "-Inf", normalizeValue(math.Inf(-1)))
}

func TestNormalizeValue_Bytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "raw", normalizeValue([]byte("raw")))
}

func TestNormalizeValue_Time(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T12:30:00Z", normalizeValue(ts))
}

func TestNormalizeValue_Numeric(t *testing.T) {
	t.Parallel()

	// pgx returns NUMERIC columns as pgtype.Numeric; the driver.Valuer
	// unwrap must render them as decimal strings.
	var n pgtype.Numeric
	require.NoError(t, n.Scan("98765.43"))

	got := normalizeValue(n)
	s, ok := got.(string)
	require.True(t, ok, "numeric should normalize to a string, got %T", got)
	assert.Equal(t, "98765.43", s)
}

func TestNormalizeValue_NullNumeric(t *testing.T) {
	t.Parallel()
	var n pgtype.Numeric // Valid=false
	assert.Nil(t, normalizeValue(n))
}

func TestNormalizeValue_Nested(t *testing.T) {
	t.Parallel()

	got := normalizeValue([]any{[]byte("a"), math.NaN()})
	assert.Equal(t, []any{"a", "NaN"}, got)

	gotMap := normalizeValue(map[string]any{"k": []byte("v")})
	assert.Equal(t, map[string]any{"k": "v"}, gotMap)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsSelect(t *testing.T) {
	t.Parallel()
	v := NewKeywordValidator()

	queries := []string{
		"SELECT * FROM public.employee LIMIT 100",
		"select first_name, last_name from public.employee",
		"  SELECT 1  ",
		"SeLeCt department, AVG(salary) FROM public.employee GROUP BY department",
		"SELECT * FROM public.employee WHERE department = 'Engineering' LIMIT 100",
	}
	for _, q := range queries {
		assert.NoError(t, v.Validate(q), "query should be accepted: %s", q)
	}
}

func TestValidate_RejectsNonSelect(t *testing.T) {
	t.Parallel()
	v := NewKeywordValidator()

	queries := []string{
		"DROP TABLE employee",
		"INSERT INTO employee (id) VALUES (1)",
		"UPDATE employee SET salary = 0",
		"DELETE FROM employee",
		"TRUNCATE employee",
		"WITH x AS (SELECT 1) SELECT * FROM x", // leading keyword is WITH, not SELECT
		"EXPLAIN SELECT 1",
		"",
		"   ",
	}
	for _, q := range queries {
		err := v.Validate(q)
		require.Error(t, err, "query should be rejected: %s", q)
		assert.ErrorIs(t, err, ErrNotSelect, "query: %s", q)
		assert.EqualError(t, err, "Only SELECT queries are allowed")
	}
}

func TestValidate_RejectsForbiddenSubstrings(t *testing.T) {
	t.Parallel()
	v := NewKeywordValidator()

	queries := []string{
		"SELECT * FROM employee; DROP TABLE employee;",
		"SELECT * FROM employee WHERE name = 'x'; INSERT INTO employee VALUES (1)",
		"SELECT 1; UPDATE employee SET salary = 0",
		"SELECT 1; delete from employee",
		"SELECT 1; CREATE TABLE t (id int)",
		"SELECT 1; ALTER TABLE employee ADD COLUMN x int",
		"SELECT 1; TRUNCATE employee",
	}
	for _, q := range queries {
		err := v.Validate(q)
		require.Error(t, err, "query should be rejected: %s", q)
		assert.ErrorIs(t, err, ErrForbidden, "query: %s", q)
		assert.EqualError(t, err, "Query contains forbidden operations")
	}
}

// The substring scan has documented false positives: a SELECT whose string
// literal or identifier merely contains a forbidden keyword is rejected too.
func TestValidate_KnownFalsePositives(t *testing.T) {
	t.Parallel()
	v := NewKeywordValidator()

	assert.ErrorIs(t, v.Validate("SELECT 'DROP' AS x"), ErrForbidden,
		"keyword inside a string literal is a documented false positive")
	assert.ErrorIs(t, v.Validate("SELECT created_at FROM public.employee"), ErrForbidden,
		"CREATE inside the created_at identifier is a documented false positive")

	// UPDATE is not a substring of Updike, so this one passes.
	assert.NoError(t, v.Validate("SELECT * FROM public.employee WHERE last_name = 'Updike'"))
}

// Rule 1 is evaluated before Rule 2: a DROP statement fails the SELECT
// prefix check, not the forbidden-substring scan.
func TestValidate_RuleOrder(t *testing.T) {
	t.Parallel()
	v := NewKeywordValidator()

	err := v.Validate("DROP TABLE employee")
	assert.ErrorIs(t, err, ErrNotSelect)
}

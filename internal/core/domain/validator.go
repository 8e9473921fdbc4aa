package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotSelect and ErrForbidden carry the exact reason strings surfaced
	// to the calling agent in the failure envelope.
	ErrNotSelect = errors.New("Only SELECT queries are allowed")
	ErrForbidden = errors.New("Query contains forbidden operations")
)

// forbiddenKeywords are rejected as substrings anywhere in the statement,
// not just as leading keywords. A legitimate SELECT whose string literal or
// column name contains one of these is rejected too; that false positive is
// documented behavior, not a bug.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE",
}

// KeywordValidator accepts or rejects raw SQL text on surface-level textual
// rules: the statement must begin with SELECT and must not contain any
// write/DDL keyword as a substring. It does not parse SQL and is not a
// security boundary against an adversarial caller; the caller is assumed to
// be a cooperative language-model agent.
type KeywordValidator struct{}

func NewKeywordValidator() *KeywordValidator {
	return &KeywordValidator{}
}

// Validate returns nil when the statement is accepted, or one of the
// sentinel rejection errors. Leading/trailing whitespace is ignored.
func (v *KeywordValidator) Validate(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	if !strings.HasPrefix(upper, "SELECT") {
		return ErrNotSelect
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(upper, kw) {
			return ErrForbidden
		}
	}

	return nil
}

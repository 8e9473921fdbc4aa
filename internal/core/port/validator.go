package port

// QueryValidator decides whether raw SQL text may be executed.
type QueryValidator interface {
	Validate(sql string) error
}

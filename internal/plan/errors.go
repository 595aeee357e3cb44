package plan

import "errors"

var (
	// ErrEmptyQuery is returned when there is no query text to explain.
	ErrEmptyQuery = errors.New("plan: query is empty")

	// ErrNoDatabase is returned when SQL input is given without a connection target.
	ErrNoDatabase = errors.New("plan: SQL input requires a database connection")

	// ErrNoPlanRows is returned when EXPLAIN succeeded but produced no rows.
	ErrNoPlanRows = errors.New("plan: no plan rows returned")

	// ErrUnsupportedDialect is returned for dialects without a plan provider.
	ErrUnsupportedDialect = errors.New("plan: unsupported dialect")

	ErrExplainPrefix = errors.New("plan: input should not include EXPLAIN prefix - provide the raw query only")
)

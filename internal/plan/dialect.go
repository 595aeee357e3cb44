package plan

import (
	"fmt"
	"strings"
	"time"
)

const (
	MySQL    = "mysql"
	Postgres = "postgres"
)

// Target identifies the database a plan is requested from.
type Target struct {
	Dialect string
	DSN     string
	Timeout time.Duration
}

func (t Target) IsZero() bool {
	return t.DSN == ""
}

// NormalizeDialect maps driver and product aliases onto MySQL or Postgres.
// An empty dialect means MySQL.
func NormalizeDialect(d string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, d)
	}
}

// DialectFromDSN guesses the dialect from a URL-style DSN scheme. It returns
// "" when the DSN carries no recognizable scheme.
func DialectFromDSN(dsn string) string {
	scheme, _, ok := strings.Cut(strings.TrimSpace(dsn), "://")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return Postgres
	case "mysql", "mariadb":
		return MySQL
	}
	return ""
}

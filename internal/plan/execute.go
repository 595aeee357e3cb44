package plan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Queryer is the part of *sqlx.DB and *sqlx.Tx needed to run EXPLAIN.
type Queryer interface {
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

// Execute requests the execution plan of query from the target database.
// The query itself is never executed.
func Execute(ctx context.Context, target Target, query string) ([]PlanRow, error) {
	query = trimStatement(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if strings.HasPrefix(strings.ToUpper(query), "EXPLAIN") {
		return nil, ErrExplainPrefix
	}
	if target.IsZero() {
		return nil, ErrNoDatabase
	}

	dialect, err := NormalizeDialect(target.Dialect)
	if err != nil {
		return nil, err
	}

	if target.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, target.Timeout)
		defer cancel()
	}

	start := time.Now()

	var rows []PlanRow
	switch dialect {
	case MySQL:
		rows, err = explainMySQLDSN(ctx, target.DSN, query)
	case Postgres:
		rows, err = ExplainPostgres(ctx, target.DSN, query)
	}
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("dialect", dialect).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched execution plan")

	return rows, nil
}

func explainMySQLDSN(ctx context.Context, dsn string, query string) ([]PlanRow, error) {
	cfg, err := mysqlConfig(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return explainMySQLReadOnly(ctx, db, query)
}

// mysqlConfig parses dsn and turns off multi-statement support so that a
// trailing statement smuggled after the query is rejected by the server
// instead of executed.
func mysqlConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing MySQL DSN: %w", err)
	}
	cfg.MultiStatements = false
	return cfg, nil
}

// explainMySQLReadOnly runs EXPLAIN inside a read-only transaction that is
// always rolled back.
func explainMySQLReadOnly(ctx context.Context, db *sqlx.DB, query string) ([]PlanRow, error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return ExplainMySQL(ctx, tx, query)
}

// ExplainMySQL runs a tabular EXPLAIN and normalizes every returned row.
func ExplainMySQL(ctx context.Context, q Queryer, query string) ([]PlanRow, error) {
	rows, err := q.QueryxContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return nil, fmt.Errorf("executing EXPLAIN: %w", err)
	}
	defer rows.Close()

	var result []PlanRow
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scanning EXPLAIN row: %w", err)
		}
		result = append(result, NewPlanRow(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading EXPLAIN rows: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrNoPlanRows
	}
	return result, nil
}

// ExplainPostgres fetches the JSON plan inside a read-only transaction that
// is always rolled back.
func ExplainPostgres(ctx context.Context, connStr string, query string) ([]PlanRow, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var jsonStr string
	err = tx.QueryRow(ctx, "EXPLAIN (FORMAT JSON) "+query).Scan(&jsonStr)
	if err != nil {
		return nil, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	rows, err := parsePostgresJSON([]byte(jsonStr))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoPlanRows
	}
	return rows, nil
}

func trimStatement(query string) string {
	query = strings.TrimSpace(query)
	for strings.HasSuffix(query, ";") {
		query = strings.TrimSpace(strings.TrimSuffix(query, ";"))
	}
	return query
}

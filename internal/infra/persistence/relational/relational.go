// Package relational holds the SQL shared by the database publishers.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mmrrcingest/internal/entitymodel/sqlbundle"
	"mmrrcingest/internal/tabular"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	Name sqlbundle.Dialect
	// Placeholder renders the i-th (1-based) bind parameter.
	Placeholder func(i int) string
}

// Supported dialects.
var (
	SQLite   = Dialect{Name: sqlbundle.DialectSQLite, Placeholder: func(int) string { return "?" }}
	Postgres = Dialect{Name: sqlbundle.DialectPostgres, Placeholder: func(i int) string { return "$" + strconv.Itoa(i) }}
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ApplyDDL executes the dialect's embedded DDL bundle.
func ApplyDDL(ctx context.Context, exec Execer, d Dialect) error {
	return ApplyStatements(ctx, exec, sqlbundle.For(d.Name))
}

// ApplyStatements executes every statement of a DDL script in order.
func ApplyStatements(ctx context.Context, exec Execer, ddl string) error {
	for _, stmt := range sqlbundle.SplitStatements(ddl) {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// Replace swaps the contents of each table in a single transaction. Empty
// cells are written as NULL.
func Replace(ctx context.Context, db *sql.DB, d Dialect, tables ...*tabular.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, t := range tables {
		if t == nil || t.Name == "" {
			return errors.New("publish: table name required")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+QuoteIdent(t.Name)); err != nil {
			return fmt.Errorf("clear %s: %w", t.Name, err)
		}
		insert := InsertSQL(d, t.Name, t.Columns)
		for i, row := range t.Rows {
			if _, err := tx.ExecContext(ctx, insert, bindArgs(row, len(t.Columns))...); err != nil {
				return fmt.Errorf("insert %s row %d: %w", t.Name, i+1, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// InsertSQL builds a parameterised INSERT for the given columns.
func InsertSQL(d Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// QuoteIdent quotes an SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func bindArgs(row []string, width int) []any {
	args := make([]any, width)
	for i := range args {
		if i < len(row) && row[i] != "" {
			args[i] = row[i]
		}
	}
	return args
}

// Package sqlbundle exposes the embedded DDL bundles to the relational publishers.
package sqlbundle

import (
	"bufio"
	"strings"

	sqldocs "mmrrcingest/docs/schema/sql"
)

// Dialect names a DDL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLite returns the SQLite DDL for the normalized relations.
func SQLite() string {
	return sqldocs.SQLite
}

// Postgres returns the Postgres DDL for the normalized relations.
func Postgres() string {
	return sqldocs.Postgres
}

// For returns the bundle of the given dialect, or "" when unknown.
func For(d Dialect) string {
	switch d {
	case DialectSQLite:
		return SQLite()
	case DialectPostgres:
		return Postgres()
	}
	return ""
}

// SplitStatements splits a semicolon-terminated DDL script into executable statements.
// It drops blank lines and single-line comments that start with "--".
func SplitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		stmts = append(stmts, tail)
	}

	return stmts
}

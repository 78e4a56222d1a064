// Package postgres publishes the normalized catalog relations into Postgres,
// applying the embedded DDL on open.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"mmrrcingest/internal/infra/persistence/relational"
	"mmrrcingest/internal/tabular"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/mmrrc?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Publisher replaces the normalized tables in a Postgres database.
type Publisher struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens dsn (falls back to defaultDSN), checks connectivity and applies the DDL.
func New(ctx context.Context, dsn string) (*Publisher, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := relational.ApplyDDL(ctx, db, relational.Postgres); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Publisher{db: db}, nil
}

// Publish replaces the rows of every given table in one transaction.
func (p *Publisher) Publish(ctx context.Context, tables ...*tabular.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return relational.Replace(ctx, p.db, relational.Postgres, tables...)
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (p *Publisher) DB() *sql.DB { return p.db }

// Close releases the connection pool.
func (p *Publisher) Close() error { return p.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

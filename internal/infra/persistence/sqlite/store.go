// Package sqlite publishes the normalized catalog relations into a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"mmrrcingest/internal/infra/persistence/relational"
	"mmrrcingest/internal/tabular"
)

const defaultPath = "mmrrc.db"

// Publisher replaces the normalized tables in a SQLite database file.
type Publisher struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// New opens (creating if needed) the database at path and applies the DDL.
func New(ctx context.Context, path string) (*Publisher, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: SQLite allows a single writer
	db.SetMaxOpenConns(1)
	if err := relational.ApplyDDL(ctx, db, relational.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Publisher{db: db, path: path}, nil
}

// Publish replaces the rows of every given table in one transaction.
func (p *Publisher) Publish(ctx context.Context, tables ...*tabular.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return relational.Replace(ctx, p.db, relational.SQLite, tables...)
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (p *Publisher) DB() *sql.DB { return p.db }

// Path returns the configured database path.
func (p *Publisher) Path() string { return p.path }

// Close releases the database handle.
func (p *Publisher) Close() error { return p.db.Close() }

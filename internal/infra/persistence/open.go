// Package persistence opens the optional relational sink that receives the
// normalized catalog tables.
package persistence

import (
	"context"
	"fmt"

	"mmrrcingest/internal/infra/persistence/postgres"
	"mmrrcingest/internal/infra/persistence/sqlite"
	"mmrrcingest/internal/tabular"
)

// Driver identifies a relational sink.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Publisher loads normalized tables into a database.
type Publisher interface {
	Publish(ctx context.Context, tables ...*tabular.Table) error
	Close() error
}

// Open returns the publisher for driver. dsn is a file path for sqlite and a
// connection string for postgres; empty selects the driver default.
func Open(ctx context.Context, driver Driver, dsn string) (Publisher, error) {
	switch driver {
	case DriverSQLite:
		pub, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case DriverPostgres:
		pub, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown publish driver %q", driver)
	}
}

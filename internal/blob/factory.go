package blob

import (
	"context"
	"fmt"

	"mmrrcingest/internal/infra/blob/fs"
	"mmrrcingest/internal/infra/blob/memory"
	"mmrrcingest/internal/infra/blob/s3"
)

// S3Config holds S3 / MinIO connection parameters.
type S3Config = s3.Config

// Config selects and parameterises a blob driver.
type Config struct {
	Driver Driver
	// FSRoot is the directory root when Driver is fs.
	FSRoot string
	// Prefix scopes every key when Driver is s3 or memory; the fs driver roots
	// itself at FSRoot instead.
	Prefix string
	S3     S3Config
	// MustExist opens FSRoot without creating it. Commands that only read
	// earlier outputs set it.
	MustExist bool
}

// Open constructs the configured Store. An empty driver selects fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		if cfg.MustExist {
			return fs.Open(cfg.FSRoot)
		}
		return fs.New(cfg.FSRoot)
	case DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return WithPrefix(store, cfg.Prefix), nil
	case DriverMemory:
		return WithPrefix(memory.New(), cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an in-memory Store, mainly for tests.
func NewMemory() Store { return memory.New() }

// NewFilesystem returns a filesystem Store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

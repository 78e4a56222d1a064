// Package blob is the single entry point the rest of the ingest uses to reach
// object storage. It re-exports the core abstractions and wires the infra
// drivers behind Open.
package blob

import (
	"context"
	"time"

	"mmrrcingest/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// Content types written by the ingest.
const (
	ContentTypeCSV     = core.ContentTypeCSV
	ContentTypeTSV     = core.ContentTypeTSV
	ContentTypeNTriple = core.ContentTypeNTriple
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported

// Replace overwrites key with payload.
func Replace(ctx context.Context, s Store, key string, payload []byte, opts PutOptions) (Info, error) {
	return core.Replace(ctx, s, key, payload, opts)
}

// ReadAll returns the payload stored under key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	return core.ReadAll(ctx, s, key)
}

// Locate returns a GET URL for key, or "" when the driver has none.
func Locate(ctx context.Context, s Store, key string, expiry time.Duration) (string, error) {
	return core.Locate(ctx, s, key, expiry)
}

// WithPrefix scopes s beneath prefix.
func WithPrefix(s Store, prefix string) Store { return core.WithPrefix(s, prefix) }

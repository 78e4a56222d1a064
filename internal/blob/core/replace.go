package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Replace writes payload under key, removing any previous object first.
// Stores are create-only, so reruns of a stage go through here.
func Replace(ctx context.Context, s Store, key string, payload []byte, opts PutOptions) (Info, error) {
	if _, err := s.Delete(ctx, key); err != nil {
		return Info{}, fmt.Errorf("delete %s: %w", key, err)
	}
	info, err := s.Put(ctx, key, bytes.NewReader(payload), opts)
	if err != nil {
		return Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	return info, nil
}

// ReadAll fetches the full payload stored under key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	_, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

// Locate returns a GET URL for key valid for expiry. Drivers that cannot
// hand out URLs yield "" and no error.
func Locate(ctx context.Context, s Store, key string, expiry time.Duration) (string, error) {
	u, err := s.PresignURL(ctx, key, SignedURLOptions{Method: "GET", Expiry: expiry})
	if errors.Is(err, ErrUnsupported) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}

// Package download fetches the raw MMRRC catalog export into a blob store so
// that preprocess can read it from disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
)

// DefaultURL is the published catalog export.
const DefaultURL = "https://www.mmrrc.org/about/mmrrc_catalog_data.csv"

// Options configures Fetch.
type Options struct {
	// URL to fetch; empty selects DefaultURL.
	URL string
	// Key under which the payload is stored. Empty uses the last path
	// segment of URL.
	Key   string
	Store blob.Store
	// Force fetches again even when Key is already present.
	Force bool
	// Client defaults to http.DefaultClient.
	Client  *http.Client
	Metrics *metrics.Recorder
	Logger  *zap.Logger
}

// Result describes the stored payload.
type Result struct {
	Key  string
	Size int64
	// Cached is set when an existing object was kept.
	Cached bool
}

// Fetch downloads opts.URL into opts.Store. An existing object is left alone
// unless Force is set.
func Fetch(ctx context.Context, opts Options) (Result, error) {
	if opts.Store == nil {
		return Result{}, errors.New("download: store required")
	}
	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		raw = DefaultURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("download: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Result{}, fmt.Errorf("download: unsupported scheme %q", u.Scheme)
	}
	key := opts.Key
	if key == "" {
		key = path.Base(u.Path)
		if key == "/" || key == "." {
			return Result{}, fmt.Errorf("download: cannot derive a file name from %s", raw)
		}
	}
	log := logging.OrNop(opts.Logger).With(zap.String("url", raw), zap.String("key", key))

	if !opts.Force {
		info, err := opts.Store.Head(ctx, key)
		switch {
		case err == nil:
			log.Info("already downloaded, skipping", zap.Int64("bytes", info.Size))
			return Result{Key: key, Size: info.Size, Cached: true}, nil
		case !errors.Is(err, iofs.ErrNotExist):
			return Result{}, fmt.Errorf("download: check %s: %w", key, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("download: %w", err)
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("download %s: %w", raw, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("download %s: unexpected status %s", raw, resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("download %s: read body: %w", raw, err)
	}
	info, err := blob.Replace(ctx, opts.Store, key, payload, blob.PutOptions{
		ContentType: contentType(key, resp.Header.Get("Content-Type")),
		Metadata:    map[string]string{"source_url": raw},
	})
	if err != nil {
		return Result{}, err
	}
	opts.Metrics.BytesDownloaded(info.Size)
	log.Info("downloaded", zap.Int64("bytes", info.Size))
	return Result{Key: key, Size: info.Size}, nil
}

func contentType(key, header string) string {
	if strings.HasSuffix(key, ".csv") {
		return blob.ContentTypeCSV
	}
	return header
}

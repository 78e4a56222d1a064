package rdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/kgx"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
	"mmrrcingest/internal/tabular"
)

// Suffix of the RDF file written per ingest.
const Suffix = ".nt.gz"

// Options configures Export.
type Options struct {
	Store blob.Store
	// Prefixes overrides DefaultPrefixes.
	Prefixes map[string]string
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

// Result lists the RDF files written and the ingests that failed.
type Result struct {
	Written []string
	Failed  []string
}

// Export converts every discovered KGX pair into <name>.nt.gz. A failing
// ingest is logged and the rest are still converted.
func Export(ctx context.Context, opts Options) (Result, error) {
	if opts.Store == nil {
		return Result{}, errors.New("rdf: store required")
	}
	log := logging.OrNop(opts.Logger)
	pairs, err := kgx.Discover(ctx, opts.Store)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if len(pairs) == 0 {
		log.Warn("no transform output files found")
		return res, nil
	}
	for _, p := range pairs {
		key := p.Name + Suffix
		triples, unresolved, err := exportPair(ctx, opts, p, key)
		if err != nil {
			log.Error("rdf export failed", zap.String("ingest", p.Name), zap.Error(err))
			res.Failed = append(res.Failed, p.Name)
			continue
		}
		opts.Metrics.TriplesWritten(p.Name, triples)
		opts.Metrics.CuriesUnresolved(p.Name, unresolved)
		if unresolved > 0 {
			log.Warn("skipped unresolvable CURIEs", zap.String("ingest", p.Name), zap.Int("count", unresolved))
		}
		log.Info("wrote rdf", zap.String("key", key), zap.Int("triples", triples))
		res.Written = append(res.Written, key)
	}
	return res, nil
}

func exportPair(ctx context.Context, opts Options, p kgx.Pair, key string) (int, int, error) {
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	enc := NewEncoder(zw, opts.Prefixes)
	if p.NodesKey != "" {
		if err := eachRow(ctx, opts.Store, p.NodesKey, func(r tabular.Row) error { return enc.Node(kgx.DecodeNode(r)) }); err != nil {
			return 0, 0, err
		}
	}
	if p.EdgesKey != "" {
		if err := eachRow(ctx, opts.Store, p.EdgesKey, func(r tabular.Row) error { return enc.Edge(kgx.DecodeEdge(r)) }); err != nil {
			return 0, 0, err
		}
	}
	if err := enc.Flush(); err != nil {
		return 0, 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("gzip: %w", err)
	}
	if _, err := blob.Replace(ctx, opts.Store, key, buf.Bytes(), blob.PutOptions{ContentType: blob.ContentTypeNTriple}); err != nil {
		return 0, 0, err
	}
	return enc.Triples(), enc.Unresolved(), nil
}

func eachRow(ctx context.Context, store blob.Store, key string, fn func(tabular.Row) error) error {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	rd, err := tabular.NewReader(rc, tabular.Tab)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

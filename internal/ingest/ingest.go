// Package ingest runs the record transforms over the normalized tables and
// writes their output as KGX files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/kgx"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
	"mmrrcingest/internal/tabular"
	"mmrrcingest/internal/transform"
	"mmrrcingest/pkg/domain"
)

// Registered ingest names.
const (
	NameGenotypes           = "mmrrc_genotypes"
	NameAlleleToGenotype    = "mmrrc_allele_to_genotype"
	NameGenotypeToPhenotype = "mmrrc_genotype_to_phenotype"
)

// Records is the output of one transformed row.
type Records struct {
	Nodes []domain.Node
	Edges []domain.Edge
}

// Len returns the number of records.
func (r Records) Len() int { return len(r.Nodes) + len(r.Edges) }

// Spec binds a normalized table to the transform that maps its rows.
type Spec struct {
	Name      string
	Table     string
	Kinds     kgx.Kind
	Transform func(tabular.Row) Records
}

// Specs returns the registered ingests in run order.
func Specs() []Spec {
	return []Spec{
		{
			Name:  NameGenotypes,
			Table: domain.TableGenotypes,
			Kinds: kgx.Nodes,
			Transform: func(row tabular.Row) Records {
				var out Records
				for _, g := range transform.Genotype(row) {
					out.Nodes = append(out.Nodes, g.Node)
				}
				return out
			},
		},
		{
			Name:  NameAlleleToGenotype,
			Table: domain.TableAlleleToGenotype,
			Kinds: kgx.Edges,
			Transform: func(row tabular.Row) Records {
				var out Records
				for _, a := range transform.AlleleToGenotype(row) {
					out.Edges = append(out.Edges, a.Edge)
				}
				return out
			},
		},
		{
			Name:  NameGenotypeToPhenotype,
			Table: domain.TableGenotypeToPhenotype,
			Kinds: kgx.Edges,
			Transform: func(row tabular.Row) Records {
				var out Records
				for _, p := range transform.GenotypeToPhenotype(row) {
					out.Edges = append(out.Edges, p.Edge)
				}
				return out
			},
		},
	}
}

// Lookup returns the registered spec with the given name.
func Lookup(name string) (Spec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Options configures Run and RunAll.
type Options struct {
	Store blob.Store
	// RowLimit stops after this many input rows; zero means no limit.
	RowLimit int
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

// Result summarizes one ingest run.
type Result struct {
	Name    string
	Rows    int
	Emitted int
	Skipped int
	Keys    []string
}

// Run applies spec to every row of its table and writes the KGX output.
// Rows that produce nothing are counted as skipped, never as errors.
func Run(ctx context.Context, spec Spec, opts Options) (Result, error) {
	if opts.Store == nil {
		return Result{}, errors.New("ingest: store required")
	}
	log := logging.OrNop(opts.Logger).With(zap.String("ingest", spec.Name))
	key := domain.TableFile(spec.Table)
	_, rc, err := opts.Store.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("ingest %s: open %s: %w", spec.Name, key, err)
	}
	defer func() { _ = rc.Close() }()
	rd, err := tabular.NewReader(rc, tabular.Comma)
	if err != nil {
		return Result{}, fmt.Errorf("ingest %s: read %s: %w", spec.Name, key, err)
	}

	w := kgx.NewWriter(spec.Name, spec.Kinds)
	res := Result{Name: spec.Name}
	for opts.RowLimit <= 0 || res.Rows < opts.RowLimit {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("ingest %s: %s: %w", spec.Name, key, err)
		}
		res.Rows++
		recs := spec.Transform(row)
		if recs.Len() == 0 {
			res.Skipped++
			continue
		}
		for _, n := range recs.Nodes {
			if err := w.WriteNode(n); err != nil {
				return res, err
			}
		}
		for _, e := range recs.Edges {
			if err := w.WriteEdge(e); err != nil {
				return res, err
			}
		}
		res.Emitted += recs.Len()
	}
	keys, err := w.Flush(ctx, opts.Store)
	if err != nil {
		return res, fmt.Errorf("ingest %s: %w", spec.Name, err)
	}
	res.Keys = keys
	opts.Metrics.RecordsEmitted(spec.Name, res.Emitted)
	opts.Metrics.RecordsSkipped(spec.Name, res.Skipped)
	log.Info("ingest complete", zap.Int("rows", res.Rows), zap.Int("emitted", res.Emitted), zap.Int("skipped", res.Skipped), zap.Strings("files", keys))
	return res, nil
}

// RunAll runs every spec in order, stopping at the first error.
func RunAll(ctx context.Context, specs []Spec, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(specs))
	for _, s := range specs {
		res, err := Run(ctx, s, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

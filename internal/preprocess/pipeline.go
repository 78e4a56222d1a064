package preprocess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

// Publisher loads normalized tables into an external relational store.
type Publisher interface {
	Publish(ctx context.Context, tables ...*tabular.Table) error
}

// Options configures Run.
type Options struct {
	// Input is the path of the raw catalog export.
	Input string
	// Store receives genotypes.csv, allele_to_genotype.csv and
	// genotype_to_phenotype.csv. Existing keys are replaced.
	Store blob.Store
	// Delimiter of the input; zero detects it.
	Delimiter rune
	// Publisher is optional.
	Publisher Publisher
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
}

// Summary reports what a run produced.
type Summary struct {
	RowsLoaded int
	// Tables maps each normalized table to its row count, in write order.
	Tables []TableSummary
}

// TableSummary describes one written relation.
type TableSummary struct {
	Name string
	Key  string
	Rows int
}

// Rows returns the row count recorded for table, or -1 when it was not written.
func (s Summary) Rows(table string) int {
	for _, t := range s.Tables {
		if t.Name == table {
			return t.Rows
		}
	}
	return -1
}

// Projectors in write order.
var projectors = []struct {
	name string
	fn   func(ctx context.Context, db *sql.DB, table string) (*tabular.Table, error)
}{
	{domain.TableGenotypes, ProjectGenotypes},
	{domain.TableAlleleToGenotype, ProjectAlleleAssociations},
	{domain.TableGenotypeToPhenotype, ProjectPhenotypeAssociations},
}

// Run loads the catalog and writes the three normalized relations. Tables are
// written as soon as they are projected; a later failure leaves earlier
// outputs in place.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Input == "" {
		return Summary{}, errors.New("preprocess: input path required")
	}
	if opts.Store == nil {
		return Summary{}, errors.New("preprocess: output store required")
	}
	log := logging.OrNop(opts.Logger)
	start := time.Now()

	db, err := OpenDB(ctx)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = db.Close() }()

	loaded, err := Load(ctx, db, opts.Input, LoadOptions{
		Delimiter:       opts.Delimiter,
		RequiredColumns: domain.CatalogColumns,
		Logger:          log,
	})
	if err != nil {
		return Summary{}, err
	}
	opts.Metrics.RowsLoaded(loaded.Rows)
	log.Info("loaded catalog", zap.String("input", opts.Input), zap.Int("rows", loaded.Rows), zap.Int("columns", len(loaded.Columns)))

	summary := Summary{RowsLoaded: loaded.Rows}
	tables := make([]*tabular.Table, 0, len(projectors))
	for _, p := range projectors {
		t, err := p.fn(ctx, db, loaded.Table)
		if err != nil {
			return summary, err
		}
		key := domain.TableFile(t.Name)
		if err := writeTable(ctx, opts.Store, key, t); err != nil {
			return summary, err
		}
		opts.Metrics.RowsProjected(t.Name, t.Len())
		log.Info("wrote table", zap.String("table", t.Name), zap.String("key", key), zap.Int("rows", t.Len()))
		summary.Tables = append(summary.Tables, TableSummary{Name: t.Name, Key: key, Rows: t.Len()})
		tables = append(tables, t)
	}

	if opts.Publisher != nil {
		if err := opts.Publisher.Publish(ctx, tables...); err != nil {
			return summary, fmt.Errorf("publish tables: %w", err)
		}
		log.Info("published tables", zap.Int("tables", len(tables)))
	}
	log.Debug("preprocess finished", zap.Duration("elapsed", time.Since(start)))
	return summary, nil
}

func writeTable(ctx context.Context, store blob.Store, key string, t *tabular.Table) error {
	payload, err := tabular.Encode(t, tabular.Comma)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.Name, err)
	}
	_, err = blob.Replace(ctx, store, key, payload, blob.PutOptions{
		ContentType: blob.ContentTypeCSV,
		Metadata:    map[string]string{"table": t.Name, "rows": strconv.Itoa(t.Len())},
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

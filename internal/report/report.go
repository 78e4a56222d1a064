// Package report summarizes KGX node and edge files into count tables.
package report

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/kgx"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
	"mmrrcingest/internal/preprocess"
	"mmrrcingest/internal/tabular"
)

// Report file suffixes.
const (
	NodesReportSuffix = "_nodes_report.tsv"
	EdgesReportSuffix = "_edges_report.tsv"
)

const (
	nodesQuery = `SELECT category, split_part(id, ':', 1) AS prefix, count(*) AS count
FROM nodes
GROUP BY 1, 2
ORDER BY 1, 2`

	edgesQuery = `SELECT category, split_part(subject, ':', 1) AS subject_prefix, predicate,
	split_part(object, ':', 1) AS object_prefix, count(*) AS count
FROM edges
GROUP BY 1, 2, 3, 4
ORDER BY 1, 2, 3, 4`
)

// Options configures Generate.
type Options struct {
	Store   blob.Store
	Metrics *metrics.Recorder
	Logger  *zap.Logger
}

// Result lists the reports written and the file keys whose report failed.
type Result struct {
	Pairs   int
	Written []string
	Failed  []string
}

// Generate writes a nodes and/or edges report for every discovered pair. A
// failing report is logged and counted; the remaining reports still run.
func Generate(ctx context.Context, opts Options) (Result, error) {
	if opts.Store == nil {
		return Result{}, errors.New("report: store required")
	}
	log := logging.OrNop(opts.Logger)
	pairs, err := kgx.Discover(ctx, opts.Store)
	if err != nil {
		return Result{}, err
	}
	res := Result{Pairs: len(pairs)}
	if len(pairs) == 0 {
		log.Info("no transform output files found")
		return res, nil
	}
	db, err := preprocess.OpenDB(ctx)
	if err != nil {
		return res, err
	}
	defer func() { _ = db.Close() }()

	for _, p := range pairs {
		log.Info("processing ingest", zap.String("ingest", p.Name))
		jobs := []struct {
			source, table, query, target string
		}{
			{p.NodesKey, "nodes", nodesQuery, p.Name + NodesReportSuffix},
			{p.EdgesKey, "edges", edgesQuery, p.Name + EdgesReportSuffix},
		}
		for _, j := range jobs {
			if j.source == "" {
				log.Info("no file for report, skipping", zap.String("ingest", p.Name), zap.String("report", j.target))
				continue
			}
			if err := writeReport(ctx, db, opts.Store, j.source, j.table, j.query, j.target); err != nil {
				log.Error("report failed", zap.String("ingest", p.Name), zap.String("source", j.source), zap.Error(err))
				opts.Metrics.ReportFailed()
				res.Failed = append(res.Failed, j.source)
				continue
			}
			log.Info("generated report", zap.String("report", j.target))
			res.Written = append(res.Written, j.target)
		}
	}
	return res, nil
}

func writeReport(ctx context.Context, db *sql.DB, store blob.Store, source, table, query, target string) error {
	_, rc, err := store.Get(ctx, source)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	if _, err := preprocess.LoadReader(ctx, db, rc, preprocess.LoadOptions{Table: table, Delimiter: tabular.Tab}); err != nil {
		return err
	}
	out, err := preprocess.QueryTable(ctx, db, target, query)
	if err != nil {
		return err
	}
	payload, err := tabular.Encode(out, tabular.Tab)
	if err != nil {
		return err
	}
	_, err = blob.Replace(ctx, store, target, payload, blob.PutOptions{ContentType: blob.ContentTypeTSV})
	return err
}

// Package metrics exposes Prometheus counters for preprocessing, transform,
// and report runs. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mmrrc"

// Metric names.
const (
	MetricRowsLoaded       = "rows_loaded_total"
	MetricRowsProjected    = "rows_projected_total"
	MetricRecordsEmitted   = "records_emitted_total"
	MetricRecordsSkipped   = "records_skipped_total"
	MetricReportFailures   = "report_failures_total"
	MetricTriplesWritten   = "rdf_triples_written_total"
	MetricCuriesUnresolved = "rdf_curies_unresolved_total"
	MetricBytesDownloaded  = "download_bytes_total"
)

// Recorder owns a private registry so concurrent runs and tests never collide
// on the process-global default registry.
type Recorder struct {
	registry       *prometheus.Registry
	rowsLoaded     prometheus.Counter
	rowsProjected  *prometheus.CounterVec
	emitted        *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	reportFailures prometheus.Counter
	triples        *prometheus.CounterVec
	unresolved     *prometheus.CounterVec
	downloaded     prometheus.Counter
}

// New constructs a Recorder with all counters registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricRowsLoaded,
			Help:      "Raw catalog rows loaded into the analytical store.",
		}),
		rowsProjected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricRowsProjected,
			Help:      "Rows written to each normalized table.",
		}, []string{"table"}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricRecordsEmitted,
			Help:      "Biolink records produced by a transform.",
		}, []string{"ingest"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricRecordsSkipped,
			Help:      "Input rows a transform produced nothing for.",
		}, []string{"ingest"}),
		reportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricReportFailures,
			Help:      "Node/edge file pairs whose report could not be generated.",
		}),
		triples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTriplesWritten,
			Help:      "N-Triples statements written per ingest.",
		}, []string{"ingest"}),
		unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricCuriesUnresolved,
			Help:      "CURIEs skipped during RDF export because their prefix is unknown.",
		}, []string{"ingest"}),
		downloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricBytesDownloaded,
			Help:      "Bytes of raw source data fetched by download.",
		}),
	}
	r.registry.MustRegister(r.rowsLoaded, r.rowsProjected, r.emitted, r.skipped, r.reportFailures, r.triples, r.unresolved, r.downloaded)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RowsLoaded counts raw catalog rows loaded by the extractor.
func (r *Recorder) RowsLoaded(n int) {
	if r == nil {
		return
	}
	r.rowsLoaded.Add(float64(n))
}

// RowsProjected counts rows written to a normalized table.
func (r *Recorder) RowsProjected(table string, n int) {
	if r == nil {
		return
	}
	r.rowsProjected.WithLabelValues(table).Add(float64(n))
}

// RecordsEmitted counts biolink records an ingest wrote.
func (r *Recorder) RecordsEmitted(ingest string, n int) {
	if r == nil {
		return
	}
	r.emitted.WithLabelValues(ingest).Add(float64(n))
}

// RecordsSkipped counts input rows an ingest produced no record for.
func (r *Recorder) RecordsSkipped(ingest string, n int) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(ingest).Add(float64(n))
}

// ReportFailed counts one node/edge pair whose report failed.
func (r *Recorder) ReportFailed() {
	if r == nil {
		return
	}
	r.reportFailures.Inc()
}

// TriplesWritten counts N-Triples statements written for an ingest.
func (r *Recorder) TriplesWritten(ingest string, n int) {
	if r == nil {
		return
	}
	r.triples.WithLabelValues(ingest).Add(float64(n))
}

// CuriesUnresolved counts CURIEs dropped for an unknown prefix.
func (r *Recorder) CuriesUnresolved(ingest string, n int) {
	if r == nil {
		return
	}
	r.unresolved.WithLabelValues(ingest).Add(float64(n))
}

// BytesDownloaded counts raw source bytes fetched.
func (r *Recorder) BytesDownloaded(n int64) {
	if r == nil {
		return
	}
	r.downloaded.Add(float64(n))
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	objectsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdm_mapper_objects_executed_total",
		Help: "The total number of mapping object executions",
	}, []string{"table"})
	objectsEmpty = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdm_mapper_objects_empty_total",
		Help: "The total number of mapping objects that produced no rows",
	}, []string{"table"})
	rowsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdm_mapper_rows_total",
		Help: "The total number of finalized rows per destination table",
	}, []string{"table"})
	valuesLost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cdm_mapper_coercion_losses_total",
		Help: "The total number of values nulled by coercion",
	}, []string{"table", "column", "reason"})
	tableDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cdm_mapper_table_duration_seconds",
		Help:    "Time spent producing one destination table",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
)

// WriteMetrics writes the collected metrics in the Prometheus text format,
// e.g. for the node exporter textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Wrap(err, "writing metrics")
	}

	return nil
}

// Package metrics exposes prometheus instrumentation for the ledger,
// snapshot and rollback engines and the sql stores underneath them.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Number of calls per store and query
	sqlQueryCounter *prometheus.CounterVec
	// Total time spent per store and query
	sqlQueryTimeCounter *prometheus.CounterVec

	epochsRecordedCounter prometheus.Counter
	epochRowsCounter      prometheus.Counter
	snapshotCounter       *prometheus.CounterVec
	snapshotPrunedCounter *prometheus.CounterVec
	rollbackCounter       *prometheus.CounterVec
)

// Setup registers all collectors on the default registry. Call it once per
// process, typically right before Start.
func Setup() error {
	sqlQueryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "sql_query_count_total",
		Help:      "Count of sql queries per store and query",
	}, []string{"store", "query"})
	if err := prometheus.Register(sqlQueryCounter); err != nil {
		return err
	}

	sqlQueryTimeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "sql_query_time_total",
		Help:      "Total time spent in sql queries per store and query",
	}, []string{"store", "query"})
	if err := prometheus.Register(sqlQueryTimeCounter); err != nil {
		return err
	}

	epochsRecordedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "ledger_epochs_total",
		Help:      "Count of value epochs recorded",
	})
	if err := prometheus.Register(epochsRecordedCounter); err != nil {
		return err
	}

	epochRowsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "ledger_rows_total",
		Help:      "Count of versioned value rows written",
	})
	if err := prometheus.Register(epochRowsCounter); err != nil {
		return err
	}

	snapshotCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "snapshots_created_total",
		Help:      "Count of snapshots created per type",
	}, []string{"type"})
	if err := prometheus.Register(snapshotCounter); err != nil {
		return err
	}

	snapshotPrunedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "snapshots_pruned_total",
		Help:      "Count of snapshots removed by retention cleanup per type",
	}, []string{"type"})
	if err := prometheus.Register(snapshotPrunedCounter); err != nil {
		return err
	}

	rollbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valuekeeper",
		Name:      "rollbacks_total",
		Help:      "Count of rollback attempts per outcome",
	}, []string{"outcome"})
	return prometheus.Register(rollbackCounter)
}

// Start exposes the metrics endpoint. Blocking, run it in its own goroutine.
func Start(cfg Config) {
	if !cfg.Enabled {
		return
	}
	http.Handle(cfg.Path, promhttp.Handler())
	http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), nil)
}

// StartSQLQuery times one store query, used as a defer in the sqlstore
// package.
func StartSQLQuery(store, query string) func() {
	startTime := time.Now()
	return func() {
		if sqlQueryCounter == nil || sqlQueryTimeCounter == nil {
			return
		}
		sqlQueryCounter.WithLabelValues(store, query).Inc()
		sqlQueryTimeCounter.WithLabelValues(store, query).Add(time.Since(startTime).Seconds())
	}
}

// EpochRecorded counts one successful ledger write of n rows.
func EpochRecorded(rows int) {
	if epochsRecordedCounter == nil || epochRowsCounter == nil {
		return
	}
	epochsRecordedCounter.Inc()
	epochRowsCounter.Add(float64(rows))
}

// SnapshotCreated counts one created snapshot.
func SnapshotCreated(snapshotType string) {
	if snapshotCounter == nil {
		return
	}
	snapshotCounter.WithLabelValues(snapshotType).Inc()
}

// SnapshotsPruned counts snapshots removed by retention cleanup.
func SnapshotsPruned(snapshotType string, n int) {
	if snapshotPrunedCounter == nil || n <= 0 {
		return
	}
	snapshotPrunedCounter.WithLabelValues(snapshotType).Add(float64(n))
}

// RollbackFinished counts one rollback attempt by outcome.
func RollbackFinished(success bool) {
	if rollbackCounter == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	rollbackCounter.WithLabelValues(outcome).Inc()
}

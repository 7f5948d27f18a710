package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus registry, the scrape endpoint and the
// collectors the Oraculum core instruments.
type Metrics struct {
	Server   *http.Server
	Registry *prometheus.Registry

	// StoreOps counts store round trips by operation, collection and status.
	StoreOps *prometheus.CounterVec

	// MigrationBatches counts record batches moved during a schema migration.
	MigrationBatches prometheus.Counter

	// BackupRows counts rows written to / restored from a backup stream.
	BackupRows *prometheus.CounterVec

	// QueryDuration tracks latency of relevance queries in seconds.
	QueryDuration *prometheus.HistogramVec

	serviceName string
}

func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m := &Metrics{
		Registry: registry,
		StoreOps: createCounterVec(
			"oraculum_store_operations_total",
			"Store round trips by operation, collection and status.",
			[]string{"operation", "collection", "status"},
		),
		MigrationBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oraculum_migration_batches_total",
			Help: "Record batches moved during schema migrations.",
		}),
		BackupRows: createCounterVec(
			"oraculum_backup_rows_total",
			"Rows exported to or restored from backup streams.",
			[]string{"direction"},
		),
		QueryDuration: createHistogramVec(
			"oraculum_query_duration_seconds",
			"Latency of relevance queries.",
			[]string{"ranked"},
			prometheus.DefBuckets,
		),
		serviceName: cfg.ServiceName,
	}

	wrappedRegistry.MustRegister(m.StoreOps, m.MigrationBatches, m.BackupRows, m.QueryDuration)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return m
}

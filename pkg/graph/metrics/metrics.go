package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	// Registry metrics
	IDsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_ids_resolved_total",
			Help: "Number of sparse ids resolved to dense ids",
		},
		[]string{"entity_type"},
	)

	HashCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_hash_collisions_total",
		Help: "Number of hash-mode collisions that triggered a rehash",
	})

	// Transform metrics
	RowsTransformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_rows_total",
			Help: "Number of rows written to dense vertex and edge files",
		},
		[]string{"kind", "label"},
	)

	FilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "router_files_skipped_total",
		Help: "Number of input files not recognised as vertex or edge files",
	})

	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_pass_duration_seconds",
			Help: "Time spent in each pipeline pass",
		},
		[]string{"pass"},
	)

	// Synthesis metrics
	PlainRecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthesizer_records_total",
			Help: "Number of records written to plain vertex and edge lists",
		},
		[]string{"output"},
	)

	// Stream metrics
	StreamEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_total",
			Help: "Number of update stream events decoded",
		},
		[]string{"event_type"},
	)

	SentinelsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_sentinel_references_skipped_total",
		Help: "Number of optional references skipped because they were missing",
	})
)

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
}

// WriteTextfile dumps every registered metric in the text exposition format
func WriteTextfile(path string) error {
	UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

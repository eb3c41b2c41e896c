// Package metrics exposes Prometheus metrics for the reconciliation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application's own registry instead of the global default,
// so tests never trip over duplicate registrations.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ReloadsTotal counts full reloads of the incidence collection by outcome.
var ReloadsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gmalla",
	Name:      "reloads_total",
	Help:      "Full reloads of incidences and roster, by outcome",
}, []string{"outcome"})

// ReloadDurationSeconds tracks how long a full reload plus index rebuild takes.
var ReloadDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "gmalla",
	Name:      "reload_duration_seconds",
	Help:      "Time taken to reload remote state and rebuild the index",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
})

// IncidencesLoaded is the size of the last successfully loaded collection.
var IncidencesLoaded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "gmalla",
	Name:      "incidences_loaded",
	Help:      "Incidences in the last successful reload",
})

// AgentsLoaded is the roster size of the last successful reload.
var AgentsLoaded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "gmalla",
	Name:      "agents_loaded",
	Help:      "Agents in the last successful reload",
})

// MovesTotal counts single-incidence moves by outcome.
var MovesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gmalla",
	Name:      "moves_total",
	Help:      "Single-incidence move operations, by outcome",
}, []string{"outcome"})

// BatchRunsTotal counts batch assignment runs by mode and outcome.
var BatchRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gmalla",
	Name:      "batch_runs_total",
	Help:      "Automatic assignment batch runs, by mode and outcome",
}, []string{"mode", "outcome"})

// BatchAssignmentsApplied counts assignments the remote service applied.
var BatchAssignmentsApplied = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "gmalla",
	Name:      "batch_assignments_applied_total",
	Help:      "Assignments applied across all batch runs",
})

// BatchItemErrors counts per-item errors reported by batch runs.
var BatchItemErrors = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "gmalla",
	Name:      "batch_item_errors_total",
	Help:      "Per-incidence errors reported by batch runs",
})

// Package telemetry wires selector decision events into Prometheus
// metrics and structured log events. Neither the selector nor the rule
// compiler import this package directly — it is an OnDecision /
// zerolog consumer wired up by the binary that owns the registry.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gwselect/internal/selector"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gwselect_decisions_total",
			Help: "Total selection decisions, labeled by outcome kind.",
		},
		[]string{"kind"},
	)
	decisionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gwselect_decision_latency_seconds",
			Help:    "Selection latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	activeSnapshotVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gwselect_active_snapshot_version",
		Help: "Version number of the currently installed ruleset snapshot.",
	})
)

// Init registers all collectors with the default Prometheus registry.
// Call once at startup before serving /metrics.
func Init() {
	prometheus.MustRegister(decisionsTotal, decisionLatency, activeSnapshotVersion)
}

// SetActiveSnapshotVersion updates the active-snapshot gauge after an
// Install.
func SetActiveSnapshotVersion(version int64) {
	activeSnapshotVersion.Set(float64(version))
}

// OnDecision is a selector.Options.OnDecision adapter that records
// decision counters and latency histograms.
func OnDecision(e selector.Event) {
	kind := string(e.Kind)
	decisionsTotal.WithLabelValues(kind).Inc()
	decisionLatency.WithLabelValues(kind).Observe(time.Duration(e.LatencyNS).Seconds())
}

// LogSink returns a selector.Options.OnDecision adapter that emits one
// structured debug-level event per decision through log.
func LogSink(log zerolog.Logger) func(selector.Event) {
	return func(e selector.Event) {
		ev := log.Debug().
			Int64("ruleset_id", e.RulesetID).
			Int64("version", e.Version).
			Str("kind", string(e.Kind)).
			Int64("latency_ns", e.LatencyNS).
			Uint64("ctx_key_fp", e.CtxKeyFP)
		if e.HasRuleID {
			ev = ev.Int64("rule_id", e.RuleID)
		}
		ev.Msg("decision")
	}
}

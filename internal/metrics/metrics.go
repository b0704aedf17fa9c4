// Package metrics exposes Prometheus instruments for lifecycle and dashboard activity.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// reportTransitions counts applied report transitions.
	// Labels: transition (create, complete, approve, edit, delete)
	reportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_tracker",
		Subsystem: "reports",
		Name:      "transitions_total",
		Help:      "Report lifecycle operations applied",
	}, []string{"transition"})

	// issueWrites counts issue writes.
	// Labels: kind (create, status, fields, delete)
	issueWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_tracker",
		Subsystem: "issues",
		Name:      "writes_total",
		Help:      "Issue lifecycle writes applied",
	}, []string{"kind"})

	// updateConflicts counts compare-and-set updates that lost a race.
	// Labels: resource (report, issue)
	updateConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_tracker",
		Name:      "update_conflicts_total",
		Help:      "Updates rejected because the row changed concurrently",
	}, []string{"resource"})

	// dashboardDuration measures building one dashboard snapshot.
	// Labels: scope (global, own)
	dashboardDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "report_tracker",
		Subsystem: "dashboard",
		Name:      "build_seconds",
		Help:      "Dashboard aggregation latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"scope"})
)

func ReportTransition(name string) {
	reportTransitions.WithLabelValues(name).Inc()
}

func IssueWrite(kind string) {
	issueWrites.WithLabelValues(kind).Inc()
}

func UpdateConflict(resource string) {
	updateConflicts.WithLabelValues(resource).Inc()
}

func DashboardBuilt(global bool, seconds float64) {
	scope := "own"
	if global {
		scope = "global"
	}
	dashboardDuration.WithLabelValues(scope).Observe(seconds)
}

// Handler serves the default registry for GET /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

package main

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pathRequestsTotal counts searches by outcome
	pathRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridplanner_path_requests_total",
		Help: "Total path requests by outcome",
	}, []string{"outcome"}) // "found", "not_found", "misconfigured", "no_grid", "rejected"

	// searchDuration tracks A* latency
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridplanner_search_duration_seconds",
		Help:    "A* search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	})

	// searchExpanded tracks closed-set size per search
	searchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridplanner_search_expanded_cells",
		Help:    "Cells expanded per A* search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridplanner_request_queue_depth",
		Help: "Path requests waiting for a worker",
	})

	gridCells = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gridplanner_grid_cells",
		Help: "Cells in the active navigation grid",
	}, []string{"state"}) // "walkable", "blocked"
)

func searchOutcome(result PathResult, err error) string {
	switch {
	case errors.Is(err, ErrNoGrid):
		return "no_grid"
	case err != nil:
		return "misconfigured"
	case result.Success:
		return "found"
	default:
		return "not_found"
	}
}

func recordSearch(result PathResult, err error, elapsed time.Duration) {
	pathRequestsTotal.WithLabelValues(searchOutcome(result, err)).Inc()
	if err != nil {
		return
	}
	searchDuration.Observe(elapsed.Seconds())
	searchExpanded.Observe(float64(result.Expanded))
}

func recordRejected() {
	pathRequestsTotal.WithLabelValues("rejected").Inc()
}

func recordGrid(walkable, blocked int) {
	gridCells.WithLabelValues("walkable").Set(float64(walkable))
	gridCells.WithLabelValues("blocked").Set(float64(blocked))
}

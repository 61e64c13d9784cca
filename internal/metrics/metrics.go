// Package metrics exposes Prometheus instrumentation for segment lookups
// and playback actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeFound     = "found"
	OutcomeEmpty     = "empty"
	OutcomeNotFound  = "not_found"
	OutcomeTransient = "transient"
	OutcomeMalformed = "malformed"
	OutcomeCancelled = "cancelled"
)

// Playback actions.
const (
	ActionSkip   = "skip"
	ActionMute   = "mute"
	ActionUnmute = "unmute"
	ActionJump   = "jump"
)

var (
	// Registry holds every collector of this package. It is separate from
	// the default registry so tests can scrape it in isolation.
	Registry = prometheus.NewRegistry()

	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sponsorblock",
			Name:      "lookups_total",
			Help:      "Segment lookups against the remote service by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sponsorblock",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of segment lookups.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sponsorblock",
			Name:      "cache_requests_total",
			Help:      "Result cache requests by result (hit or miss).",
		},
		[]string{"result"},
	)

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sponsorblock",
			Name:      "actions_total",
			Help:      "Side effects issued to the player.",
		},
		[]string{"action"},
	)
)

func init() {
	Registry.MustRegister(lookupsTotal, lookupDuration, cacheRequests, actionsTotal)
}

// ObserveLookup records the outcome and latency of one remote lookup.
func ObserveLookup(strategy, outcome string, elapsed time.Duration) {
	lookupsTotal.WithLabelValues(strategy, outcome).Inc()
	lookupDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// CacheHit records a result cache hit.
func CacheHit() { cacheRequests.WithLabelValues("hit").Inc() }

// CacheMiss records a result cache miss.
func CacheMiss() { cacheRequests.WithLabelValues("miss").Inc() }

// Action records a side effect issued to the player.
func Action(name string) {
	actionsTotal.WithLabelValues(name).Inc()
}

// Handler returns the Prometheus scrape handler for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

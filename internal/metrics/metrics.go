// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourcesScrapedTotal *prometheus.CounterVec
	fetchFailuresTotal  *prometheus.CounterVec
	fallbacksUsedTotal  prometheus.Counter
	groupsEmittedTotal  *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourcesScrapedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "changelog_sources_scraped_total",
				Help: "Total number of source scrapes, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "changelog_fetch_failures_total",
				Help: "Total number of fetch failures, labeled by reason.",
			},
			[]string{"reason"},
		)

		fallbacksUsedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "changelog_fallbacks_used_total",
				Help: "Total number of times the HTML fallback URL was fetched.",
			},
		)

		groupsEmittedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "changelog_release_groups_total",
				Help: "Total number of release groups emitted, labeled by source.",
			},
			[]string{"source"},
		)
	})
}

// ObserveScrape records one finished source scrape.
func ObserveScrape(source, outcome string) {
	if sourcesScrapedTotal != nil {
		sourcesScrapedTotal.WithLabelValues(source, outcome).Inc()
	}
}

// ObserveFetchFailure records a failed fetch.
func ObserveFetchFailure(reason string) {
	if fetchFailuresTotal != nil {
		fetchFailuresTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveFallback records use of the HTML fallback path.
func ObserveFallback() {
	if fallbacksUsedTotal != nil {
		fallbacksUsedTotal.Inc()
	}
}

// ObserveGroups records the number of groups a source produced.
func ObserveGroups(source string, n int) {
	if groupsEmittedTotal != nil {
		groupsEmittedTotal.WithLabelValues(source).Add(float64(n))
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

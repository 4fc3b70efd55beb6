package fetchcache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus counters the fetch cache reports, grounded
// on C360Studio-semspec's use of prometheus/client_golang for its own
// process-wide counters. This is ambient observability, not the
// user-facing "reporting" spec.md scopes out as an external collaborator.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheStores prometheus.Counter
	Fetches     prometheus.Counter
	FetchErrors prometheus.Counter
}

// NewMetrics registers a fresh set of counters on reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_cache_hits_total",
			Help: "Fetch cache lookups served from the sidecar index.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_cache_misses_total",
			Help: "Fetch cache lookups that found no cached document.",
		}),
		CacheStores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_cache_stores_total",
			Help: "Documents written into the fetch cache.",
		}),
		Fetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_fetches_total",
			Help: "Network fetches attempted for external schema references.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_fetch_errors_total",
			Help: "Network fetches that failed before any rewrite fallback.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.CacheHits, m.CacheMisses, m.CacheStores, m.Fetches, m.FetchErrors)
	}
	return m
}

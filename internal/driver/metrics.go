package driver

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the batch-run counters the driver reports alongside its CSV
// artifacts, grounded on fetchcache.Metrics's own use of
// prometheus/client_golang for process-wide counters — the CSV report is
// the artifact spec.md §6 requires, these counters are the ambient
// observability layer around it.
type Metrics struct {
	SchemasProcessed  prometheus.Counter
	SchemasRecursive  prometheus.Counter
	SchemasUnguarded  prometheus.Counter
	InvalidReferences prometheus.Counter
	IllegalDrafts     prometheus.Counter
}

// NewMetrics registers a fresh set of counters on reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SchemasProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_driver_schemas_processed_total",
			Help: "Schema files considered by one Analyse run.",
		}),
		SchemasRecursive: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_driver_schemas_recursive_total",
			Help: "Schema files classified GUARDED or RECURSION.",
		}),
		SchemasUnguarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_driver_schemas_unguarded_total",
			Help: "Schema files classified RECURSION.",
		}),
		InvalidReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_driver_invalid_references_total",
			Help: "Schema files that failed normalization due to an invalid reference.",
		}),
		IllegalDrafts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsonschema_normalize_driver_illegal_drafts_total",
			Help: "Schema files rejected as structurally invalid for any draft.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.SchemasProcessed, m.SchemasRecursive, m.SchemasUnguarded,
			m.InvalidReferences, m.IllegalDrafts)
	}
	return m
}

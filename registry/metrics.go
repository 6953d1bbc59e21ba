package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	registrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prefabecs",
		Subsystem: "registry",
		Name:      "registrations_total",
		Help:      "Number of component types registered into a registry set.",
	})

	lookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prefabecs",
		Subsystem: "registry",
		Name:      "lookup_total",
		Help:      "Component registration lookups by UUID or reflect.Type, labeled by hit/miss.",
	}, []string{"result"})

	diffTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prefabecs",
		Subsystem: "registry",
		Name:      "diff_total",
		Help:      "Component diffs performed, labeled by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(registrationsTotal, lookupTotal, diffTotal)
}

func lookupResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

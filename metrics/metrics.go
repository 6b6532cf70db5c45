// Package metrics exposes the bus's Prometheus instrumentation, grounded
// on github.com/prometheus/client_golang as used by ghjramos-aistore in the
// example pack; nothing else in this corpus carries a metrics client, but
// aistore's use of promauto-style registration is the closest available
// precedent for a service reporting gauges/counters about its own
// internal state.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// QueueDepth reports how many entries are currently linked in a peer's
	// delivery queue, staging or committed.
	QueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bus1",
		Name:      "queue_depth",
		Help:      "Number of entries currently linked in a peer's delivery queue.",
	}, []string{"peer"})

	// HandlesInstalled reports how many handles are currently installed on
	// a peer.
	HandlesInstalled = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bus1",
		Name:      "handles_installed",
		Help:      "Number of handles currently installed on a peer.",
	}, []string{"peer"})

	// QuotaRejections counts Charge calls rejected by the self-throttle
	// rule, per uid.
	QuotaRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bus1",
		Name:      "quota_rejections_total",
		Help:      "Number of resource charges rejected by the self-throttle rule.",
	}, []string{"uid"})

	// NodesDestroyed counts completed node destructions across the bus.
	NodesDestroyed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bus1",
		Name:      "nodes_destroyed_total",
		Help:      "Number of nodes that have completed destruction.",
	})
)

func init() {
	prometheus.MustRegister(QueueDepth, HandlesInstalled, QuotaRejections, NodesDestroyed)
}

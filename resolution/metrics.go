package resolution

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	sourceExplicit = "explicit"
	sourceDraft    = "draft"
	sourceRandom   = "random"
	sourceParent   = "parent"

	opTotalCount = "total_count"
	opFetch      = "fetch"
)

// Metrics records controller activity. A nil *Metrics records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	superseded prometheus.Counter
	calls      *prometheus.HistogramVec
}

// NewMetrics creates the controller metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerview",
			Subsystem: "resolution",
			Name:      "requests_total",
			Help:      "Resolution requests accepted, by source.",
		}, []string{"source"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerview",
			Subsystem: "resolution",
			Name:      "outcomes_total",
			Help:      "Terminal states published, by state and error kind.",
		}, []string{"state", "kind"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerview",
			Subsystem: "resolution",
			Name:      "superseded_total",
			Help:      "Gateway results dropped because a newer request was accepted.",
		}),
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledgerview",
			Subsystem: "resolution",
			Name:      "gateway_call_seconds",
			Help:      "Latency of gateway calls, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.requests, m.outcomes, m.superseded, m.calls)
	return m
}

func (m *Metrics) request(source string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(source).Inc()
}

func (m *Metrics) outcome(s State) {
	if m == nil || !s.Terminal() {
		return
	}
	m.outcomes.WithLabelValues(s.Status.String(), string(s.Kind())).Inc()
}

func (m *Metrics) drop() {
	if m == nil {
		return
	}
	m.superseded.Inc()
}

func (m *Metrics) observeCall(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op).Observe(d.Seconds())
}

package eventbus

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects prometheus counters for bus activity. A nil *Metrics
// is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	published       *prometheus.CounterVec
	handlersInvoked prometheus.Counter
	handlerFailures prometheus.Counter
	backpressure    prometheus.Counter
	queueDepth      prometheus.Gauge
}

// NewMetrics creates and registers the bus metrics on the given
// registerer. Pass prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventure",
			Subsystem: "bus",
			Name:      "published_total",
			Help:      "Messages accepted by Publish, labeled by delivery mode.",
		}, []string{"mode"}),
		handlersInvoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventure",
			Subsystem: "bus",
			Name:      "handlers_invoked_total",
			Help:      "Handler executions completed, successful or not.",
		}),
		handlerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventure",
			Subsystem: "bus",
			Name:      "handler_failures_total",
			Help:      "Handler executions that returned an error or panicked.",
		}),
		backpressure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventure",
			Subsystem: "bus",
			Name:      "backpressure_total",
			Help:      "Publishes rejected because the bounded queue was full.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventure",
			Subsystem: "bus",
			Name:      "queue_depth",
			Help:      "Messages currently waiting in the single-worker queue.",
		}),
	}

	collectors := []prometheus.Collector{
		m.published, m.handlersInvoked, m.handlerFailures, m.backpressure, m.queueDepth,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) incPublished(mode DeliveryMode) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) incBackpressure() {
	if m == nil {
		return
	}
	m.backpressure.Inc()
}

func (m *Metrics) setQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) observeDispatch(outcome DispatchOutcome) {
	if m == nil {
		return
	}
	m.handlersInvoked.Add(float64(len(outcome)))
	if failed := outcome.Failures(); len(failed) > 0 {
		m.handlerFailures.Add(float64(len(failed)))
	}
}

func (m *Metrics) observeResult(result HandlerResult) {
	if m == nil {
		return
	}
	m.handlersInvoked.Inc()
	if result.Err != nil {
		m.handlerFailures.Inc()
	}
}

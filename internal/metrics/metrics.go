package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. All methods are safe on
// a nil receiver so components can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	messages          *prometheus.CounterVec
	readingsPersisted prometheus.Counter
	readingsSkipped   prometheus.Counter
	readingsFailed    prometheus.Counter
	persistLatency    prometheus.Histogram
	commands          *prometheus.CounterVec
	channelValue      *prometheus.GaugeVec
	switchState       prometheus.Gauge
	transportUp       prometheus.Gauge
}

// Message outcomes used as the "outcome" label of power_messages_total.
const (
	OutcomeSensor      = "sensor"
	OutcomeState       = "state"
	OutcomeCommandEcho = "command_echo"
	OutcomeMalformed   = "malformed"
	OutcomeDropped     = "dropped"
	// ingest queue was full; counted by the transport, never reaches ingest
	OutcomeOverflow = "overflow"
)

// Command stages used as the "stage" label of power_switch_commands_total.
const (
	CommandQueued    = "queued"
	CommandCoalesced = "coalesced"
	CommandPublished = "published"
	CommandFailed    = "failed"
	CommandRejected  = "rejected"
)

// New builds a Metrics bound to its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_messages_total",
			Help: "Inbound transport messages by ingestion outcome.",
		}, []string{"outcome"}),
		readingsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_readings_persisted_total",
			Help: "Reading records written to storage.",
		}),
		readingsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_readings_skipped_total",
			Help: "Sensor updates that did not trigger a write (same minute or write in flight).",
		}),
		readingsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_readings_failed_total",
			Help: "Reading writes that failed and will be retried on the next update.",
		}),
		persistLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "power_reading_persist_seconds",
			Help:    "Latency of a single reading insert.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_switch_commands_total",
			Help: "Switch control requests by debounce stage.",
		}, []string{"stage"}),
		channelValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "power_channel_value",
			Help: "Latest value per sensor channel.",
		}, []string{"channel"}),
		switchState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "power_switch_state",
			Help: "Last confirmed switch state (0 or 1).",
		}),
		transportUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "power_transport_connected",
			Help: "1 while the broker connection is up.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.messages,
		m.readingsPersisted,
		m.readingsSkipped,
		m.readingsFailed,
		m.persistLatency,
		m.commands,
		m.channelValue,
		m.switchState,
		m.transportUp,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Message(outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ReadingPersisted(took time.Duration) {
	if m == nil {
		return
	}
	m.readingsPersisted.Inc()
	m.persistLatency.Observe(took.Seconds())
}

func (m *Metrics) ReadingSkipped() {
	if m == nil {
		return
	}
	m.readingsSkipped.Inc()
}

func (m *Metrics) ReadingFailed() {
	if m == nil {
		return
	}
	m.readingsFailed.Inc()
}

func (m *Metrics) Command(stage string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(stage).Inc()
}

func (m *Metrics) ChannelValue(channel string, v float64) {
	if m == nil {
		return
	}
	m.channelValue.WithLabelValues(channel).Set(v)
}

func (m *Metrics) SwitchState(v int) {
	if m == nil {
		return
	}
	m.switchState.Set(float64(v))
}

func (m *Metrics) TransportConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.transportUp.Set(1)
		return
	}
	m.transportUp.Set(0)
}

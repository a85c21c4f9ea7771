package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts session and capture activity. It satisfies session.Observer.
type Metrics struct {
	FramesSent         atomic.Uint64
	FramesSkipped      atomic.Uint64
	EncodeErrors       atomic.Uint64
	MessagesReceived   atomic.Uint64
	DecodeErrors       atomic.Uint64
	ChannelErrors      atomic.Uint64
	DetectionsAccepted atomic.Uint64
	SessionActiveGauge atomic.Uint64 // 0 = stopped, 1 = active
	EventsPublished    atomic.Uint64
	EventsDropped      atomic.Uint64

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name string
		help string
		v    *atomic.Uint64
	}{
		{"stationeye_frames_sent_total", "Frames transmitted to the detection backend", &m.FramesSent},
		{"stationeye_frames_skipped_total", "Capture ticks dropped because the channel was not open", &m.FramesSkipped},
		{"stationeye_encode_errors_total", "Frames that could not be grabbed or encoded", &m.EncodeErrors},
		{"stationeye_messages_received_total", "Messages received from the detection backend", &m.MessagesReceived},
		{"stationeye_decode_errors_total", "Inbound messages discarded as malformed", &m.DecodeErrors},
		{"stationeye_channel_errors_total", "Channel failures that stopped a session", &m.ChannelErrors},
		{"stationeye_detections_accepted_total", "Detections above the confidence threshold", &m.DetectionsAccepted},
		{"stationeye_events_published_total", "Diagnostic events handed to the event publisher", &m.EventsPublished},
		{"stationeye_events_dropped_total", "Diagnostic events dropped by the event publisher", &m.EventsDropped},
	}
	for _, c := range counters {
		v := c.v
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		))
	}

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "stationeye_session_active",
			Help: "Whether a detection session is active (0 = no, 1 = yes)",
		},
		func() float64 { return float64(m.SessionActiveGauge.Load()) },
	))
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FrameSent()         { m.FramesSent.Add(1) }
func (m *Metrics) FrameSkipped()      { m.FramesSkipped.Add(1) }
func (m *Metrics) EncodeFailed()      { m.EncodeErrors.Add(1) }
func (m *Metrics) MessageReceived()   { m.MessagesReceived.Add(1) }
func (m *Metrics) DecodeFailed()      { m.DecodeErrors.Add(1) }
func (m *Metrics) ChannelFailed()     { m.ChannelErrors.Add(1) }
func (m *Metrics) DetectionAccepted() { m.DetectionsAccepted.Add(1) }
func (m *Metrics) EventPublished()    { m.EventsPublished.Add(1) }
func (m *Metrics) EventDropped()      { m.EventsDropped.Add(1) }

func (m *Metrics) SessionActive(active bool) {
	if active {
		m.SessionActiveGauge.Store(1)
	} else {
		m.SessionActiveGauge.Store(0)
	}
}

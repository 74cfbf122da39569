// Package metrics exposes decoder counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gnssbin"

// Metrics holds the decoder counters. A nil *Metrics records nothing.
type Metrics struct {
	frames         *prometheus.CounterVec
	noiseBytes     *prometheus.CounterVec
	messages       *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec
	unknown        *prometheus.CounterVec
	checksumChecks *prometheus.CounterVec
}

// New creates the counters and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Frames cut from the byte stream, by kind.",
			},
			[]string{"protocol", "kind"},
		),
		noiseBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "noise_bytes_total",
				Help:      "Bytes skipped while resynchronizing.",
			},
			[]string{"protocol"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Valid frames by message id.",
			},
			[]string{"protocol", "id"},
		),
		decodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_errors_total",
				Help:      "Recoverable decode failures by class.",
			},
			[]string{"protocol", "class"},
		),
		unknown: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unknown_messages_total",
				Help:      "Valid frames whose id is not in the registry.",
			},
			[]string{"protocol"},
		),
		checksumChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checksum_checks_total",
				Help:      "Checksum verifications by outcome.",
			},
			[]string{"protocol", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.frames, m.noiseBytes, m.messages, m.decodeErrors, m.unknown, m.checksumChecks)
	}
	return m
}

func (m *Metrics) Frame(protocol, kind string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(protocol, kind).Inc()
}

func (m *Metrics) Noise(protocol string, n int) {
	if m == nil {
		return
	}
	m.noiseBytes.WithLabelValues(protocol).Add(float64(n))
}

func (m *Metrics) Message(protocol, id string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(protocol, id).Inc()
}

func (m *Metrics) DecodeError(protocol, class string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(protocol, class).Inc()
}

func (m *Metrics) Unknown(protocol string) {
	if m == nil {
		return
	}
	m.unknown.WithLabelValues(protocol).Inc()
}

func (m *Metrics) Checksum(protocol string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "mismatch"
	}
	m.checksumChecks.WithLabelValues(protocol, result).Inc()
}

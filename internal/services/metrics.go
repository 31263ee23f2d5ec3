package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SendMetrics counts outbound message outcomes. Send failures are
// swallowed by the webhook flow (the inbound is always acked), so these
// counters are the place where those failures stay visible.
type SendMetrics struct {
	MessagesSentTotal   *prometheus.CounterVec
	MessagesFailedTotal *prometheus.CounterVec
}

// NewSendMetrics creates the outbound counters registered on the given registry
func NewSendMetrics(registry *prometheus.Registry) *SendMetrics {
	return &SendMetrics{
		MessagesSentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayra_messages_sent_total",
				Help: "Total outbound WhatsApp messages accepted by the Cloud API",
			},
			[]string{"type"}, // type: text, image, location, buttons, list
		),

		MessagesFailedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayra_messages_failed_total",
				Help: "Total outbound WhatsApp messages that failed to send",
			},
			[]string{"type"},
		),
	}
}

// RecordSuccess counts one delivered message of the given type
func (m *SendMetrics) RecordSuccess(msgType string) {
	if m == nil {
		return
	}
	m.MessagesSentTotal.WithLabelValues(msgType).Inc()
}

// RecordFailure counts one failed send of the given type
func (m *SendMetrics) RecordFailure(msgType string) {
	if m == nil {
		return
	}
	m.MessagesFailedTotal.WithLabelValues(msgType).Inc()
}

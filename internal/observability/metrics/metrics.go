package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/gauges/histograms for conversation turns.
type ChatMetrics struct {
	turnsTotal        *prometheus.CounterVec
	responseLatency   *prometheus.HistogramVec
	handoffsTotal     *prometheus.CounterVec
	sentimentAlerts   *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sartoria",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"status"}),
		responseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sartoria",
			Subsystem: "chat",
			Name:      "response_latency_seconds",
			Help:      "Latency of full turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"layer"}),
		handoffsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sartoria",
			Subsystem: "chat",
			Name:      "handoffs_total",
			Help:      "Total human handoffs initiated",
		}, []string{"trigger"}),
		sentimentAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sartoria",
			Subsystem: "chat",
			Name:      "sentiment_alerts_total",
			Help:      "Total sentiment alerts raised",
		}, []string{"type", "severity"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sartoria",
			Subsystem: "chat",
			Name:      "active_connections",
			Help:      "Currently open websocket connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.responseLatency, m.handoffsTotal, m.sentimentAlerts, m.activeConnections)
	return m
}

func (m *ChatMetrics) ObserveTurn(status string, layer string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.responseLatency.WithLabelValues(layer).Observe(seconds)
}

func (m *ChatMetrics) ObserveHandoff(trigger string) {
	if m == nil {
		return
	}
	m.handoffsTotal.WithLabelValues(trigger).Inc()
}

func (m *ChatMetrics) ObserveSentimentAlert(alertType, severity string) {
	if m == nil {
		return
	}
	m.sentimentAlerts.WithLabelValues(alertType, severity).Inc()
}

func (m *ChatMetrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *ChatMetrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

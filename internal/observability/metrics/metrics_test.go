package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)
	m.ObserveTurn("ok", "2", 0.25)
	m.ObserveTurn("degraded", "1", 0.05)
	m.ObserveHandoff("frustration")
	m.ObserveSentimentAlert("escalation_needed", "high")
	m.ConnectionOpened()
	m.ConnectionClosed()
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveTurn("ok", "2", 0.1)
	m.ObserveHandoff("customer_request")
	m.ObserveSentimentAlert("satisfaction_drop", "medium")
	m.ConnectionOpened()
	m.ConnectionClosed()
}

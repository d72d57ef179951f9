package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mandi/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := metrics.New("test")

	m.OrderTransition("pending", "confirmed")
	m.OrderTransition("pending", "confirmed")
	m.MessageSent()
	m.EventPublished("order.created", nil)
	m.EventPublished("order.created", errors.New("broker down"))
	m.ObserveHTTP("GET", "/health", 200, 3*time.Millisecond)

	expected := `
# HELP test_order_transitions_total Order status transitions applied
# TYPE test_order_transitions_total counter
test_order_transitions_total{from="pending",to="confirmed"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_order_transitions_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "test_chat_messages_sent_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "test_events_published_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "test_http_requests_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.OrderTransition("pending", "confirmed")
		m.MessageSent()
		m.SupplierSearch("distance", 3)
		m.EventPublished("x", nil)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New("dup")
		metrics.New("dup")
	})
}

package main

import (
	"testing"
	"time"

	"mandi/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := logEvent(zap.New(core))

	body, err := rabbitmq.Encode("order.created", map[string]string{"order_id": "o-1"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, handle(amqp.Delivery{RoutingKey: "order.created", Body: body}))
	entries := logs.FilterMessage("Received event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "order.created", entries[0].ContextMap()["event"])

	assert.Error(t, handle(amqp.Delivery{RoutingKey: "order.created", Body: []byte("not json")}))
}

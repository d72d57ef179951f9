package services

import (
	"context"

	"mandi/internal/metrics"

	"go.uber.org/zap"
)

// Routing keys of the events published on the exchange.
const (
	EventOrderCreated        = "order.created"
	EventOrderStatusChanged  = "order.status_changed"
	EventMessageCreated      = "message.created"
	EventProductPriceChanged = "product.price_changed"
	EventPriceAlertTriggered = "price_alert.triggered"
)

// EventPublisher is satisfied by *rabbitmq.Client.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Events publishes domain events on a best-effort basis. A failed publish is logged
// and counted but never fails the operation that caused it. The zero value and a nil
// *Events discard everything.
type Events struct {
	pub     EventPublisher
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewEvents(pub EventPublisher, m *metrics.Metrics, log *zap.Logger) *Events {
	if log == nil {
		log = zap.NewNop()
	}
	return &Events{pub: pub, metrics: m, log: log}
}

func (e *Events) Emit(ctx context.Context, event string, payload any) {
	if e == nil || e.pub == nil {
		return
	}
	err := e.pub.Publish(ctx, event, payload)
	e.metrics.EventPublished(event, err)
	if err != nil {
		e.log.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
		return
	}
	e.log.Debug("event published", zap.String("event", event))
}

// Package events publishes order lifecycle events for downstream consumers
// such as kitchen displays.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qr-menu/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeOrderPlaced   = "order.placed"
	TypeStatusChanged = "order.status_changed"
)

// OrderEvent is the message body written for every order event.
type OrderEvent struct {
	Type        string            `json:"type"`
	OrderID     string            `json:"orderId"`
	TableNumber int               `json:"tableNumber"`
	Status      model.OrderStatus `json:"status"`
	TotalPrice  decimal.Decimal   `json:"totalPrice"`
	ItemCount   int               `json:"itemCount"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// Publisher emits order events.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *model.Order) error
	StatusChanged(ctx context.Context, order *model.Order) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to a Kafka topic keyed by order ID,
// so every event of one order lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		now:    time.Now,
		logger: logger.With().Str("component", "kafka-publisher").Logger(),
	}
}

// OrderPlaced publishes an order.placed event.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order *model.Order) error {
	return p.publish(ctx, TypeOrderPlaced, order)
}

// StatusChanged publishes an order.status_changed event.
func (p *KafkaPublisher) StatusChanged(ctx context.Context, order *model.Order) error {
	return p.publish(ctx, TypeStatusChanged, order)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, order *model.Order) error {
	event := OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		TableNumber: order.TableNumber,
		Status:      order.Status,
		TotalPrice:  order.TotalPrice,
		ItemCount:   len(order.Items),
		OccurredAt:  p.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		p.logger.Error().Err(err).Str("type", eventType).Str("order_id", event.OrderID).Msg("failed to publish order event")
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Debug().Str("type", eventType).Str("order_id", event.OrderID).Msg("order event published")
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, *model.Order) error   { return nil }
func (NopPublisher) StatusChanged(context.Context, *model.Order) error { return nil }
func (NopPublisher) Close() error                                      { return nil }

package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/segmentio/kafka-go"
)

const (
	EventStatusChanged = "order.status_changed"
	EventLowStock      = "stock.low"
)

// Envelope is the message body on the workshop events topic.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventProducer struct {
	writer  messageWriter
	timeout time.Duration
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		timeout: 5 * time.Second,
	}
}

var _ service.Notifier = (*EventProducer)(nil)

func (p *EventProducer) send(ctx context.Context, key, eventType string, payload any, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	value, err := json.Marshal(Envelope{Type: eventType, OccurredAt: at, Payload: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
}

// PublishStatusChanged keys by order id so one order's events stay ordered
// within a partition.
func (p *EventProducer) PublishStatusChanged(ctx context.Context, e service.StatusChangedEvent) error {
	return p.send(ctx, e.OrderID.String(), EventStatusChanged, e, e.ChangedAt)
}

func (p *EventProducer) PublishLowStock(ctx context.Context, e service.LowStockEvent) error {
	return p.send(ctx, e.ProductID.String(), EventLowStock, e, e.DetectedAt)
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}

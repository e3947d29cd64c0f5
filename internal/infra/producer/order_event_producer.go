package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventOrderCreated     = "order.created"
	EventOrderCompensated = "order.compensated"
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// OrderEvent 訂單/付款生命週期事件, 發佈失敗只記log不影響主流程
type OrderEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	OrderID   string          `json:"order_id"`
	UserID    uint            `json:"user_id"`
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// IOrderEventProducer 事件發佈介面
type IOrderEventProducer interface {
	PublishOrderCreated(ctx context.Context, orderID string, userID uint, amount decimal.Decimal) error
	PublishOrderCompensated(ctx context.Context, orderID string, userID uint, reason string) error
	PublishPaymentSucceeded(ctx context.Context, orderID string, userID uint, reference string, amount decimal.Decimal) error
	PublishPaymentFailed(ctx context.Context, orderID string, userID uint, reference string) error
	Close() error
}

type OrderEventProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewOrderEventProducer(brokers []string, topic string, logger *zap.Logger) *OrderEventProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &OrderEventProducer{
		writer: writer,
		logger: logger,
	}
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, orderID string, userID uint, amount decimal.Decimal) error {
	return p.publish(ctx, OrderEvent{
		EventID:   uuid.New().String(),
		EventType: EventOrderCreated,
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	})
}

func (p *OrderEventProducer) PublishOrderCompensated(ctx context.Context, orderID string, userID uint, reason string) error {
	return p.publish(ctx, OrderEvent{
		EventID:   uuid.New().String(),
		EventType: EventOrderCompensated,
		OrderID:   orderID,
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

func (p *OrderEventProducer) PublishPaymentSucceeded(ctx context.Context, orderID string, userID uint, reference string, amount decimal.Decimal) error {
	return p.publish(ctx, OrderEvent{
		EventID:   uuid.New().String(),
		EventType: EventPaymentSucceeded,
		OrderID:   orderID,
		UserID:    userID,
		Reference: reference,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	})
}

func (p *OrderEventProducer) PublishPaymentFailed(ctx context.Context, orderID string, userID uint, reference string) error {
	return p.publish(ctx, OrderEvent{
		EventID:   uuid.New().String(),
		EventType: EventPaymentFailed,
		OrderID:   orderID,
		UserID:    userID,
		Reference: reference,
		Timestamp: time.Now().UTC(),
	})
}

func (p *OrderEventProducer) publish(ctx context.Context, event OrderEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventBytes,
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return err
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID))

	return nil
}

func (p *OrderEventProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)

// Package kafka publishes settlement events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

const (
	eventTypeSettled    = "checkout.settled"
	eventVersionSettled = 1
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SettledEvent is the payload of a checkout.settled message.
type SettledEvent struct {
	EventID               string          `json:"event_id"`
	EventType             string          `json:"event_type"`
	EventVersion          int             `json:"event_version"`
	OccurredAt            string          `json:"occurred_at"`
	SettlementID          string          `json:"settlement_id"`
	BasketID              string          `json:"basket_id"`
	OrderNumber           string          `json:"order_number"`
	PayKey                string          `json:"pay_key"`
	PaymentMethod         string          `json:"payment_method"`
	Currency              string          `json:"currency"`
	Amount                decimal.Decimal `json:"amount"`
	PartnerShare          decimal.Decimal `json:"partner_share"`
	PaidShippingCosts     bool            `json:"paid_shipping_costs"`
	PaidShippingInsurance bool            `json:"paid_shipping_insurance"`
	CorrelationID         string          `json:"correlation_id"`
}

// SettlementPublisher implements ports.SettlementPublisher on Kafka.
type SettlementPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewSettlementPublisher creates a publisher writing to topic.
func NewSettlementPublisher(logger *zap.Logger, brokers []string, topic string) *SettlementPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return newSettlementPublisher(logger, writer, topic)
}

func newSettlementPublisher(logger *zap.Logger, writer messageWriter, topic string) *SettlementPublisher {
	return &SettlementPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// Close closes the Kafka writer.
func (p *SettlementPublisher) Close() error {
	return p.writer.Close()
}

// PublishSettled writes one message keyed by pay key, so every event of a
// payment lands on the same partition.
func (p *SettlementPublisher) PublishSettled(ctx context.Context, settlement *domain.Settlement) error {
	event := SettledEvent{
		EventID:               uuid.NewString(),
		EventType:             eventTypeSettled,
		EventVersion:          eventVersionSettled,
		OccurredAt:            p.now().UTC().Format(time.RFC3339),
		SettlementID:          settlement.ID,
		BasketID:              settlement.BasketID,
		OrderNumber:           settlement.OrderNumber,
		PayKey:                settlement.PayKey,
		PaymentMethod:         settlement.PaymentMethod,
		Currency:              settlement.Source.Currency,
		Amount:                settlement.Source.AmountDebited,
		PartnerShare:          settlement.PartnerShare,
		PaidShippingCosts:     settlement.PaidShippingCosts,
		PaidShippingInsurance: settlement.PaidShippingInsurance,
		CorrelationID:         settlement.Event.Reference,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settled event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(settlement.PayKey),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish settled event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("pay_key", settlement.PayKey),
		)
		return err
	}

	p.logger.Info("settled event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.EventID),
		zap.String("pay_key", settlement.PayKey),
		zap.String("order_number", settlement.OrderNumber),
	)
	return nil
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func settlement() *domain.Settlement {
	amount := decimal.RequireFromString("100.00")
	return &domain.Settlement{
		ID:                "s-1",
		BasketID:          "42",
		OrderNumber:       "100042",
		PayKey:            "AP-1",
		PaymentMethod:     "paypal",
		PartnerShare:      decimal.RequireFromString("18.49"),
		PaidShippingCosts: true,
		Source:            domain.PaymentSource{SourceType: "PayPal", Currency: "GBP", AmountAllocated: amount, AmountDebited: amount, Reference: "AP-1"},
		Event:             domain.PaymentEvent{EventType: "Settled", Amount: amount, Reference: "corr-9"},
	}
}

func TestSettlementPublisher_PublishSettled(t *testing.T) {
	writer := &fakeWriter{}
	p := newSettlementPublisher(zap.NewNop(), writer, "checkout.settled")
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, p.PublishSettled(context.Background(), settlement()))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	require.Equal(t, "AP-1", string(msg.Key))

	var event SettledEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	require.NotEmpty(t, event.EventID)
	require.Equal(t, "checkout.settled", event.EventType)
	require.Equal(t, 1, event.EventVersion)
	require.Equal(t, "2026-03-01T12:00:00Z", event.OccurredAt)
	require.Equal(t, "100042", event.OrderNumber)
	require.Equal(t, "GBP", event.Currency)
	require.Equal(t, "18.49", event.PartnerShare.StringFixed(2))
	require.Equal(t, "corr-9", event.CorrelationID)
	require.True(t, event.PaidShippingCosts)

	require.NoError(t, p.Close())
	require.True(t, writer.closed)
}

func TestSettlementPublisher_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	p := newSettlementPublisher(zap.NewNop(), writer, "checkout.settled")

	err := p.PublishSettled(context.Background(), settlement())

	require.EqualError(t, err, "leader not available")
}

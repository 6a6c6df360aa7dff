// Package ledger records every provider call as an immutable transaction record.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/ports"
)

// Response keys read from provider answers. Adaptive API keys come first,
// classic NVP keys second.
var (
	keysAck           = []string{"responseEnvelope.ack", "ACK"}
	keysCorrelationID = []string{"responseEnvelope.correlationId", "CORRELATIONID"}
	keysPayKey        = []string{"payKey"}
	keysExecStatus    = []string{"paymentExecStatus"}
	keysErrorCode     = []string{"error(0).errorId", "L_ERRORCODE0"}
	keysErrorMessage  = []string{"error(0).message", "L_LONGMESSAGE0"}
	keysCurrency      = []string{"currencyCode"}
)

// Entry is the outcome of one provider call.
type Entry struct {
	Action    string
	IsSandbox bool

	// Pairs is the decoded response.
	Pairs       map[string]string
	RawRequest  string
	RawResponse string
	Elapsed     time.Duration

	// Amount and Currency come from the request, when it carried them.
	Amount   *decimal.Decimal
	Currency string
}

// Ledger builds and saves transaction records.
type Ledger struct {
	repo   ports.TransactionRepository
	logger *zap.Logger
	now    func() time.Time
}

// New creates a ledger on top of a transaction repository.
func New(repo ports.TransactionRepository, logger *zap.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger, now: time.Now}
}

// Record saves a record for the entry and then checks it. It returns a
// *domain.GatewayRejectedError when the provider declined the call; the
// record is saved in that case too.
func (l *Ledger) Record(ctx context.Context, e Entry) (*domain.TransactionRecord, error) {
	rec := &domain.TransactionRecord{
		ID:                uuid.NewString(),
		IsSandbox:         e.IsSandbox,
		Action:            e.Action,
		Currency:          e.Currency,
		Ack:               lookup(e.Pairs, keysAck),
		CorrelationID:     lookup(e.Pairs, keysCorrelationID),
		PayKey:            lookup(e.Pairs, keysPayKey),
		PaymentExecStatus: lookup(e.Pairs, keysExecStatus),
		ErrorCode:         lookup(e.Pairs, keysErrorCode),
		ErrorMessage:      lookup(e.Pairs, keysErrorMessage),
		RawRequest:        e.RawRequest,
		RawResponse:       e.RawResponse,
		ResponseTime:      float64(e.Elapsed.Microseconds()) / 1000.0,
		CreatedAt:         l.now().UTC(),
	}
	if rec.Currency == "" {
		rec.Currency = lookup(e.Pairs, keysCurrency)
	}
	if e.Amount != nil {
		rec.Amount = decimal.NewNullDecimal(e.Amount.Round(2))
	}

	if err := l.repo.Save(ctx, rec); err != nil {
		l.logger.Error("failed to save transaction record",
			zap.Error(err),
			zap.String("action", rec.Action),
			zap.String("correlation_id", rec.CorrelationID),
		)
		return nil, fmt.Errorf("failed to save transaction record: %w", err)
	}

	if !rec.IsSuccessful() || !rec.IsPaymentSuccessful() {
		l.logger.Error("provider rejected request",
			zap.String("action", rec.Action),
			zap.String("ack", rec.Ack),
			zap.String("exec_status", rec.PaymentExecStatus),
			zap.String("error_code", rec.ErrorCode),
			zap.String("error_message", rec.ErrorMessage),
		)
		return rec, &domain.GatewayRejectedError{
			Action:  rec.Action,
			Code:    rec.ErrorCode,
			Message: rec.ErrorMessage,
			Record:  rec,
		}
	}

	l.logger.Debug("transaction recorded",
		zap.String("action", rec.Action),
		zap.String("correlation_id", rec.CorrelationID),
		zap.String("pay_key", rec.PayKey),
		zap.Float64("response_time_ms", rec.ResponseTime),
	)
	return rec, nil
}

// ListByPayKey returns the records for a pay key.
func (l *Ledger) ListByPayKey(ctx context.Context, payKey string) ([]domain.TransactionRecord, error) {
	return l.repo.ListByPayKey(ctx, payKey)
}

func lookup(pairs map[string]string, keys []string) string {
	for _, k := range keys {
		if v, ok := pairs[k]; ok {
			return v
		}
	}
	return ""
}

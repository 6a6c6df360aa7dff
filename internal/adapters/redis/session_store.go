// Package redis keeps checkout sessions in Redis hashes.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

const (
	fieldState                 = "state"
	fieldBasketID              = "basket_id"
	fieldPayKey                = "pay_key"
	fieldCorrelationID         = "correlation_id"
	fieldPaymentMethod         = "payment_method"
	fieldAmount                = "amount"
	fieldCurrency              = "currency"
	fieldPartnerShare          = "partner_share"
	fieldPaidShippingCosts     = "paid_shipping_costs"
	fieldPaidShippingInsurance = "paid_shipping_insurance"
	fieldCreatedAt             = "created_at"
)

// SessionStore implements ports.SessionStore on Redis hashes.
type SessionStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionStore creates a Redis session store.
func NewSessionStore(client *redis.Client, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: logger,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("checkout:session:%s", sessionID)
}

// Get returns domain.ErrSessionNotFound for missing or expired sessions.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrSessionNotFound
		}
		s.logger.Error("failed to get checkout session from redis",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(fields) == 0 || fields[fieldState] == "" {
		return nil, domain.ErrSessionNotFound
	}
	return fromHash(fields), nil
}

// Set replaces the session. A zero ttl keeps it until deleted.
func (s *SessionStore) Set(ctx context.Context, sessionID string, session *domain.CheckoutSession, ttl time.Duration) error {
	key := sessionKey(sessionID)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, toHash(session))
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to store checkout session in redis",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("checkout session stored",
		zap.String("session_id", sessionID),
		zap.String("state", string(session.State)),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		s.logger.Error("failed to delete checkout session from redis",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func toHash(session *domain.CheckoutSession) map[string]any {
	return map[string]any{
		fieldState:                 string(session.State),
		fieldBasketID:              session.BasketID,
		fieldPayKey:                session.PayKey,
		fieldCorrelationID:         session.CorrelationID,
		fieldPaymentMethod:         session.PaymentMethod,
		fieldAmount:                session.Amount.String(),
		fieldCurrency:              session.Currency,
		fieldPartnerShare:          session.PartnerShare.String(),
		fieldPaidShippingCosts:     cast.ToString(session.PaidShippingCosts),
		fieldPaidShippingInsurance: cast.ToString(session.PaidShippingInsurance),
		fieldCreatedAt:             session.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// fromHash is lenient: unparsable fields come back as zero values.
func fromHash(fields map[string]string) *domain.CheckoutSession {
	createdAt, _ := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	return &domain.CheckoutSession{
		State:                 domain.CheckoutState(fields[fieldState]),
		BasketID:              fields[fieldBasketID],
		PayKey:                fields[fieldPayKey],
		CorrelationID:         fields[fieldCorrelationID],
		PaymentMethod:         fields[fieldPaymentMethod],
		Amount:                parseDecimal(fields[fieldAmount]),
		Currency:              fields[fieldCurrency],
		PartnerShare:          parseDecimal(fields[fieldPartnerShare]),
		PaidShippingCosts:     cast.ToBool(fields[fieldPaidShippingCosts]),
		PaidShippingInsurance: cast.ToBool(fields[fieldPaidShippingInsurance]),
		CreatedAt:             createdAt,
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

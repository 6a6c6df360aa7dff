package redis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

func TestSessionHash(t *testing.T) {
	session := &domain.CheckoutSession{
		State:                 domain.StateConfirmedByProvider,
		BasketID:              "42",
		PayKey:                "AP-1",
		CorrelationID:         "corr-1",
		PaymentMethod:         "paypal",
		Amount:                decimal.RequireFromString("100.00"),
		Currency:              "GBP",
		PartnerShare:          decimal.RequireFromString("18.49"),
		PaidShippingCosts:     true,
		PaidShippingInsurance: false,
		CreatedAt:             time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	fields := make(map[string]string)
	for k, v := range toHash(session) {
		fields[k] = v.(string)
	}
	require.Equal(t, "true", fields[fieldPaidShippingCosts])
	require.Equal(t, "18.49", fields[fieldPartnerShare])

	got := fromHash(fields)

	require.Equal(t, session.State, got.State)
	require.Equal(t, session.PayKey, got.PayKey)
	require.True(t, session.Amount.Equal(got.Amount))
	require.True(t, session.PartnerShare.Equal(got.PartnerShare))
	require.True(t, got.PaidShippingCosts)
	require.False(t, got.PaidShippingInsurance)
	require.True(t, session.CreatedAt.Equal(got.CreatedAt))
}

func TestFromHash_Lenient(t *testing.T) {
	got := fromHash(map[string]string{
		fieldState:             string(domain.StateRedirected),
		fieldAmount:            "not-a-number",
		fieldPaidShippingCosts: "1",
	})

	require.Equal(t, domain.StateRedirected, got.State)
	require.True(t, got.Amount.IsZero())
	require.True(t, got.PaidShippingCosts)
	require.True(t, got.CreatedAt.IsZero())
}

func TestSessionKey(t *testing.T) {
	require.Equal(t, "checkout:session:abc", sessionKey("abc"))
}

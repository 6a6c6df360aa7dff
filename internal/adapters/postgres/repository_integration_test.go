//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("payments"),
		postgres.WithUsername("payments_user"),
		postgres.WithPassword("payments_password"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// The container may accept connections before it is ready for queries.
	var migrateErr error
	for i := 0; i < 10; i++ {
		if migrateErr = Migrate(ctx, dsn); migrateErr == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, migrateErr, "failed to migrate database")

	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and ListByPayKey", func(t *testing.T) {
		first := &domain.TransactionRecord{
			ID:                "0b4f3c1e-8a55-4d6c-9a64-0a1f2b3c4d01",
			IsSandbox:         true,
			Action:            domain.ActionPay,
			Amount:            decimal.NewNullDecimal(decimal.RequireFromString("100.00")),
			Currency:          "GBP",
			Ack:               domain.AckSuccess,
			CorrelationID:     "corr-1",
			PayKey:            "AP-1",
			PaymentExecStatus: domain.ExecStatusCreated,
			RawRequest:        "actionType=PAY",
			RawResponse:       "responseEnvelope.ack=Success",
			ResponseTime:      123.4,
			CreatedAt:         base,
		}
		second := &domain.TransactionRecord{
			ID:            "0b4f3c1e-8a55-4d6c-9a64-0a1f2b3c4d02",
			Action:        domain.ActionExecutePayment,
			Ack:           domain.AckFailure,
			CorrelationID: "corr-2",
			PayKey:        "AP-1",
			ErrorCode:     "569042",
			ErrorMessage:  "The payment was not approved",
			RawRequest:    "payKey=AP-1",
			RawResponse:   "responseEnvelope.ack=Failure",
			CreatedAt:     base.Add(time.Minute),
		}
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		got, err := repo.ListByPayKey(ctx, "AP-1")
		require.NoError(t, err)
		require.Len(t, got, 2)

		require.Equal(t, second.ID, got[0].ID)
		require.False(t, got[0].Amount.Valid)
		require.Equal(t, "569042", got[0].ErrorCode)

		require.Equal(t, first.ID, got[1].ID)
		require.True(t, got[1].Amount.Valid)
		require.Equal(t, "100.00", got[1].Amount.Decimal.StringFixed(2))
		require.True(t, got[1].IsSandbox)
		require.InDelta(t, 123.4, got[1].ResponseTime, 0.001)
		require.True(t, base.Equal(got[1].CreatedAt))
	})

	t.Run("ListByPayKey unknown", func(t *testing.T) {
		got, err := repo.ListByPayKey(ctx, "AP-UNKNOWN")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("SaveSettlement and GetSettlement", func(t *testing.T) {
		amount := decimal.RequireFromString("100.00")
		settlement := &domain.Settlement{
			ID:                "6d2a9a7e-1c3b-4f5e-8d9c-aa11bb22cc33",
			BasketID:          "42",
			OrderNumber:       "100042",
			PayKey:            "AP-1",
			PaymentMethod:     "paypal",
			PartnerShare:      decimal.RequireFromString("18.49"),
			PaidShippingCosts: true,
			Source: domain.PaymentSource{
				SourceType:      "PayPal",
				Currency:        "GBP",
				AmountAllocated: amount,
				AmountDebited:   amount,
				Reference:       "AP-1",
			},
			Event:     domain.PaymentEvent{EventType: "Settled", Amount: amount, Reference: "corr-9"},
			CreatedAt: base,
		}
		require.NoError(t, repo.SaveSettlement(ctx, settlement))

		got, err := repo.GetSettlement(ctx, "AP-1")
		require.NoError(t, err)
		require.Equal(t, "100042", got.OrderNumber)
		require.Equal(t, "18.49", got.PartnerShare.StringFixed(2))
		require.True(t, got.PaidShippingCosts)
		require.False(t, got.PaidShippingInsurance)
		require.Equal(t, "GBP", got.Source.Currency)
		require.True(t, amount.Equal(got.Source.AmountDebited))
		require.Equal(t, "Settled", got.Event.EventType)
		require.Equal(t, "corr-9", got.Event.Reference)

		// One settlement per pay key.
		settlement.ID = "6d2a9a7e-1c3b-4f5e-8d9c-aa11bb22cc34"
		require.Error(t, repo.SaveSettlement(ctx, settlement))
	})

	t.Run("GetSettlement not found", func(t *testing.T) {
		_, err := repo.GetSettlement(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrSettlementNotFound)
	})
}

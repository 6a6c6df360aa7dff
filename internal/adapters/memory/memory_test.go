package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

func TestTransactionRepository_ListByPayKey(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, &domain.TransactionRecord{ID: "1", PayKey: "AP-1", Action: domain.ActionPay, CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &domain.TransactionRecord{ID: "2", PayKey: "AP-2", Action: domain.ActionPay, CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &domain.TransactionRecord{ID: "3", PayKey: "AP-1", Action: domain.ActionExecutePayment, CreatedAt: base.Add(time.Minute)}))

	records, err := repo.ListByPayKey(ctx, "AP-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "3", records[0].ID)
	require.Equal(t, "1", records[1].ID)
	require.Len(t, repo.All(), 3)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, "s-1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Set(ctx, "s-1", &domain.CheckoutSession{PayKey: "AP-1", State: domain.StateRedirected}, time.Minute))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, "AP-1", got.PayKey)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s-1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "s-1"))
	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestStorefront_BasketTransitions(t *testing.T) {
	ctx := context.Background()
	sf := NewStorefront()
	sf.PutBasket(domain.Basket{ID: "b-1"})

	require.NoError(t, sf.Freeze(ctx, "b-1"))
	require.ErrorIs(t, sf.Freeze(ctx, "b-1"), domain.ErrInvalidBasket)

	require.NoError(t, sf.Thaw(ctx, "b-1"))
	basket, err := sf.GetBasket(ctx, "b-1")
	require.NoError(t, err)
	require.Equal(t, domain.BasketOpen, basket.Status)

	require.NoError(t, sf.Freeze(ctx, "b-1"))
	require.NoError(t, sf.Submit(ctx, "b-1"))
	require.ErrorIs(t, sf.Thaw(ctx, "b-1"), domain.ErrInvalidBasket)

	_, err = sf.GetBasket(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrBasketNotFound)
}

func TestStorefront_Lookups(t *testing.T) {
	ctx := context.Background()
	sf := NewStorefront()

	_, err := sf.ShippingRepository(ctx, "upc-1")
	require.ErrorIs(t, err, domain.ErrShippingRepositoryMissing)

	settings, err := sf.ActivePaymentSettings(ctx, "partner-1")
	require.NoError(t, err)
	require.Nil(t, settings)

	sf.PutShippingRepository(domain.ShippingRepository{Key: "upc-1", Methods: []domain.ShippingMethod{{Code: "ups"}}})
	sf.PutPartnerSettings(domain.PartnerPaymentSettings{PartnerID: "partner-1", BillingEmail: "p@example.com"})

	repo, err := sf.ShippingRepository(ctx, "upc-1")
	require.NoError(t, err)
	require.NotNil(t, repo.MethodByCode("ups"))

	settings, err = sf.ActivePaymentSettings(ctx, "partner-1")
	require.NoError(t, err)
	require.Equal(t, "p@example.com", settings.BillingEmail)
}

func TestSettlementStore(t *testing.T) {
	ctx := context.Background()
	store := NewSettlementStore()

	_, err := store.GetSettlement(ctx, "AP-1")
	require.ErrorIs(t, err, domain.ErrSettlementNotFound)

	require.NoError(t, store.SaveSettlement(ctx, &domain.Settlement{ID: "s-1", PayKey: "AP-1", OrderNumber: "100042"}))

	got, err := store.GetSettlement(ctx, "AP-1")
	require.NoError(t, err)
	require.Equal(t, "100042", got.OrderNumber)

	require.NoError(t, NopPublisher{}.PublishSettled(ctx, got))
}

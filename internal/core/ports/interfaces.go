// Package ports defines the interfaces (ports) for the payment service.
// These are contracts that adapters must implement.
package ports

import (
	"context"
	"time"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentGateway --dir=. --output=./mocks --outpkg=mocks
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=AddressVerifier --dir=. --output=./mocks --outpkg=mocks

// PaymentGateway performs Adaptive Payments operations. Every call is
// recorded in the transaction ledger before it returns.
type PaymentGateway interface {
	// Pay registers a payment and returns the ledger record holding the pay key.
	Pay(ctx context.Context, req domain.PayRequest) (*domain.TransactionRecord, error)

	// PaymentDetails fetches the provider's view of a payment.
	PaymentDetails(ctx context.Context, payKey string) (*domain.PaymentDetails, error)

	// SetPaymentOptions sends the shipping address and itemized basket.
	SetPaymentOptions(ctx context.Context, payKey string, address *domain.Address, basket *domain.Basket) (*domain.TransactionRecord, error)

	// ExecutePayment captures a previously approved payment.
	ExecutePayment(ctx context.Context, payKey string) (*domain.TransactionRecord, error)

	// GetVerifiedStatus looks up the payer account.
	GetVerifiedStatus(ctx context.Context, firstName, lastName, email string) (*domain.AccountStatus, error)

	// Refund refunds a payment in full.
	Refund(ctx context.Context, payKey string) (*domain.TransactionRecord, error)
}

// AddressVerifier confirms a shipping address against the payer's account.
type AddressVerifier interface {
	VerifyAddress(ctx context.Context, email string, address domain.Address) (*domain.AddressMatch, error)
}

// TransactionRepository is the append-only store of ledger records.
type TransactionRepository interface {
	Save(ctx context.Context, record *domain.TransactionRecord) error

	// ListByPayKey returns the records for a pay key, newest first.
	ListByPayKey(ctx context.Context, payKey string) ([]domain.TransactionRecord, error)
}

// TransactionHistory reads ledger records back for reconciliation.
type TransactionHistory interface {
	ListByPayKey(ctx context.Context, payKey string) ([]domain.TransactionRecord, error)
}

// SessionStore holds checkout sessions keyed by the storefront session id.
type SessionStore interface {
	// Get returns domain.ErrSessionNotFound when no session exists.
	Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	Set(ctx context.Context, sessionID string, session *domain.CheckoutSession, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// BasketRepository loads baskets and moves them between open and frozen.
type BasketRepository interface {
	// GetBasket returns domain.ErrBasketNotFound when the basket doesn't exist.
	GetBasket(ctx context.Context, basketID string) (*domain.Basket, error)
	Freeze(ctx context.Context, basketID string) error
	Thaw(ctx context.Context, basketID string) error
	Submit(ctx context.Context, basketID string) error
}

// ShippingRepositoryProvider reads the cached shipping repositories.
type ShippingRepositoryProvider interface {
	// ShippingRepository returns domain.ErrShippingRepositoryMissing when the
	// key is not cached.
	ShippingRepository(ctx context.Context, key string) (*domain.ShippingRepository, error)
}

// PartnerSettingsProvider reads partner payment settings.
type PartnerSettingsProvider interface {
	// ActivePaymentSettings returns nil settings when the partner has none.
	ActivePaymentSettings(ctx context.Context, partnerID string) (*domain.PartnerPaymentSettings, error)
}

// SettlementStore persists settlements with their payment source and event.
type SettlementStore interface {
	SaveSettlement(ctx context.Context, settlement *domain.Settlement) error
	// GetSettlement returns domain.ErrSettlementNotFound for unknown pay keys.
	GetSettlement(ctx context.Context, payKey string) (*domain.Settlement, error)
}

// SettlementPublisher announces settled checkouts to downstream consumers.
type SettlementPublisher interface {
	PublishSettled(ctx context.Context, settlement *domain.Settlement) error
}

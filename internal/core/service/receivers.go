package service

import (
	"github.com/shopspring/decimal"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// BuildReceivers returns the receiver list for a payment of total.
//
// A chained payment makes the platform the primary receiver of the whole
// total and adds the partner for its share. It falls back to a single
// platform receiver when there is no partner, no billing email or no share.
func BuildReceivers(strategy SplitStrategy, platformEmail string, total decimal.Decimal, settings *domain.PartnerPaymentSettings, share decimal.Decimal) []domain.Receiver {
	single := []domain.Receiver{{Email: platformEmail, Amount: total}}

	if strategy != SplitChained || settings == nil || settings.BillingEmail == "" || !share.IsPositive() {
		return single
	}

	return []domain.Receiver{
		{Email: platformEmail, IsPrimary: true, Amount: total},
		{Email: settings.BillingEmail, Amount: share},
	}
}

// Package split computes the fulfillment partner's share of an order.
package split

import (
	"github.com/shopspring/decimal"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

var hundred = decimal.NewFromInt(100)

// Config holds the fixed constants of the revenue split.
type Config struct {
	// ProcessingFee is charged per shipment and comes off the shipping margin.
	ProcessingFee decimal.Decimal
	// PostageHandlingFee is paid to partners that don't pay postage, and
	// withheld from the bank fee of partners that do.
	PostageHandlingFee decimal.Decimal

	BankFeePosition      int
	InsuranceFeePosition int
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		ProcessingFee:        decimal.RequireFromString("0.05"),
		PostageHandlingFee:   decimal.RequireFromString("0.3"),
		BankFeePosition:      1,
		InsuranceFeePosition: 2,
	}
}

// Input is everything the calculation reads.
type Input struct {
	Basket *domain.Basket
	// Shipping may be nil only for prepaid return labels.
	Shipping *domain.ShippingMethod
	Settings *domain.PartnerPaymentSettings
	// PrepaidReturnLabel skips every shipping-cost term.
	PrepaidReturnLabel bool
}

// Calculator computes partner shares.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given constants.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate returns the partner share, clamped to [0, basket total] and
// rounded down to the cent, together with the settlement flags.
//
// Shipping discounts are the offers and vouchers ranged on the shipping
// method. Services discounts are every other discount, taken before
// shipping discounts are zeroed for partners they don't apply to.
func (c *Calculator) Calculate(in Input) (domain.Split, error) {
	var out domain.Split
	if in.Settings == nil {
		return out, nil
	}

	var (
		processingFee              = decimal.Zero
		shippingMargin             = decimal.Zero
		insuranceChargeInclRevenue = decimal.Zero
		shippingChargeInclRevenue  = decimal.Zero
		bankFee                    = decimal.Zero
		share                      = decimal.Zero
		basket                     = in.Basket
		settings                   = in.Settings
		orderTotalExclDiscounts    = basket.TotalExclTaxExclDiscounts
		shippingDiscounts          = basket.ShippingDiscountTotal()
		servicesDiscounts          = basket.TotalDiscount.Sub(shippingDiscounts)
	)

	if !in.PrepaidReturnLabel {
		method := in.Shipping
		if method == nil {
			return out, domain.ErrShippingMethodUnavailable
		}

		processingFee = c.cfg.ProcessingFee
		shippingMargin = method.ShippingRevenue

		bankFeeLine, ok := basket.FeeAt(c.cfg.BankFeePosition)
		if !ok {
			return out, domain.ErrBankFeeLineMissing
		}
		bankFee = bankFeeLine.PriceInclTax

		if _, ok := basket.FeeAt(c.cfg.InsuranceFeePosition); ok {
			insuranceChargeInclRevenue = method.InsuranceCost
			if settings.PaysShippingInsurance {
				share = share.Add(method.InsuranceBaseRate)
				out.PaidShippingInsurance = true
			}
		}

		shippingChargeInclRevenue = method.MethodCost

		if settings.PostagePaidByPartner(method.Carrier) {
			partnerBankFee := decimal.Max(bankFee.Sub(c.cfg.PostageHandlingFee), decimal.Zero)
			share = share.Add(method.PartnerPostageCost).Add(partnerBankFee)
			out.PaidShippingCosts = true
		} else {
			share = share.Add(c.cfg.PostageHandlingFee)
		}
	}

	if !settings.ShippingOffersApply {
		shippingDiscounts = decimal.Zero
	}

	shippingRevenue := decimal.Max(shippingMargin.Sub(processingFee).Sub(shippingDiscounts), decimal.Zero)

	// Insurance earns the partner nothing.
	servicesRevenue := orderTotalExclDiscounts.
		Sub(shippingChargeInclRevenue).
		Sub(insuranceChargeInclRevenue).
		Sub(servicesDiscounts).
		Sub(bankFee)
	servicesRevenue = decimal.Max(servicesRevenue, decimal.Zero)

	share = share.Add(
		shippingRevenue.Mul(settings.ShippingMarginPct).
			Add(servicesRevenue.Mul(settings.ServicesMarginPct)).
			Div(hundred),
	)

	out.PartnerShare = Clamp(share, basket.TotalInclTax)
	return out, nil
}

// Clamp bounds a share to [0, total] and rounds it down to the cent.
func Clamp(share, total decimal.Decimal) decimal.Decimal {
	if share.GreaterThan(total) {
		share = total
	}
	if share.IsNegative() {
		share = decimal.Zero
	}
	return share.RoundFloor(2)
}

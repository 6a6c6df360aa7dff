// Package domain contains the core business entities for the payment service.
// This is the innermost layer - no infrastructure dependencies.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingDiscountRange is the benefit range name that marks an offer or
// voucher as a shipping discount.
const ShippingDiscountRange = "shipping_method"

// BasketStatus is the lifecycle status of a basket as seen by this service.
type BasketStatus string

const (
	BasketOpen      BasketStatus = "Open"
	BasketFrozen    BasketStatus = "Frozen"
	BasketSubmitted BasketStatus = "Submitted"
)

// Basket is an immutable snapshot of the cart at redirect time.
type Basket struct {
	ID     string       `json:"id"`
	Status BasketStatus `json:"status"`

	// PackageUPC identifies the package the basket pays for. It keys the
	// shipping repository cache.
	PackageUPC string `json:"package_upc"`
	PartnerID  string `json:"partner_id"`

	Lines []Line `json:"lines"`

	TotalInclTax              decimal.Decimal `json:"total_incl_tax"`
	TotalExclTaxExclDiscounts decimal.Decimal `json:"total_excl_tax_excl_discounts"`
	TotalDiscount             decimal.Decimal `json:"total_discount"`

	OfferDiscounts    []Discount `json:"offer_discounts"`
	VoucherDiscounts  []Discount `json:"voucher_discounts"`
	ShippingDiscounts []Discount `json:"shipping_discounts"`

	// Fees are position-addressable fee lines (bank fee, insurance fee).
	Fees []FeeLine `json:"fees"`

	ShippingRequired bool `json:"shipping_required"`
}

// Line is a single basket line.
type Line struct {
	ProductID        string          `json:"product_id"`
	UPC              string          `json:"upc"`
	Title            string          `json:"title"`
	UnitPriceInclTax decimal.Decimal `json:"unit_price_incl_tax"`
	Quantity         int             `json:"quantity"`
}

// Discount is one applied offer, voucher or shipping discount.
type Discount struct {
	Name   string          `json:"name"`
	Code   string          `json:"code,omitempty"` // voucher code
	Range  string          `json:"range"`          // benefit range name
	Amount decimal.Decimal `json:"amount"`
}

// FeeLine is a fee line held at a fixed position of the basket.
type FeeLine struct {
	Position     int             `json:"position"`
	Name         string          `json:"name"`
	PriceInclTax decimal.Decimal `json:"price_incl_tax"`
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}

// FeeAt returns the fee line at the given position.
func (b *Basket) FeeAt(position int) (FeeLine, bool) {
	for _, f := range b.Fees {
		if f.Position == position {
			return f, true
		}
	}
	return FeeLine{}, false
}

// ShippingDiscountTotal sums the offers and vouchers whose benefit applies to
// the shipping method.
func (b *Basket) ShippingDiscountTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range b.OfferDiscounts {
		if d.Range == ShippingDiscountRange {
			total = total.Add(d.Amount)
		}
	}
	for _, d := range b.VoucherDiscounts {
		if d.Range == ShippingDiscountRange {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// ShippingMethod is the shipping method selected for the basket.
type ShippingMethod struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Carrier string `json:"carrier"`

	// ShippingRevenue is the platform margin on the shipping charge.
	ShippingRevenue decimal.Decimal `json:"shipping_revenue"`
	// MethodCost is the shipping charge including revenue.
	MethodCost decimal.Decimal `json:"method_cost"`
	// PartnerPostageCost is the postage cost excluding revenue.
	PartnerPostageCost decimal.Decimal `json:"partner_postage_cost"`
	// InsuranceCost is the insurance charge including revenue.
	InsuranceCost     decimal.Decimal `json:"insurance_cost"`
	InsuranceBaseRate decimal.Decimal `json:"insurance_base_rate"`
}

// ShippingRepository is the cached set of shipping methods offered for a package.
type ShippingRepository struct {
	Key     string           `json:"key"`
	Methods []ShippingMethod `json:"methods"`
}

// MethodByCode returns the method with the given code, or nil.
func (r *ShippingRepository) MethodByCode(code string) *ShippingMethod {
	for i := range r.Methods {
		if r.Methods[i].Code == code {
			return &r.Methods[i]
		}
	}
	return nil
}

// PartnerPaymentSettings is the active payment configuration of a fulfillment partner.
type PartnerPaymentSettings struct {
	PartnerID    string `json:"partner_id"`
	BillingEmail string `json:"billing_email"`

	ShippingMarginPct decimal.Decimal `json:"shipping_margin"`
	ServicesMarginPct decimal.Decimal `json:"services_margin"`

	PaysShippingInsurance bool `json:"is_paying_shipping_insurance"`
	ShippingOffersApply   bool `json:"are_shipping_offers_apply"`

	// PostagePaidByCarrier maps a carrier to whether the partner pays its postage.
	PostagePaidByCarrier map[string]bool `json:"postage_paid_by_carrier"`
}

// PostagePaidByPartner reports whether the partner pays postage for the carrier.
func (s *PartnerPaymentSettings) PostagePaidByPartner(carrier string) bool {
	return s.PostagePaidByCarrier[carrier]
}

// Split is the outcome of the revenue split calculation.
type Split struct {
	PartnerShare          decimal.Decimal
	PaidShippingCosts     bool
	PaidShippingInsurance bool
}

// Receiver is one receiver of an adaptive payment.
type Receiver struct {
	Email     string          `json:"email"`
	IsPrimary bool            `json:"is_primary"`
	Amount    decimal.Decimal `json:"amount"`
}

// Address is a postal address as entered on the storefront.
type Address struct {
	Name        string `json:"name"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	CountryCode string `json:"country_code"` // ISO 3166-1 alpha-2
	Phone       string `json:"phone"`
}

// Customer identifies the buyer on the storefront.
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AccountStatus is the result of an account lookup at the provider.
type AccountStatus struct {
	Status    string `json:"status"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// IsVerified reports whether the account is verified.
func (a *AccountStatus) IsVerified() bool {
	return strings.EqualFold(a.Status, "verified")
}

// AddressMatch is the outcome of an address verification call.
type AddressMatch struct {
	ConfirmationCode string
	StreetMatch      string
	ZipMatch         string
	CountryCode      string
}

// PaymentSource records where the money for an order came from.
type PaymentSource struct {
	SourceType      string          `json:"source_type"`
	Currency        string          `json:"currency"`
	AmountAllocated decimal.Decimal `json:"amount_allocated"`
	AmountDebited   decimal.Decimal `json:"amount_debited"`
	Reference       string          `json:"reference"`
}

// PaymentEvent is an event against an order's payment.
type PaymentEvent struct {
	EventType string          `json:"event_type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// Settlement is the local record of a captured adaptive payment.
type Settlement struct {
	ID                    string          `json:"id"`
	BasketID              string          `json:"basket_id"`
	OrderNumber           string          `json:"order_number"`
	PayKey                string          `json:"pay_key"`
	PaymentMethod         string          `json:"payment_method"`
	PartnerShare          decimal.Decimal `json:"partner_share"`
	PaidShippingCosts     bool            `json:"paid_shipping_costs"`
	PaidShippingInsurance bool            `json:"paid_shipping_insurance"`
	Source                PaymentSource   `json:"source"`
	Event                 PaymentEvent    `json:"event"`
	CreatedAt             time.Time       `json:"created_at"`
}

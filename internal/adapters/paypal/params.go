package paypal

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// MaxReceivers is the provider's limit on receivers per payment.
const MaxReceivers = 6

// Pay action types.
const (
	ActionTypePay        = "PAY"
	ActionTypePayPrimary = "PAY_PRIMARY"
)

// Fee payer options.
const (
	FeesPayerSender          = "SENDER"
	FeesPayerPrimaryReceiver = "PRIMARYRECEIVER"
	FeesPayerEachReceiver    = "EACHRECEIVER"
	FeesPayerSecondaryOnly   = "SECONDARYONLY"
)

// Param is a single name/value pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. The provider rejects requests whose
// keys are out of order (error 580001), so it is never a map.
type Params []Param

// Add appends a pair.
func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Masked returns a copy with the values of keys replaced by asterisks.
func (p Params) Masked(keys ...string) Params {
	out := make(Params, len(p))
	copy(out, p)
	for i := range out {
		for _, k := range keys {
			if out[i].Key == k {
				out[i].Value = "***"
			}
		}
	}
	return out
}

// Encode URL-encodes the pairs in order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// withEnvelope appends the parameters every Adaptive request carries.
func withEnvelope(p Params) Params {
	out := make(Params, 0, len(p)+2)
	out = append(out, p...)
	out.Add("requestEnvelope.errorLanguage", "en_US")
	out.Add("requestEnvelope.detailLevel", "ReturnAll")
	return out
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// BuildPay returns the parameters of a Pay call and the payment total: the
// primary receiver's amount for chained payments, the sum otherwise.
func BuildPay(req domain.PayRequest) (Params, decimal.Decimal, error) {
	if err := checkReceivers(req.Receivers); err != nil {
		return nil, decimal.Zero, err
	}

	chained := len(req.Receivers) > 1
	actionType := ActionTypePay
	if chained {
		actionType = ActionTypePayPrimary
	}

	var p Params
	p.Add("actionType", actionType)
	p.Add("currencyCode", req.Currency)
	p.Add("returnUrl", req.ReturnURL)
	p.Add("cancelUrl", req.CancelURL)

	total := decimal.Zero
	for i, r := range req.Receivers {
		amount := r.Amount.Round(2)
		p.Add(fmt.Sprintf("receiverList.receiver(%d).amount", i), formatAmount(amount))
		p.Add(fmt.Sprintf("receiverList.receiver(%d).email", i), r.Email)
		p.Add(fmt.Sprintf("receiverList.receiver(%d).primary", i), strconv.FormatBool(r.IsPrimary))

		switch {
		case !chained:
			total = total.Add(amount)
		case r.IsPrimary:
			total = amount
		}
	}

	if req.FeesPayer != "" {
		p.Add("feesPayer", req.FeesPayer)
	}
	if req.TrackingID != "" {
		p.Add("trackingId", req.TrackingID)
	}

	// The memo carries the order total so the return leg can read it back.
	memo := req.Memo
	if memo == "" {
		memo = formatAmount(total)
	}
	p.Add("memo", memo)

	if req.SenderEmail != "" {
		p.Add("senderEmail", req.SenderEmail)
	}
	if req.IPNURL != "" {
		p.Add("ipnNotificationUrl", req.IPNURL)
	}

	return p, total, nil
}

func checkReceivers(receivers []domain.Receiver) error {
	n := len(receivers)
	if n == 0 || n > MaxReceivers {
		return fmt.Errorf("%w: %d receivers, want 1 to %d", domain.ErrInvalidReceivers, n, MaxReceivers)
	}

	primaries := 0
	for i, r := range receivers {
		if r.Email == "" {
			return fmt.Errorf("%w: receiver %d has no email", domain.ErrInvalidReceivers, i)
		}
		if !r.Amount.IsPositive() {
			return fmt.Errorf("%w: receiver %d amount %s is not positive", domain.ErrInvalidReceivers, i, r.Amount)
		}
		if r.IsPrimary {
			primaries++
		}
	}

	switch {
	case n == 1 && primaries != 0:
		return fmt.Errorf("%w: a single receiver cannot be primary", domain.ErrInvalidReceivers)
	case n > 1 && primaries != 1:
		return fmt.Errorf("%w: chained payment needs exactly one primary receiver, got %d", domain.ErrInvalidReceivers, primaries)
	}
	return nil
}

// BuildSetPaymentOptions returns the parameters that attach the shipping
// address and an itemized basket to a payment. Each discount is its own
// negative-price item.
func BuildSetPaymentOptions(payKey string, address *domain.Address, basket *domain.Basket) Params {
	var p Params
	p.Add("payKey", payKey)
	p.Add("SenderOptions.addressOverride", "false")

	if address != nil {
		p.Add("SenderOptions.shippingAddress.addresseeName", address.Name)
		p.Add("SenderOptions.shippingAddress.street1", address.Line1)
		p.Add("SenderOptions.shippingAddress.street2", address.Line2)
		p.Add("SenderOptions.shippingAddress.city", address.City)
		p.Add("SenderOptions.shippingAddress.state", address.State)
		p.Add("SenderOptions.shippingAddress.zip", address.Postcode)
		p.Add("SenderOptions.shippingAddress.country", address.CountryCode)
		if address.Phone != "" {
			p.Add("SenderOptions.shippingAddress.phone", address.Phone)
		}
	}

	if basket == nil {
		return p
	}

	index := 0
	item := func(field string) string {
		return fmt.Sprintf("receiverOptions[0].invoiceData.item[%d].%s", index, field)
	}

	for _, line := range basket.Lines {
		p.Add(item("name"), line.Title)
		p.Add(item("identifier"), line.UPC)
		p.Add(item("price"), formatAmount(line.UnitPriceInclTax))
		p.Add(item("itemCount"), strconv.Itoa(line.Quantity))
		index++
	}

	discount := func(name string, amount decimal.Decimal) {
		p.Add(item("name"), name)
		p.Add(item("price"), formatAmount(amount.Neg()))
		p.Add(item("itemCount"), "1")
		index++
	}
	for _, d := range basket.OfferDiscounts {
		discount(fmt.Sprintf("Special Offer: %s", d.Name), d.Amount)
	}
	for _, d := range basket.VoucherDiscounts {
		discount(fmt.Sprintf("%s (%s)", d.Name, d.Code), d.Amount)
	}
	for _, d := range basket.ShippingDiscounts {
		discount(fmt.Sprintf("Shipping Offer: %s", d.Name), d.Amount)
	}

	return p
}

// BuildPayKey returns the parameters of calls addressed by pay key alone
// (PaymentDetails, ExecutePayment, Refund).
func BuildPayKey(payKey string) Params {
	var p Params
	p.Add("payKey", payKey)
	return p
}

// BuildGetVerifiedStatus returns the parameters of an account lookup.
func BuildGetVerifiedStatus(firstName, lastName, email string) Params {
	var p Params
	p.Add("firstName", firstName)
	p.Add("lastName", lastName)
	p.Add("accountIdentifier.emailAddress", email)
	p.Add("matchCriteria", "NAME")
	return p
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutState is a state of the checkout state machine.
type CheckoutState string

const (
	StateInitiated           CheckoutState = "Initiated"
	StateRedirected          CheckoutState = "Redirected"
	StateConfirmedByProvider CheckoutState = "ConfirmedByProvider"
	StateSettled             CheckoutState = "Settled"
	StateCancelled           CheckoutState = "Cancelled"
	StateFailed              CheckoutState = "Failed"
)

// IsTerminal reports whether no further transition is possible.
func (s CheckoutState) IsTerminal() bool {
	return s == StateSettled || s == StateCancelled || s == StateFailed
}

// CheckoutSession is the short-lived state of one checkout attempt.
// It is created at redirect time and deleted at settlement, cancellation
// or failure.
type CheckoutSession struct {
	State         CheckoutState
	BasketID      string
	PayKey        string
	CorrelationID string
	PaymentMethod string

	// Amount is the order total sent to the provider. Currency is set
	// when the provider confirms the payment.
	Amount   decimal.Decimal
	Currency string

	PartnerShare          decimal.Decimal
	PaidShippingCosts     bool
	PaidShippingInsurance bool

	CreatedAt time.Time
}

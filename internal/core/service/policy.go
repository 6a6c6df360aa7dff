package service

import (
	"fmt"
	"strings"
	"time"
)

// SplitStrategy decides how many receivers a payment has.
type SplitStrategy string

const (
	// SplitChained pays the platform as primary and forwards the partner share.
	SplitChained SplitStrategy = "chained"
	// SplitSingle pays the platform alone.
	SplitSingle SplitStrategy = "single"
)

// PayerValidation decides what is checked on the provider return leg.
type PayerValidation string

const (
	// PayerValidationAccount requires a verified account whose identity and
	// address match the customer.
	PayerValidationAccount PayerValidation = "account"
	// PayerValidationNone is used for guest and card flows.
	PayerValidationNone PayerValidation = "none"
)

// Policy configures a CheckoutService.
type Policy struct {
	Split           SplitStrategy
	PayerValidation PayerValidation

	// PaymentMethod labels settlements and sessions.
	PaymentMethod string
	Currency      string
	PlatformEmail string
	FeesPayer     string
	IPNURL        string

	// CallbackBaseURL is the storefront host the provider sends buyers back
	// to. A value without a scheme gets one from CallbackHTTPS.
	CallbackBaseURL string
	CallbackHTTPS   bool

	// Itemize sends the address and basket lines after Pay.
	Itemize bool

	SessionTTL time.Duration
}

// DefaultPolicy returns a chained, account-validated policy.
func DefaultPolicy() Policy {
	return Policy{
		Split:           SplitChained,
		PayerValidation: PayerValidationAccount,
		PaymentMethod:   "paypal",
		Currency:        "GBP",
		FeesPayer:       "EACHRECEIVER",
		CallbackHTTPS:   true,
		SessionTTL:      time.Hour,
	}
}

// ReturnURL is where the provider sends the buyer after approval.
func (p Policy) ReturnURL(basketID string) string {
	return fmt.Sprintf("%s/checkout/paypal/preview/%s/", p.callbackRoot(), basketID)
}

// CancelURL is where the provider sends the buyer after cancelling.
func (p Policy) CancelURL(basketID string) string {
	return fmt.Sprintf("%s/checkout/paypal/cancel/%s/", p.callbackRoot(), basketID)
}

func (p Policy) callbackRoot() string {
	base := strings.TrimRight(p.CallbackBaseURL, "/")
	if strings.Contains(base, "://") {
		return base
	}
	scheme := "http"
	if p.CallbackHTTPS {
		scheme = "https"
	}
	return scheme + "://" + base
}

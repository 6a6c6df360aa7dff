// Package domain contains the core business entities for the payment service.
package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy.
var (
	// ErrCommunication is returned when the provider cannot be reached or
	// answers with a non-2xx status.
	ErrCommunication = errors.New("unable to communicate with provider")

	// ErrValidation is the root of local business-rule rejections. They are
	// raised before any provider call.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when a required cached lookup is missing.
	// It indicates a bug or environment problem, not a user error.
	ErrConfiguration = errors.New("configuration error")
)

// Validation failures.
var (
	ErrEmptyBasket               = fmt.Errorf("%w: basket is empty", ErrValidation)
	ErrInvalidBasket             = fmt.Errorf("%w: basket cannot be checked out", ErrValidation)
	ErrMissingShippingAddress    = fmt.Errorf("%w: shipping address must be specified", ErrValidation)
	ErrMissingShippingMethod     = fmt.Errorf("%w: shipping method must be specified", ErrValidation)
	ErrShippingMethodUnavailable = fmt.Errorf("%w: selected shipping method is unavailable", ErrValidation)
	ErrInvalidReceivers          = fmt.Errorf("%w: invalid receiver list", ErrValidation)
	ErrAccountUnavailable        = fmt.Errorf("%w: account status could not be fetched", ErrValidation)
	ErrAccountIncomplete         = fmt.Errorf("%w: account lookup returned incomplete data", ErrValidation)
	ErrAccountUnverified         = fmt.Errorf("%w: account is not verified", ErrValidation)
	ErrIdentityMismatch          = fmt.Errorf("%w: account identity does not match customer", ErrValidation)
	ErrAddressUnavailable        = fmt.Errorf("%w: address could not be verified", ErrValidation)
	ErrEmailNotOnFile            = fmt.Errorf("%w: email address not on file", ErrValidation)
	ErrStreetMismatch            = fmt.Errorf("%w: street address does not match", ErrValidation)
	ErrPostcodeMismatch          = fmt.Errorf("%w: postal code does not match", ErrValidation)
	ErrCountryMismatch           = fmt.Errorf("%w: destination country does not match", ErrValidation)
)

// Configuration failures.
var (
	ErrShippingRepositoryMissing = fmt.Errorf("%w: shipping repository not cached", ErrConfiguration)
	ErrBankFeeLineMissing        = fmt.Errorf("%w: bank fee line missing from basket", ErrConfiguration)
)

// Lookup and state errors returned by stores.
var (
	ErrBasketNotFound     = errors.New("basket not found")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrRecordNotFound     = errors.New("transaction record not found")
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrInvalidTransition  = errors.New("invalid checkout state transition")
	ErrPayKeyMismatch     = errors.New("pay key does not match checkout session")
	ErrSettlementNotSaved = errors.New("settlement could not be persisted")
	ErrStorefront         = errors.New("storefront backend request failed")
	ErrPaymentNotPayable  = errors.New("provider reports payment cannot be completed")
)

// GatewayRejectedError is returned when the provider answered but declined
// the call. The transaction record has always been saved when it is raised.
type GatewayRejectedError struct {
	Action  string
	Code    string
	Message string
	Record  *TransactionRecord
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("%s rejected: error %s - %s", e.Action, e.Code, e.Message)
}

// ServiceError wraps errors with additional context. Code carries the
// failure reason used to pick a recovery route.
type ServiceError struct {
	Err     error
	Message string
	Code    FailureReason
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(err error, message string, code FailureReason) *ServiceError {
	return &ServiceError{Err: err, Message: message, Code: code}
}

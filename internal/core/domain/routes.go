package domain

import "errors"

// FailureReason names why a checkout transition failed.
type FailureReason string

const (
	ReasonCommunication          FailureReason = "GATEWAY_COMMUNICATION"
	ReasonGatewayRejected        FailureReason = "GATEWAY_REJECTED"
	ReasonEmptyBasket            FailureReason = "EMPTY_BASKET"
	ReasonInvalidBasket          FailureReason = "INVALID_BASKET"
	ReasonMissingShippingAddress FailureReason = "MISSING_SHIPPING_ADDRESS"
	ReasonMissingShippingMethod  FailureReason = "MISSING_SHIPPING_METHOD"
	ReasonValidation             FailureReason = "VALIDATION_FAILED"
	ReasonConfiguration          FailureReason = "CONFIGURATION_ERROR"
	ReasonInvalidTransaction     FailureReason = "INVALID_TRANSACTION"
	ReasonPaymentNotTaken        FailureReason = "PAYMENT_NOT_TAKEN"
	ReasonSettlement             FailureReason = "SETTLEMENT_FAILED"
	ReasonInternal               FailureReason = "INTERNAL_ERROR"
)

// Route is a recovery destination on the storefront.
type Route string

const (
	RouteBasket          Route = "basket"
	RouteShippingAddress Route = "shipping-address"
	RouteShippingMethod  Route = "shipping-method"
	RoutePendingReview   Route = "pending-review"
)

var recoveryRoutes = map[FailureReason]Route{
	ReasonCommunication:          RouteBasket,
	ReasonGatewayRejected:        RouteBasket,
	ReasonEmptyBasket:            RouteBasket,
	ReasonInvalidBasket:          RouteBasket,
	ReasonMissingShippingAddress: RouteShippingAddress,
	ReasonMissingShippingMethod:  RouteShippingMethod,
	ReasonValidation:             RoutePendingReview,
	ReasonConfiguration:          RoutePendingReview,
	ReasonInvalidTransaction:     RoutePendingReview,
	ReasonPaymentNotTaken:        RoutePendingReview,
	ReasonSettlement:             RoutePendingReview,
	ReasonInternal:               RoutePendingReview,
}

// RouteFor returns the recovery destination for a failure reason.
func RouteFor(reason FailureReason) Route {
	if route, ok := recoveryRoutes[reason]; ok {
		return route
	}
	return RoutePendingReview
}

// ReasonOf classifies an error into a failure reason.
func ReasonOf(err error) FailureReason {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Code != "" {
		return svcErr.Code
	}

	var rejected *GatewayRejectedError
	switch {
	case errors.As(err, &rejected), errors.Is(err, ErrPaymentNotPayable):
		return ReasonGatewayRejected
	case errors.Is(err, ErrCommunication):
		return ReasonCommunication
	case errors.Is(err, ErrEmptyBasket):
		return ReasonEmptyBasket
	case errors.Is(err, ErrInvalidBasket), errors.Is(err, ErrBasketNotFound):
		return ReasonInvalidBasket
	case errors.Is(err, ErrMissingShippingAddress):
		return ReasonMissingShippingAddress
	case errors.Is(err, ErrMissingShippingMethod), errors.Is(err, ErrShippingMethodUnavailable):
		return ReasonMissingShippingMethod
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrConfiguration):
		return ReasonConfiguration
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrPayKeyMismatch), errors.Is(err, ErrInvalidTransition):
		return ReasonInvalidTransaction
	case errors.Is(err, ErrSettlementNotSaved):
		return ReasonSettlement
	default:
		return ReasonInternal
	}
}

// RouteOf returns the recovery destination for an error.
func RouteOf(err error) Route {
	return RouteFor(ReasonOf(err))
}

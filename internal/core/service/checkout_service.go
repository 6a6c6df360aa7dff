// Package service implements the checkout state machine.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/ports"
	"github.com/fitstack/adaptive-payments/internal/core/split"
)

const (
	returnToStoreSuffix = "_return-to-store"

	sourceTypePayPal = "PayPal"
	eventSettled     = "Settled"

	addressMatched  = "Matched"
	addressNotFound = "None"
)

// Dependencies are the collaborators of a CheckoutService.
type Dependencies struct {
	Gateway     ports.PaymentGateway
	Verifier    ports.AddressVerifier
	History     ports.TransactionHistory
	Sessions    ports.SessionStore
	Baskets     ports.BasketRepository
	Shipping    ports.ShippingRepositoryProvider
	Partners    ports.PartnerSettingsProvider
	Settlements ports.SettlementStore
	Publisher   ports.SettlementPublisher
	Calculator  *split.Calculator
	Logger      *zap.Logger
}

// CheckoutService drives a checkout from redirect to settlement.
type CheckoutService struct {
	policy Policy
	deps   Dependencies
	logger *zap.Logger
	now    func() time.Time
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(policy Policy, deps Dependencies) *CheckoutService {
	if deps.Calculator == nil {
		deps.Calculator = split.NewCalculator(split.DefaultConfig())
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CheckoutService{
		policy: policy,
		deps:   deps,
		logger: deps.Logger,
		now:    time.Now,
	}
}

// InitiateRequest starts a checkout.
type InitiateRequest struct {
	SessionID          string
	BasketID           string
	Customer           domain.Customer
	ShippingAddress    *domain.Address
	ShippingMethodCode string

	// ReturnToStore ships the package back to the store instead of the buyer.
	ReturnToStore bool
	// PrepaidReturnLabel means the buyer already holds a return label.
	PrepaidReturnLabel bool
}

// InitiateResult is where to send the buyer.
type InitiateResult struct {
	RedirectURL   string          `json:"redirect_url"`
	PayKey        string          `json:"pay_key"`
	CorrelationID string          `json:"correlation_id"`
	Amount        decimal.Decimal `json:"amount"`
	PartnerShare  decimal.Decimal `json:"partner_share"`
}

// Initiate moves a checkout from Initiated to Redirected: it splits the
// basket total, creates the payment, freezes the basket and stores the
// session.
func (s *CheckoutService) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	// Step 1: Load and check the basket
	basket, err := s.deps.Baskets.GetBasket(ctx, req.BasketID)
	if err != nil {
		return nil, s.failure(err, "failed to load basket")
	}
	if basket.IsEmpty() {
		return nil, s.failure(domain.ErrEmptyBasket, "basket "+basket.ID)
	}
	if basket.Status != domain.BasketOpen {
		return nil, s.failure(domain.ErrInvalidBasket, fmt.Sprintf("basket %s is %s", basket.ID, basket.Status))
	}

	// Step 2: Resolve the shipping method
	prepaid := req.PrepaidReturnLabel || !basket.ShippingRequired
	if basket.ShippingRequired && !req.ReturnToStore && req.ShippingAddress == nil {
		return nil, s.failure(domain.ErrMissingShippingAddress, "basket "+basket.ID)
	}
	var method *domain.ShippingMethod
	if !prepaid {
		method, err = s.shippingMethod(ctx, basket, req)
		if err != nil {
			return nil, s.failure(err, "basket "+basket.ID)
		}
	}

	// Step 3: Split the total between platform and partner
	var settings *domain.PartnerPaymentSettings
	if s.policy.Split == SplitChained && basket.PartnerID != "" {
		settings, err = s.deps.Partners.ActivePaymentSettings(ctx, basket.PartnerID)
		if err != nil {
			return nil, s.failure(err, "failed to load partner settings")
		}
	}
	out, err := s.deps.Calculator.Calculate(split.Input{
		Basket:             basket,
		Shipping:           method,
		Settings:           settings,
		PrepaidReturnLabel: prepaid,
	})
	if err != nil {
		return nil, s.failure(err, "failed to calculate partner share")
	}

	total := basket.TotalInclTax.Round(2)
	receivers := BuildReceivers(s.policy.Split, s.policy.PlatformEmail, total, settings, out.PartnerShare)

	// Step 4: Create the payment
	rec, err := s.deps.Gateway.Pay(ctx, domain.PayRequest{
		Receivers:  receivers,
		Currency:   s.policy.Currency,
		ReturnURL:  s.policy.ReturnURL(basket.ID),
		CancelURL:  s.policy.CancelURL(basket.ID),
		FeesPayer:  s.policy.FeesPayer,
		TrackingID: uuid.NewString(),
		IPNURL:     s.policy.IPNURL,
	})
	if err != nil {
		return nil, s.failure(err, "failed to create payment")
	}

	if s.policy.Itemize {
		if _, err := s.deps.Gateway.SetPaymentOptions(ctx, rec.PayKey, req.ShippingAddress, basket); err != nil {
			return nil, s.failure(err, "failed to set payment options")
		}
	}

	// Step 5: Freeze the basket and remember the checkout
	if err := s.deps.Baskets.Freeze(ctx, basket.ID); err != nil {
		return nil, s.failure(err, "failed to freeze basket")
	}

	session := &domain.CheckoutSession{
		State:                 domain.StateRedirected,
		BasketID:              basket.ID,
		PayKey:                rec.PayKey,
		CorrelationID:         rec.CorrelationID,
		PaymentMethod:         s.policy.PaymentMethod,
		Amount:                total,
		PartnerShare:          out.PartnerShare,
		PaidShippingCosts:     out.PaidShippingCosts,
		PaidShippingInsurance: out.PaidShippingInsurance,
		CreatedAt:             s.now().UTC(),
	}
	if err := s.deps.Sessions.Set(ctx, req.SessionID, session, s.policy.SessionTTL); err != nil {
		s.thaw(ctx, basket.ID)
		return nil, s.failureWithCode(err, "failed to store checkout session", domain.ReasonInternal)
	}

	s.logger.Info("checkout redirected",
		zap.String("basket_id", basket.ID),
		zap.String("pay_key", rec.PayKey),
		zap.String("amount", total.StringFixed(2)),
		zap.String("partner_share", out.PartnerShare.StringFixed(2)),
		zap.Int("receivers", len(receivers)),
	)

	return &InitiateResult{
		RedirectURL:   rec.RedirectURL(),
		PayKey:        rec.PayKey,
		CorrelationID: rec.CorrelationID,
		Amount:        total,
		PartnerShare:  out.PartnerShare,
	}, nil
}

func (s *CheckoutService) shippingMethod(ctx context.Context, basket *domain.Basket, req InitiateRequest) (*domain.ShippingMethod, error) {
	if req.ShippingMethodCode == "" {
		return nil, domain.ErrMissingShippingMethod
	}

	key := basket.PackageUPC
	if req.ReturnToStore {
		key += returnToStoreSuffix
	}
	repo, err := s.deps.Shipping.ShippingRepository(ctx, key)
	if err != nil {
		return nil, err
	}

	method := repo.MethodByCode(req.ShippingMethodCode)
	if method == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrShippingMethodUnavailable, req.ShippingMethodCode)
	}
	return method, nil
}

// ConfirmRequest is the provider return leg.
type ConfirmRequest struct {
	SessionID       string
	PayKey          string
	Customer        domain.Customer
	ShippingAddress *domain.Address
	ReturnToStore   bool
}

// ConfirmResult is what the buyer reviews before placing the order.
type ConfirmResult struct {
	PayKey   string               `json:"pay_key"`
	Amount   decimal.Decimal      `json:"amount"`
	Currency string               `json:"currency"`
	State    domain.CheckoutState `json:"state"`
}

// Confirm moves a checkout from Redirected to ConfirmedByProvider. Any
// failure thaws the basket and drops the session.
func (s *CheckoutService) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	session, err := s.session(ctx, req.SessionID, req.PayKey, domain.StateRedirected)
	if err != nil {
		return nil, s.failure(err, "cannot confirm checkout")
	}

	details, err := s.deps.Gateway.PaymentDetails(ctx, session.PayKey)
	if err != nil {
		s.abandon(ctx, req.SessionID, session.BasketID)
		return nil, s.failure(err, "failed to fetch payment details")
	}
	if !payableStatus(details.Status) {
		s.abandon(ctx, req.SessionID, session.BasketID)
		return nil, s.failure(fmt.Errorf("%w: status %q", domain.ErrPaymentNotPayable, details.Status), "payment cannot be completed")
	}

	basket, err := s.frozenBasket(ctx, session.BasketID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBasket) {
			s.dropSession(ctx, req.SessionID)
		} else {
			s.abandon(ctx, req.SessionID, session.BasketID)
		}
		return nil, s.failure(err, "failed to load basket")
	}
	if basket.ShippingRequired && !req.ReturnToStore && req.ShippingAddress == nil {
		s.abandon(ctx, req.SessionID, session.BasketID)
		return nil, s.failure(domain.ErrMissingShippingAddress, "basket "+basket.ID)
	}

	if s.policy.PayerValidation == PayerValidationAccount {
		if err := s.validatePayer(ctx, req); err != nil {
			s.abandon(ctx, req.SessionID, session.BasketID)
			s.logger.Info("payer validation failed",
				zap.String("pay_key", session.PayKey),
				zap.Error(err),
			)
			return nil, s.failureWithCode(err, "payer validation failed", domain.ReasonValidation)
		}
	}

	// The memo carries the order total sent with Pay.
	amount, err := decimal.NewFromString(details.Memo)
	if err != nil {
		amount = session.Amount
	}
	currency := details.Currency
	if currency == "" {
		currency = s.policy.Currency
	}

	session.State = domain.StateConfirmedByProvider
	session.Amount = amount
	session.Currency = currency
	if err := s.deps.Sessions.Set(ctx, req.SessionID, session, s.policy.SessionTTL); err != nil {
		s.abandon(ctx, req.SessionID, session.BasketID)
		return nil, s.failureWithCode(err, "failed to store checkout session", domain.ReasonInternal)
	}

	return &ConfirmResult{
		PayKey:   session.PayKey,
		Amount:   amount,
		Currency: currency,
		State:    session.State,
	}, nil
}

// validatePayer checks the payer account and, unless the package goes back
// to the store, the shipping address.
func (s *CheckoutService) validatePayer(ctx context.Context, req ConfirmRequest) error {
	c := req.Customer
	status, err := s.deps.Gateway.GetVerifiedStatus(ctx, c.FirstName, c.LastName, c.Email)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrAccountUnavailable, err)
	}
	if !status.IsVerified() {
		return fmt.Errorf("%w: status %q", domain.ErrAccountUnverified, status.Status)
	}
	if !strings.EqualFold(status.Email, c.Email) ||
		!strings.EqualFold(status.FirstName, c.FirstName) ||
		!strings.EqualFold(status.LastName, c.LastName) {
		return domain.ErrIdentityMismatch
	}

	if req.ReturnToStore || req.ShippingAddress == nil {
		return nil
	}

	match, err := s.deps.Verifier.VerifyAddress(ctx, c.Email, *req.ShippingAddress)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAddressUnavailable, err)
	}
	return CheckAddressMatch(match, *req.ShippingAddress)
}

// CheckAddressMatch validates the result of an address verification.
func CheckAddressMatch(match *domain.AddressMatch, address domain.Address) error {
	switch {
	case match.StreetMatch == addressNotFound:
		return domain.ErrEmailNotOnFile
	case match.StreetMatch != addressMatched:
		return domain.ErrStreetMismatch
	case match.ZipMatch != addressMatched:
		return domain.ErrPostcodeMismatch
	case !strings.EqualFold(match.CountryCode, address.CountryCode):
		return domain.ErrCountryMismatch
	}
	return nil
}

// SettleRequest places the order.
type SettleRequest struct {
	SessionID   string
	PayKey      string
	OrderNumber string
}

// SettleResult is the settled checkout.
type SettleResult struct {
	Settlement *domain.Settlement        `json:"settlement"`
	Record     *domain.TransactionRecord `json:"record"`
}

// Settle moves a checkout from ConfirmedByProvider to Settled: it captures
// the payment, persists the settlement and drops the session.
func (s *CheckoutService) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	session, err := s.session(ctx, req.SessionID, req.PayKey, domain.StateConfirmedByProvider)
	if err != nil {
		return nil, s.failure(err, "cannot settle checkout")
	}

	if _, err := s.frozenBasket(ctx, session.BasketID); err != nil {
		if errors.Is(err, domain.ErrInvalidBasket) {
			s.dropSession(ctx, req.SessionID)
		}
		return nil, s.failure(err, "basket cannot be settled")
	}

	rec, err := s.deps.Gateway.ExecutePayment(ctx, session.PayKey)
	if err != nil {
		s.abandon(ctx, req.SessionID, session.BasketID)
		return nil, s.failureWithCode(err, "payment was not taken", domain.ReasonPaymentNotTaken)
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = session.BasketID
	}
	settlement := &domain.Settlement{
		ID:                    uuid.NewString(),
		BasketID:              session.BasketID,
		OrderNumber:           orderNumber,
		PayKey:                session.PayKey,
		PaymentMethod:         session.PaymentMethod,
		PartnerShare:          session.PartnerShare,
		PaidShippingCosts:     session.PaidShippingCosts,
		PaidShippingInsurance: session.PaidShippingInsurance,
		Source: domain.PaymentSource{
			SourceType:      sourceTypePayPal,
			Currency:        session.Currency,
			AmountAllocated: session.Amount,
			AmountDebited:   session.Amount,
			Reference:       session.PayKey,
		},
		Event: domain.PaymentEvent{
			EventType: eventSettled,
			Amount:    session.Amount,
			Reference: rec.CorrelationID,
		},
		CreatedAt: s.now().UTC(),
	}

	// The money has moved from here on. Failures are logged for manual
	// review and the basket stays frozen.
	if err := s.deps.Settlements.SaveSettlement(ctx, settlement); err != nil {
		s.logger.Error("payment captured but settlement not saved",
			zap.String("pay_key", session.PayKey),
			zap.String("basket_id", session.BasketID),
			zap.String("amount", session.Amount.StringFixed(2)),
			zap.String("partner_share", session.PartnerShare.StringFixed(2)),
			zap.Error(err),
		)
		s.dropSession(ctx, req.SessionID)
		return nil, s.failureWithCode(fmt.Errorf("%w: %v", domain.ErrSettlementNotSaved, err), "settlement failed", domain.ReasonSettlement)
	}

	if err := s.deps.Baskets.Submit(ctx, session.BasketID); err != nil {
		s.logger.Error("settled basket not submitted",
			zap.String("pay_key", session.PayKey),
			zap.String("basket_id", session.BasketID),
			zap.Error(err),
		)
	}

	s.dropSession(ctx, req.SessionID)

	if err := s.deps.Publisher.PublishSettled(ctx, settlement); err != nil {
		s.logger.Warn("failed to publish settlement",
			zap.String("pay_key", session.PayKey),
			zap.Error(err),
		)
	}

	s.logger.Info("checkout settled",
		zap.String("pay_key", session.PayKey),
		zap.String("order_number", orderNumber),
		zap.String("amount", session.Amount.StringFixed(2)),
	)

	return &SettleResult{Settlement: settlement, Record: rec}, nil
}

// CancelRequest is an explicit cancellation from the provider.
type CancelRequest struct {
	SessionID string
	BasketID  string
}

// Cancel thaws the basket and drops the session. It never calls the provider.
func (s *CheckoutService) Cancel(ctx context.Context, req CancelRequest) (domain.Route, error) {
	basketID := req.BasketID
	session, err := s.deps.Sessions.Get(ctx, req.SessionID)
	switch {
	case err == nil:
		basketID = session.BasketID
	case !errors.Is(err, domain.ErrSessionNotFound):
		return "", s.failureWithCode(err, "failed to load checkout session", domain.ReasonInternal)
	}
	if basketID == "" {
		return "", s.failure(domain.ErrSessionNotFound, "nothing to cancel")
	}

	basket, err := s.deps.Baskets.GetBasket(ctx, basketID)
	if err != nil {
		return "", s.failure(err, "failed to load basket")
	}
	if basket.Status == domain.BasketFrozen {
		if err := s.deps.Baskets.Thaw(ctx, basketID); err != nil {
			return "", s.failure(err, "failed to thaw basket")
		}
	}
	s.dropSession(ctx, req.SessionID)

	s.logger.Info("checkout cancelled", zap.String("basket_id", basketID))
	return domain.RouteBasket, nil
}

// LookupAccount returns the provider's view of a payer account.
func (s *CheckoutService) LookupAccount(ctx context.Context, firstName, lastName, email string) (*domain.AccountStatus, error) {
	status, err := s.deps.Gateway.GetVerifiedStatus(ctx, firstName, lastName, email)
	if err != nil {
		return nil, s.failure(err, "account lookup failed")
	}
	return status, nil
}

// Refund refunds a settled payment in full.
func (s *CheckoutService) Refund(ctx context.Context, payKey string) (*domain.TransactionRecord, error) {
	rec, err := s.deps.Gateway.Refund(ctx, payKey)
	if err != nil {
		return nil, s.failure(err, "refund failed")
	}
	s.logger.Info("payment refunded", zap.String("pay_key", payKey))
	return rec, nil
}

// Transactions lists the ledger records of a pay key, newest first.
func (s *CheckoutService) Transactions(ctx context.Context, payKey string) ([]domain.TransactionRecord, error) {
	records, err := s.deps.History.ListByPayKey(ctx, payKey)
	if err != nil {
		return nil, s.failureWithCode(err, "failed to list transactions", domain.ReasonInternal)
	}
	return records, nil
}

// Settlement returns the settlement recorded for a pay key.
func (s *CheckoutService) Settlement(ctx context.Context, payKey string) (*domain.Settlement, error) {
	settlement, err := s.deps.Settlements.GetSettlement(ctx, payKey)
	if err != nil {
		return nil, s.failureWithCode(err, "failed to load settlement", domain.ReasonInternal)
	}
	return settlement, nil
}

// session loads a session and checks its state and pay key.
func (s *CheckoutService) session(ctx context.Context, sessionID, payKey string, want domain.CheckoutState) (*domain.CheckoutSession, error) {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != want {
		return nil, fmt.Errorf("%w: session is %s, want %s", domain.ErrInvalidTransition, session.State, want)
	}
	if payKey != "" && payKey != session.PayKey {
		return nil, domain.ErrPayKeyMismatch
	}
	return session, nil
}

// frozenBasket loads a basket that must still be frozen by its checkout.
func (s *CheckoutService) frozenBasket(ctx context.Context, basketID string) (*domain.Basket, error) {
	basket, err := s.deps.Baskets.GetBasket(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.Status != domain.BasketFrozen {
		return nil, fmt.Errorf("%w: basket %s is %s", domain.ErrInvalidBasket, basket.ID, basket.Status)
	}
	return basket, nil
}

// payableStatus reports whether a PaymentDetails status can still lead to
// a captured payment.
func payableStatus(status string) bool {
	switch strings.ToUpper(status) {
	case domain.ExecStatusCreated, domain.ExecStatusIncomplete, domain.ExecStatusCompleted:
		return true
	}
	return false
}

// abandon thaws the basket and drops the session after a failure before
// settlement.
func (s *CheckoutService) abandon(ctx context.Context, sessionID, basketID string) {
	s.thaw(ctx, basketID)
	s.dropSession(ctx, sessionID)
}

func (s *CheckoutService) thaw(ctx context.Context, basketID string) {
	if err := s.deps.Baskets.Thaw(ctx, basketID); err != nil {
		s.logger.Warn("failed to thaw basket", zap.String("basket_id", basketID), zap.Error(err))
	}
}

func (s *CheckoutService) dropSession(ctx context.Context, sessionID string) {
	if err := s.deps.Sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to delete checkout session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *CheckoutService) failure(err error, message string) error {
	return s.failureWithCode(err, message, domain.ReasonOf(err))
}

func (s *CheckoutService) failureWithCode(err error, message string, code domain.FailureReason) error {
	s.logger.Debug("checkout step failed",
		zap.String("reason", string(code)),
		zap.String("route", string(domain.RouteFor(code))),
		zap.Error(err),
	)
	return domain.NewServiceError(err, message, code)
}

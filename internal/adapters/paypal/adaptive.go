package paypal

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/ledger"
)

const (
	sandboxServicesURL = "https://svcs.sandbox.paypal.com"
	liveServicesURL    = "https://svcs.paypal.com"

	familyPayments = "AdaptivePayments"
	familyAccounts = "AdaptiveAccounts"
)

// Config is the immutable provider configuration.
type Config struct {
	Username      string
	Password      string
	Signature     string
	ApplicationID string
	Sandbox       bool

	// BaseURL overrides the services host, e.g. for a local stub.
	BaseURL string
	// NVPURL overrides the classic NVP endpoint.
	NVPURL string
	// Version is the classic NVP API version.
	Version string
}

func (c Config) servicesURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Sandbox {
		return sandboxServicesURL
	}
	return liveServicesURL
}

func (c Config) endpoint(family, action string) string {
	return fmt.Sprintf("%s/%s/%s", c.servicesURL(), family, action)
}

func (c Config) headers() map[string]string {
	return map[string]string{
		"X-PAYPAL-SECURITY-USERID":      c.Username,
		"X-PAYPAL-SECURITY-PASSWORD":    c.Password,
		"X-PAYPAL-SECURITY-SIGNATURE":   c.Signature,
		"X-PAYPAL-APPLICATION-ID":       c.ApplicationID,
		"X-PAYPAL-REQUEST-DATA-FORMAT":  "NV",
		"X-PAYPAL-RESPONSE-DATA-FORMAT": "NV",
	}
}

// Recorder writes ledger records for provider responses.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) (*domain.TransactionRecord, error)
}

// AdaptiveGateway implements ports.PaymentGateway over the Adaptive
// Payments NVP API. Every answered call is recorded before it returns.
type AdaptiveGateway struct {
	cfg    Config
	client *Client
	ledger Recorder
	logger *zap.Logger
}

// NewAdaptiveGateway creates a gateway.
func NewAdaptiveGateway(cfg Config, client *Client, recorder Recorder, logger *zap.Logger) *AdaptiveGateway {
	return &AdaptiveGateway{
		cfg:    cfg,
		client: client,
		ledger: recorder,
		logger: logger,
	}
}

// Pay registers a payment. The returned record holds the pay key.
func (g *AdaptiveGateway) Pay(ctx context.Context, req domain.PayRequest) (*domain.TransactionRecord, error) {
	params, total, err := BuildPay(req)
	if err != nil {
		return nil, err
	}

	rec, err := g.call(ctx, familyPayments, domain.ActionPay, params, &total, req.Currency)
	if err != nil {
		return nil, err
	}

	g.logger.Info("payment created",
		zap.String("pay_key", rec.PayKey),
		zap.String("correlation_id", rec.CorrelationID),
		zap.String("amount", total.StringFixed(2)),
		zap.Int("receivers", len(req.Receivers)),
	)
	return rec, nil
}

// PaymentDetails fetches the provider's view of a payment.
func (g *AdaptiveGateway) PaymentDetails(ctx context.Context, payKey string) (*domain.PaymentDetails, error) {
	res, rec, err := g.callRaw(ctx, familyPayments, domain.ActionPaymentDetails, BuildPayKey(payKey), nil, "")
	if err != nil {
		return nil, err
	}

	return &domain.PaymentDetails{
		Record:      rec,
		Status:      res.Pairs["status"],
		Currency:    res.Pairs["currencyCode"],
		Memo:        res.Pairs["memo"],
		SenderEmail: res.Pairs["senderEmail"],
	}, nil
}

// SetPaymentOptions attaches the shipping address and itemized basket.
func (g *AdaptiveGateway) SetPaymentOptions(ctx context.Context, payKey string, address *domain.Address, basket *domain.Basket) (*domain.TransactionRecord, error) {
	return g.call(ctx, familyPayments, domain.ActionSetPaymentOptions, BuildSetPaymentOptions(payKey, address, basket), nil, "")
}

// ExecutePayment captures an approved payment.
func (g *AdaptiveGateway) ExecutePayment(ctx context.Context, payKey string) (*domain.TransactionRecord, error) {
	rec, err := g.call(ctx, familyPayments, domain.ActionExecutePayment, BuildPayKey(payKey), nil, "")
	if err != nil {
		return nil, err
	}

	g.logger.Info("payment executed",
		zap.String("pay_key", payKey),
		zap.String("correlation_id", rec.CorrelationID),
		zap.String("exec_status", rec.PaymentExecStatus),
	)
	return rec, nil
}

// Refund refunds every receiver of a payment in full.
func (g *AdaptiveGateway) Refund(ctx context.Context, payKey string) (*domain.TransactionRecord, error) {
	return g.call(ctx, familyPayments, domain.ActionRefund, BuildPayKey(payKey), nil, "")
}

// GetVerifiedStatus looks up a payer account by name and email. All four
// returned fields must be present.
func (g *AdaptiveGateway) GetVerifiedStatus(ctx context.Context, firstName, lastName, email string) (*domain.AccountStatus, error) {
	res, _, err := g.callRaw(ctx, familyAccounts, domain.ActionGetVerifiedStatus, BuildGetVerifiedStatus(firstName, lastName, email), nil, "")
	if err != nil {
		return nil, err
	}

	status := &domain.AccountStatus{
		Status:    res.Pairs["accountStatus"],
		Email:     res.Pairs["userInfo.emailAddress"],
		FirstName: res.Pairs["userInfo.name.firstName"],
		LastName:  res.Pairs["userInfo.name.lastName"],
	}
	if status.Status == "" || status.Email == "" || status.FirstName == "" || status.LastName == "" {
		return nil, domain.ErrAccountIncomplete
	}
	return status, nil
}

func (g *AdaptiveGateway) call(ctx context.Context, family, action string, params Params, amount *decimal.Decimal, currency string) (*domain.TransactionRecord, error) {
	_, rec, err := g.callRaw(ctx, family, action, params, amount, currency)
	return rec, err
}

func (g *AdaptiveGateway) callRaw(ctx context.Context, family, action string, params Params, amount *decimal.Decimal, currency string) (*Response, *domain.TransactionRecord, error) {
	res, err := g.client.Post(ctx, g.cfg.endpoint(family, action), withEnvelope(params), g.cfg.headers())
	if err != nil {
		g.logger.Error("provider call failed",
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if res.ParseErr != nil {
		g.logger.Warn("provider response not fully decoded",
			zap.String("action", action),
			zap.Error(res.ParseErr),
		)
	}

	rec, err := g.ledger.Record(ctx, ledger.Entry{
		Action:      action,
		IsSandbox:   g.cfg.Sandbox,
		Pairs:       res.Pairs,
		RawRequest:  res.RawRequest,
		RawResponse: res.RawResponse,
		Elapsed:     res.Elapsed,
		Amount:      amount,
		Currency:    currency,
	})
	return res, rec, err
}

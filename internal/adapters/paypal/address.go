package paypal

import (
	"context"

	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
	"github.com/fitstack/adaptive-payments/internal/core/ledger"
)

const (
	sandboxNVPURL = "https://api-3t.sandbox.paypal.com/nvp"
	liveNVPURL    = "https://api-3t.paypal.com/nvp"

	defaultNVPVersion = "204.0"
)

func (c Config) nvpURL() string {
	switch {
	case c.NVPURL != "":
		return c.NVPURL
	case c.Sandbox:
		return sandboxNVPURL
	default:
		return liveNVPURL
	}
}

// AddressVerifier confirms a shipping address with the classic NVP
// AddressVerify call. Credentials travel in the body on this API.
type AddressVerifier struct {
	cfg    Config
	client *Client
	ledger Recorder
	logger *zap.Logger
}

// NewAddressVerifier creates an address verifier.
func NewAddressVerifier(cfg Config, client *Client, recorder Recorder, logger *zap.Logger) *AddressVerifier {
	return &AddressVerifier{cfg: cfg, client: client, ledger: recorder, logger: logger}
}

// BuildAddressVerify returns the parameters of an AddressVerify call.
func BuildAddressVerify(cfg Config, email string, address domain.Address) Params {
	version := cfg.Version
	if version == "" {
		version = defaultNVPVersion
	}

	var p Params
	p.Add("METHOD", domain.ActionAddressVerify)
	p.Add("VERSION", version)
	p.Add("USER", cfg.Username)
	p.Add("PWD", cfg.Password)
	p.Add("SIGNATURE", cfg.Signature)
	p.Add("EMAIL", email)
	p.Add("STREET", address.Line1)
	p.Add("ZIP", address.Postcode)
	return p
}

// VerifyAddress returns the provider's match codes for email and address.
func (v *AddressVerifier) VerifyAddress(ctx context.Context, email string, address domain.Address) (*domain.AddressMatch, error) {
	params := BuildAddressVerify(v.cfg, email, address)
	res, err := v.client.Post(ctx, v.cfg.nvpURL(), params, nil)
	if err != nil {
		v.logger.Error("address verification call failed", zap.Error(err))
		return nil, err
	}
	if res.ParseErr != nil {
		v.logger.Warn("address verification response not fully decoded", zap.Error(res.ParseErr))
	}

	if _, err := v.ledger.Record(ctx, ledger.Entry{
		Action:      domain.ActionAddressVerify,
		IsSandbox:   v.cfg.Sandbox,
		Pairs:       res.Pairs,
		RawRequest:  params.Masked("PWD", "SIGNATURE").Encode(),
		RawResponse: res.RawResponse,
		Elapsed:     res.Elapsed,
	}); err != nil {
		return nil, err
	}

	return &domain.AddressMatch{
		ConfirmationCode: res.Pairs["CONFIRMATIONCODE"],
		StreetMatch:      res.Pairs["STREETMATCH"],
		ZipMatch:         res.Pairs["ZIPMATCH"],
		CountryCode:      res.Pairs["COUNTRYCODE"],
	}, nil
}

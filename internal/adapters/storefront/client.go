// Package storefront provides the HTTP client for the storefront backend,
// which owns baskets, shipping repositories and partner settings.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

const apiKeyHeader = "X-Internal-API-Key"

// Client implements the basket, shipping and partner settings ports.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new storefront backend client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetBasket loads a basket snapshot.
// GET /api/v1/internal/baskets/:id/
func (c *Client) GetBasket(ctx context.Context, basketID string) (*domain.Basket, error) {
	var basket domain.Basket
	status, err := c.do(ctx, http.MethodGet, "/api/v1/internal/baskets/"+url.PathEscape(basketID)+"/", &basket)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrBasketNotFound
	}
	return &basket, nil
}

// Freeze locks a basket against edits.
// POST /api/v1/internal/baskets/:id/freeze/
func (c *Client) Freeze(ctx context.Context, basketID string) error {
	return c.transition(ctx, basketID, "freeze")
}

// Thaw makes a frozen basket editable again.
func (c *Client) Thaw(ctx context.Context, basketID string) error {
	return c.transition(ctx, basketID, "thaw")
}

// Submit marks a frozen basket as ordered.
func (c *Client) Submit(ctx context.Context, basketID string) error {
	return c.transition(ctx, basketID, "submit")
}

func (c *Client) transition(ctx context.Context, basketID, action string) error {
	path := fmt.Sprintf("/api/v1/internal/baskets/%s/%s/", url.PathEscape(basketID), action)
	status, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNotFound:
		return domain.ErrBasketNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: cannot %s basket %s", domain.ErrInvalidBasket, action, basketID)
	}
	return nil
}

// ShippingRepository returns the cached shipping methods for a key.
// GET /api/v1/internal/shipping-repositories/:key/
func (c *Client) ShippingRepository(ctx context.Context, key string) (*domain.ShippingRepository, error) {
	var repo domain.ShippingRepository
	status, err := c.do(ctx, http.MethodGet, "/api/v1/internal/shipping-repositories/"+url.PathEscape(key)+"/", &repo)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrShippingRepositoryMissing, key)
	}
	return &repo, nil
}

// ActivePaymentSettings returns nil when the partner has no active settings.
// GET /api/v1/internal/partners/:id/payment-settings/
func (c *Client) ActivePaymentSettings(ctx context.Context, partnerID string) (*domain.PartnerPaymentSettings, error) {
	var settings domain.PartnerPaymentSettings
	status, err := c.do(ctx, http.MethodGet, "/api/v1/internal/partners/"+url.PathEscape(partnerID)+"/payment-settings/", &settings)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &settings, nil
}

// do sends a request and decodes a 2xx body into out. A 404 or 409 is
// returned as a status for the caller to interpret.
func (c *Client) do(ctx context.Context, method, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %v", domain.ErrStorefront, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("storefront request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: %v", domain.ErrStorefront, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w: storefront returned status %d: %s", domain.ErrStorefront, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", domain.ErrStorefront, err)
		}
	}
	return resp.StatusCode, nil
}

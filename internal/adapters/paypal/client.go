// Package paypal talks to the PayPal Adaptive Payments and classic NVP APIs.
package paypal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

const contentTypeNameValue = "text/namevalue; charset=utf-8"

// Response is a decoded name/value response plus audit data.
type Response struct {
	Pairs       map[string]string
	RawRequest  string
	RawResponse string
	Elapsed     time.Duration

	// ParseErr is the first pair that could not be decoded. The raw text
	// of that pair is kept in Pairs.
	ParseErr error
}

// Client posts ordered name/value requests. It does not retry and does not persist.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given request timeout. A
// non-positive timeout falls back to 30 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post sends params to endpoint. Transport failures, non-2xx statuses and
// unreadable bodies are returned as domain.ErrCommunication. A 2xx body that
// does not decode cleanly is still returned so it can be recorded.
func (c *Client) Post(ctx context.Context, endpoint string, params Params, headers map[string]string) (*Response, error) {
	payload := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrCommunication, err)
	}
	req.Header.Set("Content-Type", contentTypeNameValue)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCommunication, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrCommunication, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrCommunication, resp.StatusCode)
	}

	pairs, parseErr := parseNameValue(string(body))

	return &Response{
		Pairs:       pairs,
		RawRequest:  payload,
		RawResponse: string(body),
		Elapsed:     elapsed,
		ParseErr:    parseErr,
	}, nil
}

// parseNameValue decodes an NVP body. The first value of a repeated name
// wins. Pairs with bad escapes keep their raw text.
func parseNameValue(body string) (map[string]string, error) {
	pairs := make(map[string]string)
	var firstErr error
	for _, part := range strings.Split(body, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
			if firstErr == nil {
				firstErr = fmt.Errorf("name %q: %w", rawKey, err)
			}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			value = strings.ReplaceAll(rawValue, "+", " ")
			if firstErr == nil {
				firstErr = fmt.Errorf("value of %q: %w", key, err)
			}
		}
		if _, seen := pairs[key]; !seen {
			pairs[key] = value
		}
	}
	return pairs, firstErr
}

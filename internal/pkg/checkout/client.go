package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is an HTTP client for the checkout provider's detail-retrieval API.
// It is used to enrich a confirmed transaction with the charge id; failures
// are non-fatal for reconciliation.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// SessionDetails carries enrichment data for a completed checkout session.
type SessionDetails struct {
	SessionID     string `json:"id"`
	ChargeID      string `json:"charge_id"`
	PaymentMethod string `json:"payment_method"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// NewClient creates a checkout provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// SessionDetails fetches enrichment data for a payment reference. The
// optional connectedAccountID scopes the lookup to a connected account.
func (c *Client) SessionDetails(ctx context.Context, paymentRef, connectedAccountID string) (*SessionDetails, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("checkout lookup error: client is nil")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, fmt.Errorf("checkout lookup config error: base_url is empty")
	}
	if strings.TrimSpace(paymentRef) == "" {
		return nil, fmt.Errorf("checkout lookup error: payment reference is empty")
	}

	endpoint := c.baseURL + "/v1/sessions/" + url.PathEscape(paymentRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("checkout lookup request error: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if connectedAccountID != "" {
		req.Header.Set("X-Connected-Account", connectedAccountID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout lookup request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("checkout lookup http error: status=%d body=<failed to read body: %v>", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("checkout lookup http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var details SessionDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("checkout lookup decode error: %w", err)
	}

	return &details, nil
}

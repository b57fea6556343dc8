package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultStripeEndpoint = "https://api.stripe.com/v1"

// BillingClient creates customers at the external billing provider.
// Registration treats it as best-effort: when the provider is down the
// account and its local subscription are still created, just without
// the external reference.
type BillingClient interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
}

// StripeClient is a narrow Stripe API client covering only what
// account provisioning needs.
type StripeClient struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func NewStripeClient(apiKey, endpoint string) *StripeClient {
	if endpoint == "" {
		endpoint = defaultStripeEndpoint
	}
	return &StripeClient{
		APIKey:   apiKey,
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCustomer registers the email with the billing provider and
// returns the provider's customer id.
func (c *StripeClient) CreateCustomer(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Endpoint+"/customers", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("billing: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("billing: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("billing: decode response: %w", err)
	}
	return out.ID, nil
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

var _ Gateway = (*Client)(nil)

// ClientConfig configures the payment provider HTTP client.
type ClientConfig struct {
	// BaseURL is the provider's API root, e.g. https://api.pay.example.com.
	BaseURL string
	// SecretKey authenticates session creation requests.
	SecretKey string
	// SuccessURL and CancelURL are where the provider sends the client
	// after the hosted checkout completes or is abandoned.
	SuccessURL string
	CancelURL  string
	// Timeout bounds a single session creation call. Zero means 10s.
	Timeout time.Duration
}

// Client implements Gateway against a hosted-checkout session API.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient creates a payment Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// sessionRequest is the provider's session creation payload.
type sessionRequest struct {
	ClientReference string     `json:"client_reference_id"`
	CustomerName    string     `json:"customer_name,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	LineItems       []LineItem `json:"line_items"`
	SuccessURL      string     `json:"success_url"`
	CancelURL       string     `json:"cancel_url"`
}

// CreateRedirect creates a payment session and returns its hosted URL.
// Transport failures and provider 5xx responses map to ErrUnavailable so the
// caller can distinguish a recoverable provider outage from a bad request.
func (c *Client) CreateRedirect(ctx context.Context, orderID string, customer Customer, items []LineItem) (string, error) {
	body, err := json.Marshal(sessionRequest{
		ClientReference: orderID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		LineItems:       items,
		SuccessURL:      c.cfg.SuccessURL,
		CancelURL:       c.cfg.CancelURL,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal session request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build session request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", errors.Wrapf(ErrUnavailable, "provider returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return "", errors.Errorf("create payment session: unexpected status %d", resp.StatusCode)
	}

	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return "", errors.Wrap(err, "decode session response")
	}
	if sess.URL == "" {
		return "", errors.New("create payment session: empty redirect url")
	}
	return sess.URL, nil
}

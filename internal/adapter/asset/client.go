package asset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crowdfund-escrow/internal/core/domain"
)

// Client talks to an external token service exposing the API served by
// NewHandler.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset service url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("asset service url %q must be absolute", baseURL)
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// Transfer posts a transfer and succeeds only on a 2xx answer.
func (c *Client) Transfer(ctx context.Context, token, from, to domain.Address, amount domain.Amount) error {
	return c.post(ctx, token, "transfers", TransferRequest{From: from, To: to, Amount: amount})
}

// Mint asks the service to credit amount of token to an address. Only
// development services accept it.
func (c *Client) Mint(ctx context.Context, token, to domain.Address, amount domain.Amount) error {
	return c.post(ctx, token, "mint", TransferRequest{To: to, Amount: amount})
}

func (c *Client) post(ctx context.Context, token domain.Address, action string, payload TransferRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := c.base.JoinPath("tokens", token.String(), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("asset %s: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeError(resp)
}

// Balance fetches the balance of addr in token.
func (c *Client) Balance(ctx context.Context, token, addr domain.Address) (domain.Amount, error) {
	endpoint := c.base.JoinPath("tokens", token.String(), "balances", addr.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("asset balance: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, decodeError(resp)
	}
	var out BalanceResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	return out.Balance, nil
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("asset service: %s: %w", msg, ErrInsufficientFunds)
	}
	return errors.New("asset service: " + msg)
}

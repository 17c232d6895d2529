// Package payos is a thin client for the PayOS merchant API.
package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
)

const successCode = "00"

var (
	ErrNotConfigured    = errors.New("payos credentials not configured")
	ErrInvalidSignature = errors.New("payos signature mismatch")
	ErrMissingFields    = errors.New("payos request missing required fields")
)

// APIError carries the provider's reply for a failed call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payos: status %d: %s", e.StatusCode, e.Body)
}

type CheckoutRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
	CancelURL   string
	ReturnURL   string
}

// PaymentStatus is the upper-cased provider status plus the raw data object.
type PaymentStatus struct {
	Status string
	Raw    json.RawMessage
}

type envelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature,omitempty"`
}

type Client struct {
	clientID    string
	apiKey      string
	checksumKey string
	baseURL     string
	cancelURL   string
	returnURL   string
	http        *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		clientID:    cfg.PayOSClientID,
		apiKey:      cfg.PayOSAPIKey,
		checksumKey: cfg.PayOSChecksumKey,
		baseURL:     strings.TrimRight(cfg.PayOSBaseURL, "/"),
		cancelURL:   cfg.PayOSCancelURL,
		returnURL:   cfg.PayOSReturnURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) configured() bool {
	return c.clientID != "" && c.apiKey != "" && c.checksumKey != ""
}

// CreatePaymentLink creates a checkout and returns the provider reply verbatim.
func (c *Client) CreatePaymentLink(ctx context.Context, req CheckoutRequest) (json.RawMessage, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	if req.CancelURL == "" {
		req.CancelURL = c.cancelURL
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.returnURL
	}
	if req.OrderCode == 0 || req.Amount <= 0 || req.Description == "" || req.CancelURL == "" || req.ReturnURL == "" {
		return nil, ErrMissingFields
	}

	data := "amount=" + strconv.FormatInt(req.Amount, 10) +
		"&cancelUrl=" + req.CancelURL +
		"&description=" + req.Description +
		"&orderCode=" + strconv.FormatInt(req.OrderCode, 10) +
		"&returnUrl=" + req.ReturnURL

	payload, err := json.Marshal(map[string]interface{}{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"cancelUrl":   req.CancelURL,
		"returnUrl":   req.ReturnURL,
		"signature":   Sign(data, c.checksumKey),
	})
	if err != nil {
		return nil, err
	}

	raw, env, err := c.do(ctx, http.MethodPost, "/v2/payment-requests", payload)
	if err != nil {
		return nil, err
	}
	if env.Code != successCode {
		return nil, &APIError{StatusCode: http.StatusOK, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, orderCode string) (*PaymentStatus, error) {
	if c.clientID == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if orderCode == "" {
		return nil, ErrMissingFields
	}

	raw, env, err := c.do(ctx, http.MethodGet, "/v2/payment-requests/"+orderCode, nil)
	if err != nil {
		return nil, err
	}
	if env.Code != "" && env.Code != successCode {
		return nil, &APIError{StatusCode: http.StatusOK, Body: string(raw)}
	}

	var data struct {
		Status string `json:"status"`
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("payos decode status: %w", err)
		}
	}
	return &PaymentStatus{Status: strings.ToUpper(data.Status), Raw: env.Data}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, *envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("payos request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("payos read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("payos decode: %w", err)
	}
	return raw, &env, nil
}

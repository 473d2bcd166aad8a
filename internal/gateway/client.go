// Package gateway is the outbound client for the external payment gateway.
// The gateway's response casing is inconsistent between environments, so
// every response is passed through a single normalization adapter before
// it reaches the rest of the service.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// InitiationRequest starts a payment at the gateway
type InitiationRequest struct {
	SubscriptionID string  `json:"subscription_id"`
	UserID         string  `json:"user_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// InitiationResult is the canonical, normalized gateway response
type InitiationResult struct {
	PaymentID   string
	Status      string
	RedirectURL string
}

// Client calls the payment gateway over HTTP
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a payment gateway client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// InitiatePayment starts a payment at the gateway and returns the
// normalized result.
func (c *Client) InitiatePayment(ctx context.Context, req InitiationRequest) (*InitiationResult, error) {
	c.logger.Info("initiating payment at gateway",
		zap.String("user_id", req.UserID),
		zap.String("subscription_id", req.SubscriptionID),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("payment gateway returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, fmt.Errorf("payment gateway error: status %d", resp.StatusCode())
	}

	result, err := normalizeInitiationResponse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	c.logger.Info("payment initiated at gateway",
		zap.String("gateway_payment_id", result.PaymentID),
		zap.String("status", result.Status),
	)

	return result, nil
}

// normalizeInitiationResponse maps the gateway's heterogeneous response
// casings (paymentId / PaymentID / payment_id and friends) into one
// canonical shape. This is the only place casing fallbacks are allowed.
func normalizeInitiationResponse(body []byte) (*InitiationResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}

	paymentID := pickString(raw, "paymentId", "PaymentID", "payment_id", "id")
	if paymentID == "" {
		return nil, fmt.Errorf("response is missing a payment id")
	}

	status := pickString(raw, "status", "Status")
	if status == "" {
		status = "pending"
	}

	return &InitiationResult{
		PaymentID:   paymentID,
		Status:      status,
		RedirectURL: pickString(raw, "paymentUrl", "PaymentURL", "payment_url", "redirectUrl", "redirect_url"),
	}, nil
}

// pickString returns the first key present in raw that decodes to a
// non-empty string.
func pickString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

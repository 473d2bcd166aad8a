// Package provider is the outbound client for the external fitness data
// provider. Provider payloads arrive with inconsistent field casing
// depending on the provider's own backend version; normalize.go maps them
// into typed entries at this boundary so nothing downstream has to care.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// LogEntry is a canonical, normalized provider log entry
type LogEntry struct {
	SourceID      string
	BloodPressure string
	HeartRate     string
	BloodOxygen   string
	SleepDuration string
	RecordedAt    time.Time
}

// Client calls the fitness data provider over HTTP
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a fitness provider client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// FetchLogs retrieves a user's health logs recorded at the provider since
// the given time.
func (c *Client) FetchLogs(ctx context.Context, providerUserID string, since time.Time) ([]LogEntry, error) {
	c.logger.Info("fetching logs from provider",
		zap.String("provider_user_id", providerUserID),
		zap.Time("since", since),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("user", providerUserID).
		SetQueryParam("since", since.Format(time.RFC3339)).
		Get("/v2/logs")
	if err != nil {
		return nil, fmt.Errorf("failed to call provider: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("provider returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, fmt.Errorf("provider error: status %d", resp.StatusCode())
	}

	entries, err := normalizeLogsPayload(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	c.logger.Info("provider logs fetched",
		zap.String("provider_user_id", providerUserID),
		zap.Int("count", len(entries)),
	)

	return entries, nil
}

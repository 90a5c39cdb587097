package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/interpretly/booking-be/internal/config"
)

// SMSClient talks to the HTTP SMS gateway.
type SMSClient struct {
	cfg        config.SMSConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSMSClient creates an SMSClient.
func NewSMSClient(cfg config.SMSConfig, logger *slog.Logger) *SMSClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SMSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send delivers one text and returns the carrier status string.
func (c *SMSClient) Send(ctx context.Context, from, to, body string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("recipient has no mobile number")
	}

	payload, err := json.Marshal(smsRequest{From: from, To: to, Body: body})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read sms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed smsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// gateways answering plain text still count as delivered
		return string(respBody), nil
	}

	c.logger.Debug("SMS gateway accepted message",
		slog.String("to", to),
		slog.String("status", parsed.Status),
	)

	return parsed.Status, nil
}

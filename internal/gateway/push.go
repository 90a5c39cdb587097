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

	"github.com/interpretly/booking-be/internal/booking/notify"
	"github.com/interpretly/booking-be/internal/config"
)

// PushClient talks to the push provider's REST API. Recipients are addressed
// by user-id tags registered by the mobile apps.
type PushClient struct {
	cfg        config.PushConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPushClient creates a PushClient.
func NewPushClient(cfg config.PushConfig, logger *slog.Logger) *PushClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PushClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type pushFilter struct {
	Field    string `json:"field"`
	Key      string `json:"key,omitempty"`
	Relation string `json:"relation"`
	Value    string `json:"value"`
	Operator string `json:"operator,omitempty"`
}

type pushRequest struct {
	AppID        string            `json:"app_id"`
	Headings     map[string]string `json:"headings"`
	Contents     map[string]string `json:"contents"`
	Data         map[string]string `json:"data"`
	Filters      []pushFilter      `json:"filters"`
	AndroidSound string            `json:"android_sound"`
	IOSSound     string            `json:"ios_sound"`
	SendAfter    string            `json:"send_after,omitempty"`
}

type pushResponse struct {
	ID         string   `json:"id"`
	Recipients int      `json:"recipients"`
	Errors     []string `json:"errors"`
}

// Send fans the payload out to every device tagged with one of the user ids.
// A SendAfter timestamp schedules the batch instead of sending immediately.
func (c *PushClient) Send(ctx context.Context, userTags []string, payload notify.PushPayload) error {
	if len(userTags) == 0 {
		return nil
	}

	filters := make([]pushFilter, 0, len(userTags)*2-1)
	for i, tag := range userTags {
		if i > 0 {
			filters = append(filters, pushFilter{Operator: "OR"})
		}
		filters = append(filters, pushFilter{
			Field:    "tag",
			Key:      "user_id",
			Relation: "=",
			Value:    tag,
		})
	}

	req := pushRequest{
		AppID:    c.cfg.AppID,
		Headings: map[string]string{"en": payload.Title},
		Contents: payload.Contents,
		Data: map[string]string{
			"job_id": payload.JobID,
			"type":   string(payload.Type),
		},
		Filters:      filters,
		AndroidSound: payload.AndroidSound,
		IOSSound:     payload.IOSSound,
	}
	if payload.SendAfter != nil {
		req.SendAfter = payload.SendAfter.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed pushResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && len(parsed.Errors) > 0 {
		return fmt.Errorf("push gateway rejected notification: %v", parsed.Errors)
	}

	c.logger.Debug("Push gateway accepted notification",
		slog.String("notification_id", parsed.ID),
		slog.Int("recipients", parsed.Recipients),
	)

	return nil
}

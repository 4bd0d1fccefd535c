// Package notify provides the webhook client announcing achievement unlocks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/models"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// Client posts unlock announcements to a configured webhook.
type Client struct {
	webhookURL string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotifierConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// UnlockEvent is the payload sent for one achievement unlock.
type UnlockEvent struct {
	UserID          string    `json:"user_id"`
	AchievementName string    `json:"achievement_name"`
	Icon            string    `json:"icon,omitempty"`
	EarnedAt        time.Time `json:"earned_at"`
}

// NotifyUnlock announces an achievement unlock. Disabled clients and
// delivery failures are non-fatal: unlock records are already committed and
// the webhook is a side channel.
func (c *Client) NotifyUnlock(ctx context.Context, event *UnlockEvent) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifier is disabled, skipping unlock event")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send unlock event: %w: %w", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d: %w", resp.StatusCode, models.ErrUpstream)
	}

	c.log.Debug().
		Str("user_id", event.UserID).
		Str("achievement", event.AchievementName).
		Msg("Unlock event delivered")
	return nil
}

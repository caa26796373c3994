// Package apns provides the client for the Apple Push Notification service
// and the provider-token lifecycle it depends on.
package apns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

const (
	// DefaultHost is Apple's production APNs endpoint.
	DefaultHost = "https://api.push.apple.com"

	// requestTimeout bounds one delivery so a stalled gateway cannot stall
	// the single dispatcher indefinitely.
	requestTimeout = 5 * time.Second

	// requestID is sent as apns-id on every request.
	requestID = "eabeae54-14a8-11e5-b60b-1697f925ec7b"
)

// BearerSource supplies the current signed provider token.
type BearerSource interface {
	Bearer() string
}

// DeliveryError describes a failed delivery attempt. Status is zero for
// transport failures.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apns transport failure: %v", e.Err)
	}
	return fmt.Sprintf("apns rejected notification: status %d body %q", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Config holds the settings for the gateway client.
type Config struct {
	// Host overrides DefaultHost, mainly for tests and the sandbox endpoint.
	Host string
	// Topic is the app bundle id sent as apns-topic.
	Topic string
}

// Client issues one HTTP request per notification against APNs.
type Client struct {
	http   *http.Client
	host   string
	topic  string
	creds  BearerSource
	logger *slog.Logger
}

// NewClient creates a configured gateway client.
func NewClient(cfg Config, creds BearerSource, logger *slog.Logger) *Client {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		http:   &http.Client{Timeout: requestTimeout},
		host:   host,
		topic:  cfg.Topic,
		creds:  creds,
		logger: logger.With("component", "APNSClient"),
	}
}

type notificationPayload struct {
	APS alertBody `json:"aps"`
}

type alertBody struct {
	Alert             string `json:"alert"`
	NotificationType  string `json:"notification_type"`
	NotificationValue string `json:"notification_value"`
}

// Send delivers a single alert to the given device. The returned error is a
// *DeliveryError for both transport failures and non-success statuses.
func (c *Client) Send(ctx context.Context, deviceToken, message string, category push.Category, subjectID string) error {
	body, err := json.Marshal(notificationPayload{
		APS: alertBody{
			Alert:             message,
			NotificationType:  string(category),
			NotificationValue: subjectID,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/3/device/%s", c.host, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("authorization", "bearer "+c.creds.Bearer())
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-expiration", "0")
	req.Header.Set("apns-id", requestID)
	req.Header.Set("apns-topic", c.topic)
	req.Header.Set("apns-priority", "10")

	resp, err := c.http.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Keep the response body for diagnostics; there is no retry path to act
	// on it otherwise.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &DeliveryError{Status: resp.StatusCode, Body: string(respBody)}
}

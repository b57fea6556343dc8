package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

// FCMClient sends batched push notifications through Firebase Cloud
// Messaging. It implements PushGateway.
type FCMClient struct {
	ServerKey string
	Endpoint  string
	HTTP      *http.Client
}

// NewFCMClient builds a client for the given server key. endpoint may
// be empty to use the public FCM endpoint; tests point it at a local
// server.
func NewFCMClient(serverKey, endpoint string) *FCMClient {
	if endpoint == "" {
		endpoint = defaultFCMEndpoint
	}
	return &FCMClient{
		ServerKey: serverKey,
		Endpoint:  endpoint,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmPayload struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send posts one request carrying the whole token batch. A non-2xx
// status is reported as an error; the caller decides whether that
// matters.
func (c *FCMClient) Send(ctx context.Context, deviceTokens []string, title, body string, data map[string]string) error {
	payload := fcmPayload{
		RegistrationIDs: deviceTokens,
		Notification:    fcmNotification{Title: title, Body: body},
		Data:            data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fcm: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("fcm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.ServerKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fcm: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fcm: unexpected status %d", resp.StatusCode)
	}
	return nil
}

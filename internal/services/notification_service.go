package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// NotificationService posts push notifications to the external dispatcher.
// Every call site uses Dispatch: delivery is fire-and-forget and a failure is
// logged, never propagated into the primary operation's result.
type NotificationService struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewNotificationService(endpoint, apiKey string) *NotificationService {
	return &NotificationService{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type pushPayload struct {
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	TargetURL string `json:"target_url,omitempty"`
}

// Notify delivers one notification synchronously
func (ns *NotificationService) Notify(ctx context.Context, walletAddress, title, body, targetURL string) error {
	if ns.endpoint == "" {
		log.Debugf("[Notifications] no endpoint configured, dropping %q for %s", title, walletAddress)
		return nil
	}

	payload, err := json.Marshal(pushPayload{
		Recipient: walletAddress,
		Title:     title,
		Body:      body,
		TargetURL: targetURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ns.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ns.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+ns.apiKey)
	}

	resp, err := ns.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatcher request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatcher returned %d", resp.StatusCode)
	}

	return nil
}

// Dispatch sends a notification in a detached goroutine. The primary
// operation never blocks on, or fails because of, notification delivery.
func (ns *NotificationService) Dispatch(walletAddress, title, body, targetURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := ns.Notify(ctx, walletAddress, title, body, targetURL); err != nil {
			log.Warnf("[Notifications] failed to notify %s (%q): %v", walletAddress, title, err)
		}
	}()
}

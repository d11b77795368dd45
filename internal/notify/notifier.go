// Package notify delivers publish notifications to configured webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// deliverTimeout bounds each fire-and-forget webhook delivery.
const deliverTimeout = 5 * time.Second

// Event is one notification payload.
type Event struct {
	Type      string         `json:"type"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sender delivers a single notification event.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// WebhookSender posts notification events to a webhook URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender creates a webhook sender for the given URL.
func NewWebhookSender(url string, client *http.Client) *WebhookSender {
	return &WebhookSender{url: url, client: client}
}

// Send posts the event as JSON to the webhook.
func (s *WebhookSender) Send(ctx context.Context, event Event) error {
	payload, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("marshal event: %w", marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if reqErr != nil {
		return fmt.Errorf("create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := s.client.Do(req)
	if doErr != nil {
		return fmt.Errorf("deliver notification: %w", doErr)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}

// Toggle reports whether a feature is enabled.
type Toggle interface {
	IsEnabled(name string) bool
}

// Notifier fans events out to all configured senders. Delivery is
// fire-and-forget: failures are logged, never returned.
type Notifier struct {
	senders []Sender
	toggle  Toggle
	logger  logger.Logger
}

// NewNotifier creates a notifier. A notifier with no senders is a no-op.
func NewNotifier(senders []Sender, toggle Toggle, log logger.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		toggle:  toggle,
		logger:  log,
	}
}

// Notify dispatches the event to every sender asynchronously when the
// notifications feature is enabled.
func (n *Notifier) Notify(eventType string, detail map[string]any) {
	if n == nil || len(n.senders) == 0 {
		return
	}
	if n.toggle != nil && !n.toggle.IsEnabled(flags.FeatureNotifications) {
		return
	}

	event := Event{
		Type:      eventType,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	for _, sender := range n.senders {
		go func(s Sender) {
			ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
			defer cancel()

			if sendErr := s.Send(ctx, event); sendErr != nil {
				n.logger.Warn("notification delivery failed",
					logger.String("event_type", eventType),
					logger.Error(sendErr),
				)
			}
		}(sender)
	}
}

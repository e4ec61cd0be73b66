package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// WebhookNotifier POSTs the notification as JSON to an external channel
// endpoint (chat hook, mail bridge). Calls run through a circuit breaker so
// a dead endpoint fails fast instead of stalling every submission.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewWebhookNotifier creates a webhook notifier for the supplied endpoint.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	settings := gobreaker.Settings{
		Name:    "notifier-webhook",
		Timeout: 30 * time.Second,
	}
	return &WebhookNotifier{
		url:     url,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Notify delivers the notification; any non-2xx response is a failure.
func (n *WebhookNotifier) Notify(ctx context.Context, notification *Notification) error {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, notification)
	})
	return err
}

func (n *WebhookNotifier) post(ctx context.Context, notification *Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := n.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("notification endpoint returned %v", response.StatusCode)
	}
	return nil
}

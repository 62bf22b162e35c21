package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// DefaultWebhookTimeout bounds a single webhook delivery.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Webhook posts notifications as JSON to an HTTP endpoint.
type Webhook struct {
	URL     string            // endpoint (required)
	Headers map[string]string // extra request headers, e.g. Authorization
	Timeout time.Duration     // default: DefaultWebhookTimeout
	Client  *resty.Client     // injected for testing
	Now     func() time.Time  // injected for testing
}

// Notify posts the message and fails on any status >= 400.
func (w *Webhook) Notify(ctx context.Context, message string) error {
	if w.URL == "" {
		return fmt.Errorf("webhook URL is required")
	}

	timeout := w.Timeout
	if timeout == 0 {
		timeout = DefaultWebhookTimeout
	}
	client := w.Client
	if client == nil {
		client = resty.New()
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.R().
		SetContext(ctx).
		SetHeaders(w.Headers).
		SetHeader("Content-Type", "application/json").
		SetBody(WebhookPayload{
			Message:   message,
			Timestamp: now().Format("2006-01-02 15:04:05"),
			Source:    Source,
		}).
		Post(w.URL)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if res.StatusCode() >= 400 {
		return fmt.Errorf("webhook status %d: %s", res.StatusCode(), errorMessage(res.Body()))
	}
	return nil
}

// errorMessage pulls a readable message out of a webhook error response.
// Chat services answer with JSON like {"message": "..."} or {"error": "..."}.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error.message", "error", "description"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String {
				return v.String()
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

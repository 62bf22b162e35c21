package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebhookPayload(t *testing.T) {
	var got WebhookPayload
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := &Webhook{
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer secret"},
		Now:     func() time.Time { return time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC) },
	}
	if err := w.Notify(context.Background(), "Check: https://service.berlin.de/ok"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if got.Message != "Check: https://service.berlin.de/ok" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Timestamp != "2025-05-12 09:30:00" {
		t.Errorf("Timestamp = %q, want %q", got.Timestamp, "2025-05-12 09:30:00")
	}
	if got.Source != Source {
		t.Errorf("Source = %q, want %q", got.Source, Source)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret")
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSub string
	}{
		{"json message", `{"message": "invalid token"}`, "invalid token"},
		{"nested json error", `{"error": {"message": "rate limited"}}`, "rate limited"},
		{"plain text", "upstream unavailable\n", "upstream unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := (&Webhook{URL: server.URL}).Notify(context.Background(), "hi")
			if err == nil {
				t.Fatal("Notify() error = nil, want error")
			}
			if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want status and %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestWebhookRequiresURL(t *testing.T) {
	if err := (&Webhook{}).Notify(context.Background(), "hi"); err == nil {
		t.Error("Notify() error = nil, want error for missing URL")
	}
}

func TestWebhookTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	err := (&Webhook{URL: server.URL, Timeout: 50 * time.Millisecond}).Notify(context.Background(), "hi")
	if err == nil {
		t.Error("Notify() error = nil, want timeout error")
	}
}

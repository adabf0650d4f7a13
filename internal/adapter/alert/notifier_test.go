package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewWebhookNotifierValidatesEndpoint(t *testing.T) {
	if _, err := NewWebhookNotifier("://bad", discardLogger()); err == nil {
		t.Fatal("expected error for malformed url")
	}
	if _, err := NewWebhookNotifier("/relative", discardLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	if _, err := NewWebhookNotifier("https://hooks.example/alerts", discardLogger()); err != nil {
		t.Fatalf("unexpected error for absolute url: %v", err)
	}
}

func TestWebhookNotifierDeliversEvent(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode alert body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("failed to create notifier: %v", err)
	}

	notifier.Notify(context.Background(), "amount_mismatch", map[string]any{
		"transactionId": "TXN-1",
		"expected":      "21.55",
		"actual":        "21.56",
	})

	if received["kind"] != "amount_mismatch" {
		t.Fatalf("unexpected event kind: %+v", received)
	}
	payload, ok := received["payload"].(map[string]any)
	if !ok || payload["expected"] != "21.55" {
		t.Fatalf("unexpected event payload: %+v", received)
	}
	if received["at"] == nil {
		t.Fatal("expected timestamp on event")
	}
}

func TestWebhookNotifierSwallowsDeliveryFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	notifier, err := NewWebhookNotifier(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("failed to create notifier: %v", err)
	}

	// Error status, then a dead endpoint. Neither may panic or block.
	notifier.Notify(context.Background(), "failed_verification", map[string]any{"transactionId": "TXN-1"})
	server.Close()
	notifier.Notify(context.Background(), "failed_verification", map[string]any{"transactionId": "TXN-2"})
}

func TestLogNotifierWritesWarning(t *testing.T) {
	var warned bool
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelWarn {
			warned = true
		}
		return a
	}})
	notifier := NewLogNotifier(slog.New(handler))

	notifier.Notify(context.Background(), "amount_mismatch", map[string]any{"transactionId": "TXN-1"})
	if !warned {
		t.Fatal("expected alert to be logged at warning level")
	}
}

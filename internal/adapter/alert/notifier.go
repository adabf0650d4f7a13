package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Notifier delivers reconciliation anomaly events. Delivery is
// fire-and-forget: failures are logged, never retried, never propagated.
type Notifier interface {
	Notify(ctx context.Context, kind string, payload map[string]any)
}

// WebhookNotifier posts alert events as JSON to a configured URL.
type WebhookNotifier struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier creates a webhook notifier with its own client.
func NewWebhookNotifier(endpoint string, logger *slog.Logger) (*WebhookNotifier, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse alert webhook url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("alert webhook url must be absolute")
	}
	return &WebhookNotifier{
		endpoint: parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

// Notify sends the event and swallows every failure.
func (n *WebhookNotifier) Notify(ctx context.Context, kind string, payload map[string]any) {
	event := map[string]any{
		"kind":    kind,
		"payload": payload,
		"at":      time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal alert event failed", slog.String("kind", kind), slog.String("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		n.logger.Error("build alert request failed", slog.String("kind", kind), slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("alert delivery failed", slog.String("kind", kind), slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		n.logger.Error("alert endpoint returned error", slog.String("kind", kind), slog.Int("status", resp.StatusCode))
	}
}

// LogNotifier records alerts in the service log when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify writes the alert at warning level.
func (n *LogNotifier) Notify(_ context.Context, kind string, payload map[string]any) {
	n.logger.Warn("reconciliation alert", slog.String("kind", kind), slog.Any("payload", payload))
}

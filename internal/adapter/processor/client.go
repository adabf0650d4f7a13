package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// VerificationResult is the processor's verdict on an echoed notification.
type VerificationResult int

const (
	// ResultVerified means the notification genuinely originated from the
	// processor and reconciliation may proceed.
	ResultVerified VerificationResult = iota
	// ResultInvalid means the processor disowns the notification; it is a
	// rejection signal for the referenced transaction.
	ResultInvalid
)

// ErrIndeterminate signals an unrecognized verification reply. The caller
// drops the event and relies on the processor's redelivery to retry.
var ErrIndeterminate = errors.New("indeterminate verification reply")

// Client exposes the server-to-server verification handshake. payload is
// the notification body exactly as received from the processor.
type Client interface {
	Verify(ctx context.Context, payload string) (VerificationResult, error)
}

// HTTPClient implements Client against the processor's HTTP endpoint.
type HTTPClient struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

const verifyCommand = "_notify-validate"

// NewHTTPClient creates a verification client with a bounded timeout. The
// client is constructed once and injected; it is never a package singleton.
func NewHTTPClient(endpoint string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse verification url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("verification url must be absolute")
	}
	return &HTTPClient{
		endpoint: parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Verify re-posts the received payload bytes prefixed with the validation
// command and inspects the processor's plain-text reply. The payload goes
// out verbatim: the processor compares it against what it sent, so field
// order and percent-encoding must survive. Anything that is neither
// VERIFIED nor INVALID comes back as ErrIndeterminate.
func (c *HTTPClient) Verify(ctx context.Context, payload string) (VerificationResult, error) {
	body := "cmd=" + verifyCommand
	if payload != "" {
		body += "&" + payload
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), strings.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return 0, err
	}
	reply := strings.TrimSpace(string(raw))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("verification request failed", slog.Int("status", resp.StatusCode), slog.String("body", reply))
		return 0, fmt.Errorf("verification error: %s", resp.Status)
	}

	switch {
	case strings.HasPrefix(reply, "VERIFIED"):
		return ResultVerified, nil
	case strings.HasPrefix(reply, "INVALID"):
		return ResultInvalid, nil
	default:
		c.logger.Warn("unrecognized verification reply", slog.String("body", reply))
		return 0, ErrIndeterminate
	}
}

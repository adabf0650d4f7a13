package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
)

// maxNotificationBody bounds how much of a notification body gets read.
// Real processor payloads are a few hundred bytes.
const maxNotificationBody = 64 << 10

// IPNHandler receives asynchronous payment confirmations from the processor.
type IPNHandler struct {
	sink   NotificationSink
	logger *slog.Logger
}

// NewIPNHandler constructs IPNHandler.
func NewIPNHandler(sink NotificationSink, logger *slog.Logger) *IPNHandler {
	return &IPNHandler{sink: sink, logger: logger}
}

// Receive handles POST /api/payments/ipn. The processor always gets a 200
// before any verification work happens; anything else risks a redelivery
// storm. All further processing runs on the dispatcher's workers.
func (h *IPNHandler) Receive(c *gin.Context) {
	// The body is read whole before any parsing: the handshake must echo
	// these exact bytes back to the processor, and ParseForm both consumes
	// the stream and normalizes key order on re-encode.
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBody))
	if err != nil {
		h.logger.Warn("unreadable notification body", slog.String("error", err.Error()))
		c.Status(http.StatusOK)
		return
	}

	form, err := url.ParseQuery(string(raw))
	if err != nil {
		h.logger.Warn("malformed notification payload", slog.String("error", err.Error()))
		c.Status(http.StatusOK)
		return
	}

	n, err := parseNotification(form, string(raw))
	c.Status(http.StatusOK)
	if err != nil {
		h.logger.Warn("unparseable notification",
			slog.String("error", err.Error()),
			slog.String("remote", c.ClientIP()),
		)
		return
	}

	h.sink.Submit(n)
}

func parseNotification(form url.Values, raw string) (model.Notification, error) {
	n := model.Notification{
		TransactionID: form.Get("txn_id"),
		Status:        model.ProcessorStatus(form.Get("payment_status")),
		Receiver:      form.Get("receiver_email"),
		Raw:           raw,
	}
	if n.TransactionID == "" {
		return model.Notification{}, fmt.Errorf("%w: missing transaction id", domainErrors.ErrInvalidPayload)
	}
	if gross := form.Get("mc_gross"); gross != "" {
		value, err := decimal.NewFromString(gross)
		if err != nil {
			return model.Notification{}, fmt.Errorf("%w: bad gross amount %q", domainErrors.ErrInvalidPayload, gross)
		}
		n.Gross = value
	}
	return n, nil
}

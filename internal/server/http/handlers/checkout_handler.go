package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/server/http/dto"
)

// CheckoutHandler manages the pre-payment authorization endpoint.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Authorize handles POST /api/checkout/authorize. The decision is advisory:
// the reconciler re-checks everything once the processor reports payment.
func (h *CheckoutHandler) Authorize(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CheckoutResponse{Approved: false, Reason: dto.ReasonInvalidOrder})
		return
	}

	err := h.facade.Authorize(c.Request.Context(), toOrderLines(req.Lines), req.ClaimedTotal)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.CheckoutResponse{Approved: true})
	case errors.Is(err, domainErrors.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, dto.CheckoutResponse{Approved: false, Reason: dto.ReasonBelowMinimum})
	case errors.Is(err, domainErrors.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, dto.CheckoutResponse{Approved: false, Reason: dto.ReasonInvalidOrder})
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toOrderLines(lines []dto.OrderLineRequest) []model.OrderLine {
	result := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		result = append(result, model.OrderLine{
			ItemID:         l.ItemID,
			Quantity:       l.Quantity,
			Size:           l.Size,
			Accommodations: l.Accommodations,
			Instructions:   l.Instructions,
		})
	}
	return result
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/server/http/dto"
)

// OrderHandler manages order intake and lookup endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders. Called by the checkout-completion flow
// once the customer has paid; the payment status always starts PENDING and
// only the reconciler moves it.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order := &model.Order{
		Customer: model.Customer{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		PickupAt: req.PickupAt,
		Lines:    toOrderLines(req.Lines),
		Payment: model.Payment{
			ClaimedAmount: req.ClaimedTotal,
			TransactionID: req.TransactionID,
		},
	}

	created, err := h.facade.CreateOrder(c.Request.Context(), order)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidOrder):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(created))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// SetFulfilment handles POST /api/orders/:id/fulfilment.
func (h *OrderHandler) SetFulfilment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.FulfilmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err = h.facade.SetFulfilment(c.Request.Context(), id, model.FulfilmentStatus(req.Status))
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		c.Status(http.StatusConflict)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:               order.ID,
		PaymentStatus:    string(order.Payment.Status),
		FulfilmentStatus: string(order.Fulfilment),
		ClaimedTotal:     order.Payment.ClaimedAmount.StringFixed(2),
		TransactionID:    order.Payment.TransactionID,
		PickupAt:         order.PickupAt,
		CreatedAt:        order.CreatedAt,
	}
}

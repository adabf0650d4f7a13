package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/server/http/dto"
	testhelpers "github.com/caterlane/caterpay/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, path, handler)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func formHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
}

func checkoutBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.CheckoutRequest{
		Lines:        []dto.OrderLineRequest{{ItemID: 1, Quantity: 2, Size: "small"}},
		ClaimedTotal: decimal.RequireFromString("21.55"),
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return body
}

func decodeCheckout(t *testing.T, resp *httptest.ResponseRecorder) dto.CheckoutResponse {
	t.Helper()
	var decoded dto.CheckoutResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return decoded
}

func TestCheckoutHandlerApproves(t *testing.T) {
	var gotLines []model.OrderLine
	var gotClaim decimal.Decimal
	facade := testhelpers.CheckoutFacadeStub{AuthorizeFn: func(_ context.Context, lines []model.OrderLine, claimed decimal.Decimal) error {
		gotLines = lines
		gotClaim = claimed
		return nil
	}}
	resp := performRequest(t, http.MethodPost, "/authorize", NewCheckoutHandler(facade).Authorize, checkoutBody(t), jsonHeaders())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	decoded := decodeCheckout(t, resp)
	if !decoded.Approved || decoded.Reason != "" {
		t.Fatalf("unexpected response: %+v", decoded)
	}
	if len(gotLines) != 1 || gotLines[0].ItemID != 1 || gotLines[0].Quantity != 2 || gotLines[0].Size != "small" {
		t.Fatalf("unexpected lines passed to facade: %+v", gotLines)
	}
	if !gotClaim.Equal(decimal.RequireFromString("21.55")) {
		t.Fatalf("unexpected claimed total %s", gotClaim)
	}
}

func TestCheckoutHandlerRejections(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.CheckoutFacadeStub
		body   []byte
		status int
		reason string
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest, reason: dto.ReasonInvalidOrder},
		{name: "below minimum", body: nil, facade: testhelpers.CheckoutFacadeStub{AuthorizeFn: func(context.Context, []model.OrderLine, decimal.Decimal) error {
			return domainErrors.ErrBelowMinimum
		}}, status: http.StatusBadRequest, reason: dto.ReasonBelowMinimum},
		{name: "invalid order", body: nil, facade: testhelpers.CheckoutFacadeStub{AuthorizeFn: func(context.Context, []model.OrderLine, decimal.Decimal) error {
			return domainErrors.ErrInvalidOrder
		}}, status: http.StatusBadRequest, reason: dto.ReasonInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = checkoutBody(t)
			}
			resp := performRequest(t, http.MethodPost, "/authorize", NewCheckoutHandler(tt.facade).Authorize, body, jsonHeaders())
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			decoded := decodeCheckout(t, resp)
			if decoded.Approved {
				t.Fatal("expected rejection")
			}
			if decoded.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, decoded.Reason)
			}
		})
	}
}

func TestCheckoutHandlerInternalError(t *testing.T) {
	facade := testhelpers.CheckoutFacadeStub{AuthorizeFn: func(context.Context, []model.OrderLine, decimal.Decimal) error {
		return errors.New("boom")
	}}
	resp := performRequest(t, http.MethodPost, "/authorize", NewCheckoutHandler(facade).Authorize, checkoutBody(t), jsonHeaders())
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestIPNHandlerAcknowledgesAndSubmits(t *testing.T) {
	sink := &testhelpers.SinkStub{}
	body := []byte("txn_id=TXN-1&payment_status=Completed&receiver_email=orders%40caterlane.example&mc_gross=21.55")
	resp := performRequest(t, http.MethodPost, "/ipn", NewIPNHandler(sink, discardLogger()).Receive, body, formHeaders())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if sink.SubmittedCount() != 1 {
		t.Fatalf("expected one submitted notification, got %d", sink.SubmittedCount())
	}

	n := sink.Last()
	if n.TransactionID != "TXN-1" {
		t.Fatalf("unexpected transaction id %q", n.TransactionID)
	}
	if n.Status != model.ProcessorStatusCompleted {
		t.Fatalf("unexpected status %q", n.Status)
	}
	if n.Receiver != "orders@caterlane.example" {
		t.Fatalf("unexpected receiver %q", n.Receiver)
	}
	if !n.Gross.Equal(decimal.RequireFromString("21.55")) {
		t.Fatalf("unexpected gross %s", n.Gross)
	}
	if n.Raw != string(body) {
		t.Fatalf("expected raw payload to be preserved, got %q", n.Raw)
	}
}

func TestIPNHandlerKeepsWireBytesVerbatim(t *testing.T) {
	sink := &testhelpers.SinkStub{}

	// Field order and percent-encoding are the processor's choice; the
	// stored payload must match the wire bytes, not a re-encoded form.
	body := []byte("z_last=1&txn_id=TXN-1&a_first=2&memo=caf%C3%A9+lunch")
	resp := performRequest(t, http.MethodPost, "/ipn", NewIPNHandler(sink, discardLogger()).Receive, body, formHeaders())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if sink.SubmittedCount() != 1 {
		t.Fatalf("expected one submitted notification, got %d", sink.SubmittedCount())
	}
	if got := sink.Last().Raw; got != string(body) {
		t.Fatalf("expected wire bytes %q, got %q", body, got)
	}
}

func TestIPNHandlerAlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		submitted int
	}{
		{name: "missing transaction id", body: []byte("payment_status=Completed&mc_gross=10.00"), submitted: 0},
		{name: "bad gross amount", body: []byte("txn_id=TXN-1&mc_gross=not-a-number"), submitted: 0},
		{name: "bad encoding", body: []byte("txn_id=%zz"), submitted: 0},
		{name: "empty body", body: []byte(""), submitted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &testhelpers.SinkStub{}
			resp := performRequest(t, http.MethodPost, "/ipn", NewIPNHandler(sink, discardLogger()).Receive, tt.body, formHeaders())
			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.Code)
			}
			if sink.SubmittedCount() != tt.submitted {
				t.Fatalf("expected %d submissions, got %d", tt.submitted, sink.SubmittedCount())
			}
		})
	}
}

func TestIPNHandlerAcknowledgesFullQueue(t *testing.T) {
	sink := &testhelpers.SinkStub{Reject: true}
	body := []byte("txn_id=TXN-1&payment_status=Completed")
	resp := performRequest(t, http.MethodPost, "/ipn", NewIPNHandler(sink, discardLogger()).Receive, body, formHeaders())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 even when queue is full, got %d", resp.Code)
	}
}

func createOrderBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.CreateOrderRequest{
		Customer:      dto.CustomerRequest{Name: "Dana", Email: "dana@example.com"},
		PickupAt:      time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC),
		TransactionID: "TXN-1",
		ClaimedTotal:  decimal.RequireFromString("21.55"),
		Lines:         []dto.OrderLineRequest{{ItemID: 1, Quantity: 2, Size: "small"}},
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return body
}

func TestOrderHandlerCreate(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{CreateFn: func(_ context.Context, order *model.Order) (*model.Order, error) {
		created := *order
		created.ID = 7
		created.Payment.Status = model.PaymentStatusPending
		created.Fulfilment = model.FulfilmentStatusPending
		created.CreatedAt = time.Unix(0, 0).UTC()
		return &created, nil
	}}
	resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(facade).Create, createOrderBody(t), jsonHeaders())
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 7 || decoded.PaymentStatus != "PENDING" || decoded.FulfilmentStatus != "PENDING" {
		t.Fatalf("unexpected response: %+v", decoded)
	}
	if decoded.ClaimedTotal != "21.55" || decoded.TransactionID != "TXN-1" {
		t.Fatalf("unexpected payment fields: %+v", decoded)
	}
}

func TestOrderHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.OrderFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid order", facade: testhelpers.OrderFacadeStub{CreateFn: func(context.Context, *model.Order) (*model.Order, error) {
			return nil, domainErrors.ErrInvalidOrder
		}}, status: http.StatusUnprocessableEntity},
		{name: "duplicate transaction", facade: testhelpers.OrderFacadeStub{CreateFn: func(context.Context, *model.Order) (*model.Order, error) {
			return nil, domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", facade: testhelpers.OrderFacadeStub{CreateFn: func(context.Context, *model.Order) (*model.Order, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = createOrderBody(t)
			}
			resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(tt.facade).Create, body, jsonHeaders())
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerGet(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{OrderFn: func(_ context.Context, id int64) (*model.Order, error) {
		return &model.Order{
			ID: id,
			Payment: model.Payment{
				ClaimedAmount: decimal.RequireFromString("21.55"),
				TransactionID: "TXN-1",
				Status:        model.PaymentStatusApproved,
			},
			Fulfilment: model.FulfilmentStatusPending,
		}, nil
	}}
	router := gin.New()
	router.GET("/orders/:id", NewOrderHandler(facade).Get)
	req := httptest.NewRequest(http.MethodGet, "/orders/7", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 7 || decoded.PaymentStatus != "APPROVED" {
		t.Fatalf("unexpected response: %+v", decoded)
	}
}

func TestOrderHandlerGetFailures(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		facade testhelpers.OrderFacadeStub
		status int
	}{
		{name: "bad id", path: "/orders/abc", status: http.StatusBadRequest},
		{name: "not found", path: "/orders/7", facade: testhelpers.OrderFacadeStub{OrderFn: func(context.Context, int64) (*model.Order, error) {
			return nil, domainErrors.ErrNotFound
		}}, status: http.StatusNotFound},
		{name: "internal", path: "/orders/7", facade: testhelpers.OrderFacadeStub{OrderFn: func(context.Context, int64) (*model.Order, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/orders/:id", NewOrderHandler(tt.facade).Get)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestOrderHandlerSetFulfilment(t *testing.T) {
	var gotStatus model.FulfilmentStatus
	facade := testhelpers.OrderFacadeStub{SetFulfilmentFn: func(_ context.Context, id int64, status model.FulfilmentStatus) error {
		if id != 7 {
			t.Fatalf("unexpected id %d", id)
		}
		gotStatus = status
		return nil
	}}

	router := gin.New()
	router.POST("/orders/:id/fulfilment", NewOrderHandler(facade).SetFulfilment)
	req := httptest.NewRequest(http.MethodPost, "/orders/7/fulfilment", bytes.NewReader([]byte(`{"status":"COMPLETED"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotStatus != model.FulfilmentStatusCompleted {
		t.Fatalf("unexpected status %q", gotStatus)
	}
}

func TestOrderHandlerSetFulfilmentFailures(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   []byte
		facade testhelpers.OrderFacadeStub
		status int
	}{
		{name: "bad id", path: "/orders/abc/fulfilment", body: []byte(`{"status":"COMPLETED"}`), status: http.StatusBadRequest},
		{name: "bad json", path: "/orders/7/fulfilment", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "not found", path: "/orders/7/fulfilment", body: []byte(`{"status":"COMPLETED"}`), facade: testhelpers.OrderFacadeStub{SetFulfilmentFn: func(context.Context, int64, model.FulfilmentStatus) error {
			return domainErrors.ErrNotFound
		}}, status: http.StatusNotFound},
		{name: "invalid transition", path: "/orders/7/fulfilment", body: []byte(`{"status":"CANCELLED"}`), facade: testhelpers.OrderFacadeStub{SetFulfilmentFn: func(context.Context, int64, model.FulfilmentStatus) error {
			return domainErrors.ErrInvalidTransition
		}}, status: http.StatusConflict},
		{name: "internal", path: "/orders/7/fulfilment", body: []byte(`{"status":"COMPLETED"}`), facade: testhelpers.OrderFacadeStub{SetFulfilmentFn: func(context.Context, int64, model.FulfilmentStatus) error {
			return errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/orders/:id/fulfilment", NewOrderHandler(tt.facade).SetFulfilment)
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/health", NewHealthHandler(testhelpers.HealthFacadeStub{}).Check, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/health", NewHealthHandler(testhelpers.HealthFacadeStub{Err: errors.New("db down")}).Check, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

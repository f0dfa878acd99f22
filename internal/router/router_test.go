package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakes struct {
	stock    *fakeStock
	orders   *fakeOrders
	parts    *fakeParts
	commerce *fakeCommerce
}

func newTestRouter() (*gin.Engine, *fakes) {
	f := &fakes{
		stock:    &fakeStock{},
		orders:   &fakeOrders{},
		parts:    &fakeParts{},
		commerce: &fakeCommerce{},
	}
	r := Router(Services{
		Stock:    f.stock,
		Orders:   f.orders,
		Parts:    f.parts,
		Commerce: f.commerce,
	}, zap.NewNop())
	return r, f
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestUseItem_PassesActorAndInput(t *testing.T) {
	r, f := newTestRouter()
	actor := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	f.parts.UseItemFn = func(ctx context.Context, in service.UseItemInput) (*models.OrderPart, error) {
		got, ok := service.ActorFromContext(ctx)
		if !ok || got != actor {
			t.Fatalf("actor not propagated: %v %v", got, ok)
		}
		if in.OrderID != orderID || in.ProductID != productID || in.Quantity != 3 {
			t.Fatalf("unexpected input: %+v", in)
		}
		if !in.UnitPrice.Equal(decimal.NewFromInt(5)) {
			t.Fatalf("unit price: %s", in.UnitPrice)
		}
		return &models.OrderPart{
			ID:            uuid.New(),
			RepairOrderID: orderID,
			ProductID:     productID,
			Quantity:      3,
			UnitPrice:     in.UnitPrice,
			TotalPrice:    decimal.NewFromInt(15),
		}, nil
	}

	path := fmt.Sprintf("/api/v1/orders/%s/parts/%s", orderID, productID)
	w := doJSON(t, r, http.MethodPut, path, map[string]any{"quantity": 3, "unit_price": "5.00"},
		map[string]string{"X-Actor-ID": actor.String()})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["quantity"].(float64) != 3 || body["total_price"] != "15" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestActorHeader_Invalid(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil,
		map[string]string{"X-Actor-ID": "not-a-uuid"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", w.Code)
	}
	if decode(t, w)["code"] != "unauthorized" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"not found", fmt.Errorf("%w: id=x", service.ErrItemNotFound), http.StatusNotFound, "not_found"},
		{"invalid", service.ErrInvalidQuantity, http.StatusBadRequest, "validation_error"},
		{"actor", service.ErrActorRequired, http.StatusUnauthorized, "unauthorized"},
		{"insufficient", service.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
		{"transition", service.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
		{"duplicate", service.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
		{"closed", service.ErrOrderClosed, http.StatusConflict, "conflict"},
		{"storage", fmt.Errorf("%w: boom", service.ErrStorageFailure), http.StatusServiceUnavailable, "storage_unavailable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, f := newTestRouter()
			f.stock.GetProductFn = func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
				return nil, tc.err
			}
			w := doJSON(t, r, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil, nil)
			if w.Code != tc.code {
				t.Fatalf("status: got %d want %d", w.Code, tc.code)
			}
			if got := decode(t, w)["code"]; got != tc.body {
				t.Fatalf("code: got %v want %s", got, tc.body)
			}
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/v1/orders/nope/history", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestFinalizeSale_IdempotencyKey(t *testing.T) {
	r, f := newTestRouter()
	productID := uuid.New()

	f.commerce.FinalizeSaleFn = func(ctx context.Context, in service.SaleInput) (*models.Sale, error) {
		if in.IdempotencyKey != "abc-123" {
			t.Fatalf("idempotency key: %q", in.IdempotencyKey)
		}
		if len(in.Lines) != 1 || in.Lines[0].ProductID != productID || in.Lines[0].UnitPrice != nil {
			t.Fatalf("unexpected lines: %+v", in.Lines)
		}
		return &models.Sale{
			ID:         uuid.New(),
			SaleNumber: "S-000001",
			Total:      decimal.NewFromInt(20),
			Status:     models.SaleStatusCompleted,
			Lines: []models.SaleLine{
				{ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(20)},
			},
		}, nil
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/sales",
		map[string]any{"lines": []map[string]any{{"product_id": productID, "quantity": 2}}},
		map[string]string{"X-Actor-ID": uuid.NewString(), "Idempotency-Key": " abc-123 "})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	if decode(t, w)["sale_number"] != "S-000001" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestFinalizeSale_EmptyLinesRejected(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/api/v1/sales", map[string]any{"lines": []any{}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestAdjust_RequiresNote(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/api/v1/products/"+uuid.NewString()+"/adjustments",
		map[string]any{"delta": -2}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestTransition(t *testing.T) {
	r, f := newTestRouter()
	orderID := uuid.New()
	prev := models.OrderStatusReceived

	f.orders.TransitionFn = func(ctx context.Context, id uuid.UUID, to models.OrderStatus, note string) (*models.OrderHistory, error) {
		if id != orderID || to != models.OrderStatusDiagnosing || note != "bench 2" {
			t.Fatalf("unexpected call: %s %s %q", id, to, note)
		}
		return &models.OrderHistory{
			ID:             uuid.New(),
			RepairOrderID:  id,
			PreviousStatus: &prev,
			NewStatus:      to,
		}, nil
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/transitions",
		map[string]any{"status": "diagnosing", "note": "bench 2"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["previous_status"] != "received" || body["new_status"] != "diagnosing" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRemovePart_NoContent(t *testing.T) {
	r, f := newTestRouter()
	called := false
	f.parts.RemovePartFn = func(ctx context.Context, orderID, productID uuid.UUID) error {
		called = true
		return nil
	}
	w := doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/v1/orders/%s/parts/%s", uuid.New(), uuid.New()), nil, nil)
	if w.Code != http.StatusNoContent || !called {
		t.Fatalf("status: got %d called=%v", w.Code, called)
	}
}

func TestListOrders_Filters(t *testing.T) {
	r, f := newTestRouter()
	customer := uuid.New()

	f.orders.ListOrdersFn = func(ctx context.Context, flt service.OrderListFilter) ([]models.RepairOrder, int64, error) {
		if flt.Status == nil || *flt.Status != models.OrderStatusRepairing {
			t.Fatalf("status filter: %v", flt.Status)
		}
		if flt.CustomerID == nil || *flt.CustomerID != customer {
			t.Fatalf("customer filter: %v", flt.CustomerID)
		}
		if flt.Limit != 10 || flt.Offset != 20 {
			t.Fatalf("paging: %d %d", flt.Limit, flt.Offset)
		}
		return []models.RepairOrder{{ID: uuid.New(), TotalCost: decimal.NewFromInt(50), AdvancePayment: decimal.NewFromInt(80)}}, 1, nil
	}

	w := doJSON(t, r, http.MethodGet,
		"/api/v1/orders?status=repairing&customer_id="+customer.String()+"&limit=10&offset=20", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	items := decode(t, w)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["pending_balance"] != "0" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestSwaggerDoc(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/swagger/doc.json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	doc := decode(t, w)
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatalf("no paths in %v", doc)
	}
	for _, p := range []string{"/api/v1/sales", "/api/v1/orders/{id}/transitions", "/api/v1/orders/{id}/parts/{productId}", "/api/v1/stock/low"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("path %s not documented", p)
		}
	}
	defs, _ := doc["definitions"].(map[string]any)
	if _, ok := defs["dto.BaseError"]; !ok {
		t.Fatal("error envelope not documented")
	}
}

func TestCancelPurchaseOrder(t *testing.T) {
	r, f := newTestRouter()
	poID := uuid.New()
	closed := false

	f.commerce.CancelPurchaseOrderFn = func(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
		if id != poID {
			t.Fatalf("id: got %s", id)
		}
		if closed {
			return nil, fmt.Errorf("%w: po=%s", service.ErrPurchaseOrderClosed, id)
		}
		closed = true
		return &models.PurchaseOrder{ID: id, Status: models.PurchaseOrderCancelled}, nil
	}

	headers := map[string]string{"X-Actor-ID": uuid.NewString()}
	w := doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/cancel", nil, headers)
	if w.Code != http.StatusOK || decode(t, w)["status"] != "cancelled" {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/cancel", nil, headers)
	if w.Code != http.StatusConflict {
		t.Fatalf("second cancel: got %d", w.Code)
	}
}

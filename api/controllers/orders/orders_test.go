package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/posadmin-backend/api/middleware"
	internalorders "github.com/angelmondragon/posadmin-backend/internal/orders"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/logger"
	"github.com/angelmondragon/posadmin-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func authedRequest(method, target, body string, userID uuid.UUID, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error
}

func TestPlaceOrder(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	customerID := uuid.New()
	productID := uuid.New()
	body := `{"customer_id":"` + customerID.String() + `","items":[{"product_id":"` + productID.String() + `","quantity":2}]}`

	t.Run("missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Place(&stubOrderService{}, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("empty items", func(t *testing.T) {
		svc := &stubOrderService{}
		req := authedRequest(http.MethodPost, "/api/v1/orders", `{"customer_id":"`+customerID.String()+`","items":[]}`, userID, enums.UserRoleStaff)
		rec := httptest.NewRecorder()
		Place(svc, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
		if svc.placed != nil {
			t.Fatal("service should not be called for invalid input")
		}
	})

	t.Run("non positive quantity", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/api/v1/orders", `{"customer_id":"`+customerID.String()+`","items":[{"product_id":"`+productID.String()+`","quantity":-1}]}`, userID, enums.UserRoleStaff)
		rec := httptest.NewRecorder()
		Place(&stubOrderService{}, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc := &stubOrderService{}
		req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID, enums.UserRoleStaff)
		rec := httptest.NewRecorder()
		Place(svc, stubCustomers{exists: false}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
		if svc.placed != nil {
			t.Fatal("service should not be called for unknown customer")
		}
	})

	t.Run("insufficient stock", func(t *testing.T) {
		svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for Widget").
			WithDetails(internalorders.InsufficientStockDetails{ProductID: productID, ProductName: "Widget", Requested: 2, Available: 1})}
		req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID, enums.UserRoleStaff)
		rec := httptest.NewRecorder()
		Place(svc, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", rec.Code)
		}
		apiErr := decodeError(t, rec)
		if apiErr.Code != string(pkgerrors.CodeInsufficientStock) {
			t.Fatalf("unexpected code %s", apiErr.Code)
		}
		details, ok := apiErr.Details.(map[string]any)
		if !ok || details["available"] != float64(1) {
			t.Fatalf("expected availability details, got %v", apiErr.Details)
		}
	})

	t.Run("product unavailable", func(t *testing.T) {
		svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeProductUnavailable, "product unavailable")}
		req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID, enums.UserRoleStaff)
		rec := httptest.NewRecorder()
		Place(svc, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := &stubOrderService{}
		req := authedRequest(http.MethodPost, "/api/v1/orders", body, userID, enums.UserRoleAdmin)
		rec := httptest.NewRecorder()
		Place(svc, stubCustomers{exists: true}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.placed == nil {
			t.Fatal("expected PlaceOrder to be invoked")
		}
		if svc.placed.CustomerID != customerID || svc.placed.ActorUserID != userID || svc.placed.ActorRole != enums.UserRoleAdmin {
			t.Fatalf("unexpected input %+v", svc.placed)
		}
		if len(svc.placed.Lines) != 1 || svc.placed.Lines[0].Quantity != 2 {
			t.Fatalf("unexpected lines %+v", svc.placed.Lines)
		}
	})
}

func TestListOrdersFilters(t *testing.T) {
	logg := testLogger()
	customerID := uuid.New()

	t.Run("parses filters", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?customer_id="+customerID.String()+"&from=2024-01-01&limit=10", nil)
		rec := httptest.NewRecorder()
		List(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if svc.listed.Filters.CustomerID == nil || *svc.listed.Filters.CustomerID != customerID {
			t.Fatalf("customer filter not applied: %+v", svc.listed.Filters)
		}
		if svc.listed.Filters.From == nil || svc.listed.Filters.To != nil {
			t.Fatalf("unexpected window %+v", svc.listed.Filters)
		}
		if svc.listed.Pagination.Limit != 10 {
			t.Fatalf("expected limit 10 got %d", svc.listed.Pagination.Limit)
		}
	})

	t.Run("bad customer id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?customer_id=nope", nil)
		rec := httptest.NewRecorder()
		List(&stubOrderService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestGetOrder(t *testing.T) {
	logg := testLogger()
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	Get(&stubOrderService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var env struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.ID != orderID {
		t.Fatalf("expected order %s got %s", orderID, env.Data.ID)
	}
}

type stubOrderService struct {
	err    error
	placed *internalorders.PlaceOrderInput
	listed internalorders.ListOrdersInput
}

func (s *stubOrderService) PlaceOrder(_ context.Context, input internalorders.PlaceOrderInput) (*internalorders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.placed = &input
	return &internalorders.OrderDTO{ID: uuid.New(), CustomerID: input.CustomerID, TotalAmount: decimal.RequireFromString("10.00")}, nil
}

func (s *stubOrderService) ListOrders(_ context.Context, input internalorders.ListOrdersInput) (*internalorders.OrderList, error) {
	s.listed = input
	return &internalorders.OrderList{Orders: []internalorders.OrderDTO{}}, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	return &internalorders.OrderDTO{ID: orderID}, nil
}

type stubCustomers struct {
	exists bool
}

func (s stubCustomers) Exists(context.Context, uuid.UUID) (bool, error) {
	return s.exists, nil
}

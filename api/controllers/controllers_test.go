package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/posadmin-backend/api/middleware"
	"github.com/angelmondragon/posadmin-backend/internal/auth"
	"github.com/angelmondragon/posadmin-backend/internal/customers"
	productsvc "github.com/angelmondragon/posadmin-backend/internal/products"
	"github.com/angelmondragon/posadmin-backend/internal/stats"
	"github.com/angelmondragon/posadmin-backend/internal/stock"
	"github.com/angelmondragon/posadmin-backend/internal/users"
	"github.com/angelmondragon/posadmin-backend/pkg/config"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/posadmin-backend/pkg/errors"
	"github.com/angelmondragon/posadmin-backend/pkg/logger"
	"github.com/angelmondragon/posadmin-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestActorFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ActorFromRequest(req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	userID := uuid.New()
	actor, err := ActorFromRequest(withActor(req, userID, enums.UserRoleStaff))
	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, enums.UserRoleStaff, actor.Role)
}

func TestProductsListVisibilityByRole(t *testing.T) {
	logg := testLogger()

	cases := []struct {
		role          enums.UserRole
		includeHidden bool
	}{
		{enums.UserRoleStaff, false},
		{enums.UserRoleAdmin, true},
	}
	for _, tc := range cases {
		svc := &stubProductService{}
		req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/products?q=+tea+", nil), uuid.New(), tc.role)
		rec := httptest.NewRecorder()
		ProductsList(svc, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.includeHidden, svc.listed.IncludeHidden, "role %s", tc.role)
		assert.Equal(t, "tea", svc.listed.Query)
		assert.Equal(t, pagination.DefaultLimit, svc.listed.Pagination.Limit)
	}
}

func TestProductGetHiddenForStaff(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()
	svc := &stubProductService{}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil), "productId", productID.String())
	req = withActor(req, uuid.New(), enums.UserRoleStaff)
	rec := httptest.NewRecorder()
	ProductGet(svc, logg).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, svc.getIncludeHidden)
}

func TestProductCreate(t *testing.T) {
	logg := testLogger()

	t.Run("defaults to active", func(t *testing.T) {
		svc := &stubProductService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Tea","price":"4.50","stock_quantity":3}`))
		rec := httptest.NewRecorder()
		ProductCreate(svc, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, enums.ProductStatusActive, svc.created.Status)
		assert.True(t, svc.created.Price.Equal(decimal.RequireFromString("4.50")))
	})

	t.Run("bad status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Tea","price":"1","status":"archived"}`))
		rec := httptest.NewRecorder()
		ProductCreate(&stubProductService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative stock", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Tea","price":"1","stock_quantity":-2}`))
		rec := httptest.NewRecorder()
		ProductCreate(&stubProductService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductDeleteInvalidID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/nope", nil), "productId", "not-a-uuid")
	rec := httptest.NewRecorder()
	ProductDelete(&stubProductService{}, testLogger()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductToggleStatus(t *testing.T) {
	productID := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/", nil), "productId", productID.String())
	rec := httptest.NewRecorder()
	svc := &stubProductService{}
	ProductToggleStatus(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, productID, svc.toggled)
}

func TestCustomerHandlers(t *testing.T) {
	logg := testLogger()

	t.Run("create", func(t *testing.T) {
		svc := &stubCustomerService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":"Ana","phone":"5551234"}`))
		rec := httptest.NewRecorder()
		CustomerCreate(svc, logg).ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Ana", svc.created.Name)
	})

	t.Run("create missing phone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":"Ana"}`))
		rec := httptest.NewRecorder()
		CustomerCreate(&stubCustomerService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete conflict", func(t *testing.T) {
		svc := &stubCustomerService{deleteErr: pkgerrors.New(pkgerrors.CodeConflict, "customer has orders")}
		id := uuid.New()
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "customerId", id.String())
		rec := httptest.NewRecorder()
		CustomerDelete(svc, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		id := uuid.New()
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "customerId", id.String())
		rec := httptest.NewRecorder()
		CustomerDelete(&stubCustomerService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestStockEntryCreatePassesActor(t *testing.T) {
	svc := &stubStockService{}
	userID := uuid.New()
	productID := uuid.New()
	body := `{"note":"weekly","items":[{"product_id":"` + productID.String() + `","quantity":5,"cost_price":"2.10"}]}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/stock-entries", strings.NewReader(body)), userID, enums.UserRoleStaff)
	rec := httptest.NewRecorder()
	StockEntryCreate(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, svc.created.ActorUserID)
	require.Len(t, svc.created.Items, 1)
	assert.Equal(t, 5, svc.created.Items[0].Quantity)
}

func TestStatsInventoryThreshold(t *testing.T) {
	svc := &stubStatsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/inventory?threshold=3", nil)
	rec := httptest.NewRecorder()
	StatsInventory(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.threshold)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats/inventory?threshold=-1", nil)
	rec = httptest.NewRecorder()
	StatsInventory(svc, testLogger()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLogoutUsesAccessID(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "jti-1"))
	rec := httptest.NewRecorder()
	AuthLogout(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "jti-1", svc.revoked)
}

func TestAuthMe(t *testing.T) {
	svc := &stubAuthService{}
	userID := uuid.New()
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), userID, enums.UserRoleAdmin)
	rec := httptest.NewRecorder()
	AuthMe(svc, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{err: errors.New("down")}, stubPinger{})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubProductService struct {
	listed           productsvc.ListProductsInput
	created          productsvc.CreateProductInput
	getIncludeHidden bool
	toggled          uuid.UUID
}

func (s *stubProductService) CreateProduct(_ context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.created = input
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name, Price: input.Price, Status: input.Status}, nil
}

func (s *stubProductService) UpdateProduct(_ context.Context, id uuid.UUID, _ productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{ID: id}, nil
}

func (s *stubProductService) DeleteProduct(context.Context, uuid.UUID) error { return nil }

func (s *stubProductService) ToggleStatus(_ context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	s.toggled = id
	return &productsvc.ProductDTO{ID: id, Status: enums.ProductStatusHidden}, nil
}

func (s *stubProductService) GetProduct(_ context.Context, _ uuid.UUID, includeHidden bool) (*productsvc.ProductDTO, error) {
	s.getIncludeHidden = includeHidden
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) ListProducts(_ context.Context, input productsvc.ListProductsInput) (*productsvc.ProductListResult, error) {
	s.listed = input
	return &productsvc.ProductListResult{Products: []productsvc.ProductDTO{}}, nil
}

type stubCustomerService struct {
	created   customers.CreateCustomerInput
	deleteErr error
}

func (s *stubCustomerService) Create(_ context.Context, input customers.CreateCustomerInput) (*customers.CustomerDTO, error) {
	s.created = input
	return &customers.CustomerDTO{ID: uuid.New(), Name: input.Name, Phone: input.Phone}, nil
}

func (s *stubCustomerService) List(context.Context, customers.ListCustomersInput) (*customers.CustomerList, error) {
	return &customers.CustomerList{}, nil
}

func (s *stubCustomerService) Get(_ context.Context, id uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, nil
}

func (s *stubCustomerService) Update(_ context.Context, id uuid.UUID, _ customers.UpdateCustomerInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, nil
}

func (s *stubCustomerService) Delete(context.Context, uuid.UUID) error { return s.deleteErr }

func (s *stubCustomerService) Exists(context.Context, uuid.UUID) (bool, error) { return true, nil }

type stubStockService struct {
	created stock.CreateEntryInput
}

func (s *stubStockService) Create(_ context.Context, input stock.CreateEntryInput) (*stock.EntryDTO, error) {
	s.created = input
	return &stock.EntryDTO{ID: uuid.New()}, nil
}

func (s *stubStockService) List(context.Context, pagination.Params) (*stock.EntryList, error) {
	return &stock.EntryList{}, nil
}

func (s *stubStockService) Get(_ context.Context, id uuid.UUID) (*stock.EntryDTO, error) {
	return &stock.EntryDTO{ID: id}, nil
}

func (s *stubStockService) UpdateNote(_ context.Context, id uuid.UUID, _ *string) (*stock.EntryDTO, error) {
	return &stock.EntryDTO{ID: id}, nil
}

func (s *stubStockService) Delete(context.Context, uuid.UUID) error { return nil }

type stubStatsService struct {
	threshold int
}

func (s *stubStatsService) Overview(context.Context) (*stats.Overview, error) {
	return &stats.Overview{}, nil
}

func (s *stubStatsService) Inventory(_ context.Context, threshold int) (*stats.Inventory, error) {
	s.threshold = threshold
	return &stats.Inventory{Threshold: threshold}, nil
}

func (s *stubStatsService) CustomerHistory(context.Context, uuid.UUID) (*stats.CustomerHistory, error) {
	return &stats.CustomerHistory{}, nil
}

type stubAuthService struct {
	revoked string
}

func (s *stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}

func (s *stubAuthService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/catalog"
	"github.com/matheusmosca/storefront/internal/identity"
	"github.com/matheusmosca/storefront/internal/inventory"
	"github.com/matheusmosca/storefront/internal/orders"
	"github.com/matheusmosca/storefront/internal/reports"
	"github.com/matheusmosca/storefront/internal/storage"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) Search(ctx context.Context, criteria catalog.Criteria) (catalog.Page, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(catalog.Page), args.Error(1)
}

func (m *MockCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*catalog.Product)
	return product, args.Error(1)
}

type MockBasket struct{ mock.Mock }

func (m *MockBasket) List(ctx context.Context, userID string) ([]basket.Line, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]basket.Line)
	return lines, args.Error(1)
}

func (m *MockBasket) Put(ctx context.Context, userID string, productID int64, count int) error {
	return m.Called(ctx, userID, productID, count).Error(0)
}

func (m *MockBasket) Remove(ctx context.Context, userID string, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

type MockOrders struct{ mock.Mock }

func (m *MockOrders) PlaceOrder(ctx context.Context, userID string, contact orders.ContactInfo) (string, error) {
	args := m.Called(ctx, userID, contact)
	return args.String(0), args.Error(1)
}

func (m *MockOrders) GetOrder(ctx context.Context, userID, orderID string) (*orders.OrderDetails, error) {
	args := m.Called(ctx, userID, orderID)
	details, _ := args.Get(0).(*orders.OrderDetails)
	return details, args.Error(1)
}

type MockReports struct{ mock.Mock }

func (m *MockReports) RecentOrders(ctx context.Context, limit int) ([]reports.RecentOrder, error) {
	args := m.Called(ctx, limit)
	result, _ := args.Get(0).([]reports.RecentOrder)
	return result, args.Error(1)
}

func (m *MockReports) TopSellingProducts(ctx context.Context, limit int) ([]reports.SalesRank, error) {
	args := m.Called(ctx, limit)
	result, _ := args.Get(0).([]reports.SalesRank)
	return result, args.Error(1)
}

func (m *MockReports) TopSellingCategories(ctx context.Context, limit int) ([]reports.SalesRank, error) {
	args := m.Called(ctx, limit)
	result, _ := args.Get(0).([]reports.SalesRank)
	return result, args.Error(1)
}

type MockResolver struct{ mock.Mock }

func (m *MockResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type testServer struct {
	router   *gin.Engine
	catalog  *MockCatalog
	baskets  *MockBasket
	orders   *MockOrders
	reports  *MockReports
	resolver *MockResolver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		catalog:  new(MockCatalog),
		baskets:  new(MockBasket),
		orders:   new(MockOrders),
		reports:  new(MockReports),
		resolver: new(MockResolver),
	}
	s.resolver.On("ResolveUser", mock.Anything, "good-token").Return("user-1", nil).Maybe()
	s.resolver.On("ResolveUser", mock.Anything, "bad-token").Return("", identity.ErrUnauthorizedIdentity).Maybe()

	logger := zaptest.NewLogger(t)
	handler := NewHandler(s.catalog, s.baskets, s.orders, s.reports, logger)
	s.router = NewRouter(handler, s.resolver, "storefront-test", logger)
	return s
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

const validOrderBody = `{"firstName":"Ada","lastName":"Lovelace","phone":"5551234567","warehouseId":3}`

func TestPlaceOrder_Created(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	contact := orders.ContactInfo{FirstName: "Ada", LastName: "Lovelace", Phone: "5551234567", WarehouseID: 3}
	s.orders.On("PlaceOrder", mock.Anything, "user-1", contact).Return("7b0c1e9a-0000-4000-8000-000000000001", nil)

	// Act
	w := s.do(http.MethodPost, "/api/orders", "good-token", validOrderBody)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"orderId":"7b0c1e9a-0000-4000-8000-000000000001"}`, w.Body.String())
	s.orders.AssertExpectations(t)
}

func TestPlaceOrder_RequiresIdentity(t *testing.T) {
	s := newTestServer(t)

	missing := s.do(http.MethodPost, "/api/orders", "", `{}`)
	rejected := s.do(http.MethodPost, "/api/orders", "bad-token", `{}`)

	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, http.StatusUnauthorized, rejected.Code)
	s.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid contact", fmt.Errorf("%w: malformed phone", orders.ErrInvalidContactInfo), http.StatusBadRequest},
		{"empty basket", orders.ErrEmptyBasket, http.StatusBadRequest},
		{"insufficient stock", fmt.Errorf("%w for product 2", inventory.ErrInsufficientStock), http.StatusConflict},
		{"storage conflict", fmt.Errorf("failed to commit: %w", storage.ErrStorageConflict), http.StatusConflict},
		{"deleted product", inventory.ErrProductNotFound, http.StatusNotFound},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.orders.On("PlaceOrder", mock.Anything, "user-1", mock.Anything).Return("", tt.err)

			w := s.do(http.MethodPost, "/api/orders", "good-token", validOrderBody)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPlaceOrder_InternalErrorDoesNotLeak(t *testing.T) {
	s := newTestServer(t)
	s.orders.On("PlaceOrder", mock.Anything, "user-1", mock.Anything).Return("", errors.New("pq: password=secret"))

	w := s.do(http.MethodPost, "/api/orders", "good-token", validOrderBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestSearchProducts_ParsesCriteria(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	category := int64(4)
	priceMin := decimal.RequireFromString("9.99")
	quantityMin := 1
	expected := catalog.Criteria{
		Query:       "shirt",
		CategoryID:  &category,
		PriceMin:    &priceMin,
		QuantityMin: &quantityMin,
		Page:        2,
		PageSize:    20,
	}
	s.catalog.On("Search", mock.Anything, expected).Return(catalog.Page{Items: []catalog.Product{}, Total: 0, Page: 2, PageSize: 20}, nil)

	// Act
	w := s.do(http.MethodGet, "/api/products?query=shirt&categoryId=4&priceMin=9.99&quantityMin=1&page=2&pageSize=20", "", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	s.catalog.AssertExpectations(t)
}

func TestSearchProducts_InvalidFilter(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/products?priceMin=cheap", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.catalog.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	s := newTestServer(t)
	s.catalog.On("GetProduct", mock.Anything, int64(42)).Return(nil, catalog.ErrProductNotFound)

	w := s.do(http.MethodGet, "/api/products/42", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBasket_PutListRemove(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	s.baskets.On("Put", mock.Anything, "user-1", int64(7), 2).Return(nil)
	s.baskets.On("List", mock.Anything, "user-1").Return([]basket.Line{
		{UserID: "user-1", ProductID: 7, Count: 2, ProductName: "Shirt", Price: decimal.RequireFromString("15.00")},
	}, nil)
	s.baskets.On("Remove", mock.Anything, "user-1", int64(7)).Return(nil)

	// Act
	put := s.do(http.MethodPut, "/api/basket/7", "good-token", `{"count":2}`)
	list := s.do(http.MethodGet, "/api/basket", "good-token", "")
	remove := s.do(http.MethodDelete, "/api/basket/7", "good-token", "")

	// Assert
	assert.Equal(t, http.StatusNoContent, put.Code)
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, http.StatusNoContent, remove.Code)

	var body struct {
		Lines []json.RawMessage `json:"lines"`
		Total string            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &body))
	assert.Len(t, body.Lines, 1)
	assert.Equal(t, "30", body.Total)
}

func TestBasket_InvalidCount(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"count":0}`},
		{"negative", `{"count":-2}`},
		{"missing", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(http.MethodPut, "/api/basket/7", "good-token", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			s.baskets.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBasket_InvalidCountFromStore(t *testing.T) {
	s := newTestServer(t)
	s.baskets.On("Put", mock.Anything, "user-1", int64(7), 3).Return(basket.ErrInvalidCount)

	w := s.do(http.MethodPut, "/api/basket/7", "good-token", `{"count":3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrder_RejectsIncompleteBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{}`},
		{"missing last name", `{"firstName":"Ada","phone":"5551234567","warehouseId":3}`},
		{"missing phone", `{"firstName":"Ada","lastName":"Lovelace","warehouseId":3}`},
		{"zero warehouse", `{"firstName":"Ada","lastName":"Lovelace","phone":"5551234567","warehouseId":0}`},
		{"negative warehouse", `{"firstName":"Ada","lastName":"Lovelace","phone":"5551234567","warehouseId":-1}`},
		{"malformed json", `{"firstName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(http.MethodPost, "/api/orders", "good-token", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			s.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newTestServer(t)
	s.orders.On("GetOrder", mock.Anything, "user-1", "missing").Return(nil, orders.ErrOrderNotFound)

	w := s.do(http.MethodGet, "/api/orders/missing", "good-token", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReports_PassLimit(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	s.reports.On("TopSellingProducts", mock.Anything, 1).Return([]reports.SalesRank{{ID: 2, Name: "B", Count: 5}}, nil)
	s.reports.On("TopSellingCategories", mock.Anything, 0).Return([]reports.SalesRank{}, nil)
	s.reports.On("RecentOrders", mock.Anything, 0).Return([]reports.RecentOrder{}, nil)

	// Act
	products := s.do(http.MethodGet, "/api/orders/popular-products?limit=1", "", "")
	categories := s.do(http.MethodGet, "/api/orders/popular-categories", "", "")
	recent := s.do(http.MethodGet, "/api/orders", "", "")

	// Assert
	assert.Equal(t, http.StatusOK, products.Code)
	assert.JSONEq(t, `[{"id":2,"name":"B","count":5}]`, products.Body.String())
	assert.Equal(t, http.StatusOK, categories.Code)
	assert.JSONEq(t, `[]`, categories.Body.String())
	assert.Equal(t, http.StatusOK, recent.Code)
}

func TestReports_InvalidLimit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/orders/popular-products?limit=many", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	"github.com/JamalC77/chaosstickers-backend/internal/handler"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

type orderTestEnv struct {
	e         *echo.Echo
	uc        *usecase.OrderUsecase
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	customers *CustomerRepoMock
	vendor    *VendorMock
	sessions  *SessionResolverMock
}

func newOrderEnv() *orderTestEnv {
	env := &orderTestEnv{
		e:         echo.New(),
		orders:    &OrderRepoMock{},
		items:     &OrderItemRepoMock{},
		customers: &CustomerRepoMock{},
		vendor:    &VendorMock{},
		sessions:  &SessionResolverMock{},
	}
	env.uc = usecase.NewOrderUsecase(env.orders, env.items, env.customers, env.vendor, env.sessions)
	env.uc.SetConfirmPolling(1, time.Millisecond)

	handler.NewOrderHandler(env.uc).RegisterRoutes(env.e)
	return env
}

func (env *orderTestEnv) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestOrderDetail_Success(t *testing.T) {
	env := newOrderEnv()

	env.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, CustomerID: 7, Status: model.OrderStatusProcessing}, nil)
	env.items.On("ListByOrderID", mock.Anything, int64(42)).
		Return([]model.OrderItem{{PrintifyProductID: "prod_10", PrintifyVariantID: 11871, Quantity: 1, ImageURL: "https://img.test/10.png"}}, nil)

	rec := env.get("/api/orders/42")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, "processing", out.Status)
	assert.Len(t, out.Items, 1)
}

func TestOrderDetail_InvalidID(t *testing.T) {
	env := newOrderEnv()

	rec := env.get("/api/orders/abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}

func TestOrderDetail_NotFound(t *testing.T) {
	env := newOrderEnv()

	env.orders.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	rec := env.get("/api/orders/99")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderConfirm_Completed(t *testing.T) {
	env := newOrderEnv()

	env.sessions.On("PaymentIDBySession", mock.Anything, "cs_test_1").Return("pi_test_123", nil)
	env.orders.On("FindByPaymentID", mock.Anything, "pi_test_123").
		Return(model.Order{ID: 42, Status: model.OrderStatusProcessing}, true, nil)
	env.items.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	rec := env.get("/api/orders/confirm?sessionId=cs_test_1")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out usecase.ConfirmOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "completed", out.Status)
	assert.NotNil(t, out.Order)
	assert.Equal(t, int64(42), out.Order.ID)
}

// webhookがまだ来ていない（ポーリング使い切り）→ 200でprocessing
func TestOrderConfirm_StillProcessing(t *testing.T) {
	env := newOrderEnv()

	env.sessions.On("PaymentIDBySession", mock.Anything, "cs_test_1").Return("pi_test_123", nil)
	env.orders.On("FindByPaymentID", mock.Anything, "pi_test_123").Return(model.Order{}, false, nil)

	rec := env.get("/api/orders/confirm?sessionId=cs_test_1")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out usecase.ConfirmOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "processing", out.Status)
	assert.Nil(t, out.Order)
}

func TestCustomerOrders_Success(t *testing.T) {
	env := newOrderEnv()

	env.customers.On("FindByID", mock.Anything, int64(7)).
		Return(model.Customer{ID: 7, Email: "ada@example.com"}, nil)
	env.orders.On("ListByCustomerID", mock.Anything, int64(7), 1, 20).
		Return([]model.Order{{ID: 42, Status: model.OrderStatusShipped}}, int64(1), nil)

	rec := env.get("/api/customers/7/orders")

	assert.Equal(t, http.StatusOK, rec.Code)
	var out usecase.OrderListOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Orders, 1)
	assert.Equal(t, int64(42), out.Orders[0].ID)
}

func TestCustomerOrders_PaginationParams(t *testing.T) {
	env := newOrderEnv()

	env.customers.On("FindByID", mock.Anything, int64(7)).Return(model.Customer{ID: 7}, nil)
	env.orders.On("ListByCustomerID", mock.Anything, int64(7), 3, 5).
		Return([]model.Order{}, int64(11), nil)

	rec := env.get("/api/customers/7/orders?page=3&limit=5")

	assert.Equal(t, http.StatusOK, rec.Code)
	env.orders.AssertExpectations(t)
}

func TestCustomerOrders_UnknownCustomer(t *testing.T) {
	env := newOrderEnv()

	env.customers.On("FindByID", mock.Anything, int64(99)).
		Return(model.Customer{}, repo.ErrNotFound)

	rec := env.get("/api/customers/99/orders")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env.orders.AssertNotCalled(t, "ListByCustomerID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerOrders_InvalidID(t *testing.T) {
	env := newOrderEnv()

	rec := env.get("/api/customers/abc/orders")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}

func TestOrderConfirm_MissingSessionID(t *testing.T) {
	env := newOrderEnv()

	rec := env.get("/api/orders/confirm")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sessionId is required")
	env.sessions.AssertNotCalled(t, "PaymentIDBySession", mock.Anything, mock.Anything)
}

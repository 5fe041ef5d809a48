package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	"github.com/JamalC77/chaosstickers-backend/internal/fulfillment"
	"github.com/JamalC77/chaosstickers-backend/internal/notification"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

// ハンドラはusecaseの具象を持つので、テストはrepo/ベンダー層のモックで組み立てる

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, customerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByPaymentID(ctx context.Context, paymentID string) (model.Order, bool, error) {
	args := m.Called(ctx, paymentID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) FindByPrintifyOrderID(ctx context.Context, printifyOrderID string) (model.Order, bool, error) {
	args := m.Called(ctx, printifyOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CustomerRepoMock struct{ mock.Mock }

func (m *CustomerRepoMock) Upsert(ctx context.Context, email string, name string) (model.Customer, error) {
	args := m.Called(ctx, email, name)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

func (m *CustomerRepoMock) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

type ImageRepoMock struct{ mock.Mock }

func (m *ImageRepoMock) Create(ctx context.Context, image *model.GeneratedImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *ImageRepoMock) FindByID(ctx context.Context, imageID int64) (model.GeneratedImage, error) {
	args := m.Called(ctx, imageID)
	img, _ := args.Get(0).(model.GeneratedImage)
	return img, args.Error(1)
}

func (m *ImageRepoMock) FindByIDs(ctx context.Context, imageIDs []int64) ([]model.GeneratedImage, error) {
	args := m.Called(ctx, imageIDs)
	images, _ := args.Get(0).([]model.GeneratedImage)
	return images, args.Error(1)
}

type VendorMock struct{ mock.Mock }

func (m *VendorMock) UploadImage(ctx context.Context, imageURL string) (string, error) {
	args := m.Called(ctx, imageURL)
	return args.String(0), args.Error(1)
}

func (m *VendorMock) GetVariants(ctx context.Context, blueprintID int, printProviderID int) ([]fulfillment.Variant, error) {
	args := m.Called(ctx, blueprintID, printProviderID)
	vs, _ := args.Get(0).([]fulfillment.Variant)
	return vs, args.Error(1)
}

func (m *VendorMock) CreateProduct(ctx context.Context, in fulfillment.CreateProductInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *VendorMock) SubmitOrder(ctx context.Context, req fulfillment.OrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *VendorMock) GetOrder(ctx context.Context, printifyOrderID string) (fulfillment.Order, error) {
	args := m.Called(ctx, printifyOrderID)
	o, _ := args.Get(0).(fulfillment.Order)
	return o, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) SendOrderConfirmation(ctx context.Context, msg notification.OrderConfirmation) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type SessionResolverMock struct{ mock.Mock }

func (m *SessionResolverMock) PaymentIDBySession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	OrdersRepo     repo.OrderRepository
	OrderItemsRepo repo.OrderItemRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.OrdersRepo }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.OrderItemsRepo }

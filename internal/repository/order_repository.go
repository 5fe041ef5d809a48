package repository

import (
	"context"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)
	// Create はpayment_idのunique制約に当たるとErrDuplicatePaymentを返す。
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 冪等性チェック（同じ決済IDなら同じ注文を返す）
	FindByPaymentID(ctx context.Context, paymentID string) (model.Order, bool, error)
	// ベンダー注文IDからの逆引き（ベンダーのステータスwebhook用）
	FindByPrintifyOrderID(ctx context.Context, printifyOrderID string) (model.Order, bool, error)
}

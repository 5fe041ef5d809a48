package usecase

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

// SessionResolver は checkout sessionId → 決済ID の解決（Stripe実装）。
type SessionResolver interface {
	PaymentIDBySession(ctx context.Context, sessionID string) (string, error)
}

const (
	// checkoutリダイレクトはwebhookより先に着くことがあるので、confirmは
	// 数秒おきに数回だけ粘ってから「処理遅延」を返す
	defaultConfirmAttempts = 7
	defaultConfirmDelay    = 3 * time.Second
)

type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	customers  repo.CustomerRepository
	vendor     VendorClient
	sessions   SessionResolver

	confirmAttempts int
	confirmDelay    time.Duration
}

func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository, customers repo.CustomerRepository, vendor VendorClient, sessions SessionResolver) *OrderUsecase {
	return &OrderUsecase{
		orders:          orders,
		orderItems:      orderItems,
		customers:       customers,
		vendor:          vendor,
		sessions:        sessions,
		confirmAttempts: defaultConfirmAttempts,
		confirmDelay:    defaultConfirmDelay,
	}
}

// SetConfirmPolling はテスト用に試行回数と間隔を差し替える。
func (u *OrderUsecase) SetConfirmPolling(attempts int, delay time.Duration) {
	u.confirmAttempts = attempts
	u.confirmDelay = delay
}

type OrderItemOutput struct {
	PrintifyProductID string `json:"printify_product_id"`
	PrintifyVariantID int    `json:"printify_variant_id"`
	Quantity          int64  `json:"quantity"`
	ImageURL          string `json:"image_url"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customer_id"`
	PrintifyOrderID *string           `json:"printify_order_id,omitempty"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// GetOrder は注文＋明細を返す。ベンダー注文IDが付いていれば読み取りついでに
// ベンダーの状態を同期して、変わっていれば永続化する。ベンダー障害で
// 読み取り自体は失敗させない（古い状態のまま返してログだけ残す）。
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, err
	}
	if err != nil {
		return OrderOutput{}, NewStorageError(err, "failed to load order %d", orderID)
	}

	if o.PrintifyOrderID != nil {
		o = u.refreshVendorStatus(ctx, o)
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewStorageError(err, "failed to load items of order %d", orderID)
	}

	return toOrderOutput(o, items), nil
}

func (u *OrderUsecase) refreshVendorStatus(ctx context.Context, o model.Order) model.Order {
	vo, err := u.vendor.GetOrder(ctx, *o.PrintifyOrderID)
	if err != nil {
		log.Warnf("order %d: vendor status refresh failed: %v", o.ID, err)
		return o
	}

	mapped, ok := MapVendorStatus(vo.Status)
	if !ok || !canTransition(o.Status, mapped) {
		return o
	}

	if err := u.orders.UpdateStatus(ctx, o.ID, mapped); err != nil {
		log.Warnf("order %d: failed to persist refreshed status %s: %v", o.ID, mapped, err)
		return o
	}
	o.Status = mapped
	return o
}

// 一覧では明細を展開しない（詳細はGET /api/orders/:idで取る）
type OrderSummaryOutput struct {
	ID              int64     `json:"id"`
	PrintifyOrderID *string   `json:"printify_order_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type OrderListOutput struct {
	Orders []OrderSummaryOutput `json:"orders"`
	Total  int64                `json:"total"`
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListCustomerOrders は顧客の注文履歴を新しい順にページングで返す。
// 顧客が存在しなければErrNotFound。
func (u *OrderUsecase) ListCustomerOrders(ctx context.Context, customerID int64, page int, limit int) (OrderListOutput, error) {
	if customerID <= 0 {
		return OrderListOutput{}, NewValidationError("invalid customer id")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	if _, err := u.customers.FindByID(ctx, customerID); err != nil {
		if err == repo.ErrNotFound {
			return OrderListOutput{}, err
		}
		return OrderListOutput{}, NewStorageError(err, "failed to load customer %d", customerID)
	}

	orders, total, err := u.orders.ListByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewStorageError(err, "failed to list orders of customer %d", customerID)
	}

	summaries := make([]OrderSummaryOutput, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummaryOutput{
			ID:              o.ID,
			PrintifyOrderID: o.PrintifyOrderID,
			Status:          string(o.Status),
			CreatedAt:       o.CreatedAt,
		})
	}

	return OrderListOutput{Orders: summaries, Total: total, Page: page, Limit: limit}, nil
}

type ConfirmOutput struct {
	Status  string       `json:"status"` // completed | processing
	Message string       `json:"message,omitempty"`
	Order   *OrderOutput `json:"order,omitempty"`
}

// ConfirmBySession はcheckoutセッションから注文を突き止める。webhookは
// 非同期なので、見つかるまで有限回ポーリングしてから「処理遅延」を報告する。
func (u *OrderUsecase) ConfirmBySession(ctx context.Context, sessionID string) (ConfirmOutput, error) {
	if sessionID == "" {
		return ConfirmOutput{}, NewValidationError("sessionId is required")
	}

	paymentID, err := u.sessions.PaymentIDBySession(ctx, sessionID)
	if err != nil {
		return ConfirmOutput{}, err
	}

	for attempt := 0; attempt < u.confirmAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ConfirmOutput{}, NewStorageError(ctx.Err(), "confirm polling cancelled")
			case <-time.After(u.confirmDelay):
			}
		}

		o, found, err := u.orders.FindByPaymentID(ctx, paymentID)
		if err != nil {
			return ConfirmOutput{}, NewStorageError(err, "failed to look up payment %s", paymentID)
		}
		if !found {
			continue
		}

		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return ConfirmOutput{}, NewStorageError(err, "failed to load items of order %d", o.ID)
		}
		out := toOrderOutput(o, items)
		return ConfirmOutput{Status: "completed", Order: &out}, nil
	}

	return ConfirmOutput{
		Status:  "processing",
		Message: "Your order is still being processed. Please check back in a moment.",
	}, nil
}

// ApplyVendorStatusEvent はベンダーがpushしてくるステータスイベントを適用する。
// イベントはベンダー注文IDかexternal_id（発注時に埋めた決済ID）のどちらで
// 相関されていてもよい。後退遷移は黙って無視する（pollと push のどちらが
// 先に来ても壊れないように）。
func (u *OrderUsecase) ApplyVendorStatusEvent(ctx context.Context, printifyOrderID string, externalID string, vendorStatus string) (bool, error) {
	if printifyOrderID == "" && externalID == "" {
		return false, NewValidationError("order_id or external_id is required")
	}

	mapped, ok := MapVendorStatus(vendorStatus)
	if !ok {
		return false, NewValidationError("unknown vendor status %q", vendorStatus)
	}

	o, found, err := u.resolveVendorOrder(ctx, printifyOrderID, externalID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, repo.ErrNotFound
	}

	if !canTransition(o.Status, mapped) {
		return false, nil
	}
	if err := u.orders.UpdateStatus(ctx, o.ID, mapped); err != nil {
		return false, NewStorageError(err, "failed to update order %d status", o.ID)
	}
	return true, nil
}

func (u *OrderUsecase) resolveVendorOrder(ctx context.Context, printifyOrderID string, externalID string) (model.Order, bool, error) {
	if printifyOrderID != "" {
		o, found, err := u.orders.FindByPrintifyOrderID(ctx, printifyOrderID)
		if err != nil {
			return model.Order{}, false, NewStorageError(err, "failed to look up vendor order %s", printifyOrderID)
		}
		if found {
			return o, true, nil
		}
	}
	if externalID != "" {
		o, found, err := u.orders.FindByPaymentID(ctx, externalID)
		if err != nil {
			return model.Order{}, false, NewStorageError(err, "failed to look up payment %s", externalID)
		}
		return o, found, nil
	}
	return model.Order{}, false, nil
}

// MapVendorStatus はPrintifyの注文ステータスをローカルのenumへ写す。
// 対応の無いものは(ok=false)で呼び出し側が無視する。
func MapVendorStatus(s string) (model.OrderStatus, bool) {
	switch s {
	case "pending", "payment-not-received":
		return model.OrderStatusPending, true
	case "on-hold", "checking-quality", "quality-approved",
		"ready-for-production", "sending-to-production", "in-production":
		return model.OrderStatusProcessing, true
	case "shipped":
		return model.OrderStatusShipped, true
	case "fulfilled", "partially-fulfilled":
		return model.OrderStatusFulfilled, true
	case "cancelled", "canceled":
		return model.OrderStatusCancelled, true
	}
	return "", false
}

var statusRank = map[model.OrderStatus]int{
	model.OrderStatusPending:    0,
	model.OrderStatusProcessing: 1,
	model.OrderStatusShipped:    2,
	model.OrderStatusFulfilled:  3,
	model.OrderStatusCancelled:  3,
}

// canTransition は前進する遷移だけ許す。fulfilled/cancelledからは動かない。
func canTransition(from model.OrderStatus, to model.OrderStatus) bool {
	if from == to {
		return false
	}
	if from == model.OrderStatusFulfilled || from == model.OrderStatusCancelled {
		return false
	}
	return statusRank[to] > statusRank[from]
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			PrintifyProductID: it.PrintifyProductID,
			PrintifyVariantID: it.PrintifyVariantID,
			Quantity:          it.Quantity,
			ImageURL:          it.ImageURL,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		PrintifyOrderID: o.PrintifyOrderID,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}

package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal は外部イベントでしか到達しない最終状態かどうか。
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusShipped, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Orderは決済1件につき1レコード。PaymentIDのunique indexが冪等性の要。
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      int64       `gorm:"not null;index" json:"customer_id"`
	PrintifyOrderID *string     `gorm:"type:varchar(64)" json:"printify_order_id,omitempty"` // ベンダー発注成功までnil
	PaymentID       string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"payment_id"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 配送先スナップショット（注文時点の値を非正規化で保持）
	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(255);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null" json:"email"`
	Phone     string `gorm:"type:varchar(64)" json:"phone"`
	Country   string `gorm:"type:varchar(2);not null" json:"country"`
	Region    string `gorm:"type:varchar(64)" json:"region"`
	Address1  string `gorm:"type:varchar(255);not null" json:"address1"`
	Address2  string `gorm:"type:varchar(255)" json:"address2"`
	City      string `gorm:"type:varchar(255);not null" json:"city"`
	Zip       string `gorm:"type:varchar(32);not null" json:"zip"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

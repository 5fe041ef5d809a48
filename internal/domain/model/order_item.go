package model

import "time"

// OrderItemは注文内の1明細。Orderと同一トランザクションで作成され、以後不変。
// 画像はURLスナップショットのみ保持する（GeneratedImageへのFKは持たない）。
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	PrintifyProductID string    `gorm:"type:varchar(64);not null" json:"printify_product_id"`
	PrintifyVariantID int       `gorm:"not null" json:"printify_variant_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	ImageURL          string    `gorm:"type:text;not null" json:"image_url"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

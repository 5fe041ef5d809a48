package model

import "time"

// GeneratedImageはAI生成デザイン1件。生成パイプライン側が作成し、
// フルフィルメントからは読み取り専用。
type GeneratedImage struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Prompt               string    `gorm:"type:text;not null" json:"prompt"`
	ImageURL             string    `gorm:"type:text;not null" json:"image_url"`
	NoBackgroundURL      string    `gorm:"type:text" json:"no_background_url"`
	HasRemovedBackground bool      `gorm:"not null;default:false" json:"has_removed_background"`
	CustomerID           *int64    `gorm:"index" json:"customer_id,omitempty"` // 匿名生成はnil
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// FulfillmentURL は印刷に使うURLを返す。背景除去済みがあればそれを優先する。
// どちらも空なら空文字を返す（呼び出し側でNotFound扱い）。
func (g GeneratedImage) FulfillmentURL() string {
	if g.HasRemovedBackground && g.NoBackgroundURL != "" {
		return g.NoBackgroundURL
	}
	return g.ImageURL
}

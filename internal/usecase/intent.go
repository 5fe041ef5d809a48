package usecase

// ShippingAddress は決済セッションのmetadataから取り出した配送先。
// フィールド名はフロントが埋めるJSONのキーに合わせる。
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

// LineItemIntent は (生成画像ID, 数量) の1組。
type LineItemIntent struct {
	ImageID  int64
	Quantity int64
}

// OrderIntent は型なしのmetadata bagを境界(抽出器)で一度だけ検証して作る
// 確定済みの注文意図。これ以降のステージはmetadataに触らない。
type OrderIntent struct {
	PaymentID string // 決済プロバイダのトランザクションID＝冪等キー
	Shipping  ShippingAddress
	Items     []LineItemIntent
}

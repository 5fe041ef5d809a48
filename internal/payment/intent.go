package payment

import (
	"encoding/json"
	"math"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

// checkoutセッション作成時にフロントが埋めるmetadataのキー
const (
	metaShippingAddress = "shipping_address"
	metaItems           = "items"
)

// metadataのJSONは数値がfloat64で来るのでポインタで受けて欠落と区別する
type rawLineItem struct {
	ImageID  *float64 `json:"image_id"`
	Quantity *float64 `json:"quantity"`
}

// ExtractOrderIntent は検証済みイベントのmetadata bagを型付きのOrderIntentに変換する。
// ここを通った後のステージはmetadataに一切触らない。
func ExtractOrderIntent(session *stripe.CheckoutSession) (usecase.OrderIntent, error) {
	// 決済ID（冪等キー）。文字列で取れない場合は失敗
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return usecase.OrderIntent{}, usecase.NewValidationError("session has no payment intent id")
	}
	paymentID := session.PaymentIntent.ID

	rawShipping, ok := session.Metadata[metaShippingAddress]
	if !ok || rawShipping == "" {
		return usecase.OrderIntent{}, usecase.NewValidationError("metadata %q is missing", metaShippingAddress)
	}
	var shipping usecase.ShippingAddress
	if err := json.Unmarshal([]byte(rawShipping), &shipping); err != nil {
		return usecase.OrderIntent{}, usecase.NewValidationError("metadata %q is not valid JSON", metaShippingAddress)
	}
	if err := validateShipping(shipping); err != nil {
		return usecase.OrderIntent{}, err
	}

	rawItems, ok := session.Metadata[metaItems]
	if !ok || rawItems == "" {
		return usecase.OrderIntent{}, usecase.NewValidationError("metadata %q is missing", metaItems)
	}
	var items []rawLineItem
	if err := json.Unmarshal([]byte(rawItems), &items); err != nil {
		return usecase.OrderIntent{}, usecase.NewValidationError("metadata %q is not a JSON array", metaItems)
	}
	if len(items) == 0 {
		return usecase.OrderIntent{}, usecase.NewValidationError("metadata %q is empty", metaItems)
	}

	// 1件でも形が崩れていたら全体を弾く（部分受理はしない）
	intentItems := make([]usecase.LineItemIntent, 0, len(items))
	for i, it := range items {
		if it.ImageID == nil {
			return usecase.OrderIntent{}, usecase.NewValidationError("item %d: image_id is required", i)
		}
		if it.Quantity == nil {
			return usecase.OrderIntent{}, usecase.NewValidationError("item %d: quantity is required", i)
		}
		// 数量は切り捨てて整数化（2.9 → 2）。0以下は不正
		qty := int64(math.Floor(*it.Quantity))
		if qty <= 0 {
			return usecase.OrderIntent{}, usecase.NewValidationError("item %d: quantity must be a positive integer", i)
		}
		intentItems = append(intentItems, usecase.LineItemIntent{
			ImageID:  int64(*it.ImageID),
			Quantity: qty,
		})
	}

	return usecase.OrderIntent{
		PaymentID: paymentID,
		Shipping:  shipping,
		Items:     intentItems,
	}, nil
}

func validateShipping(s usecase.ShippingAddress) error {
	if s.Email == "" {
		return usecase.NewValidationError("shipping address: email is required")
	}
	if s.FirstName == "" {
		return usecase.NewValidationError("shipping address: first_name is required")
	}
	if s.Country == "" {
		return usecase.NewValidationError("shipping address: country is required")
	}
	if s.Address1 == "" {
		return usecase.NewValidationError("shipping address: address1 is required")
	}
	if s.City == "" {
		return usecase.NewValidationError("shipping address: city is required")
	}
	if s.Zip == "" {
		return usecase.NewValidationError("shipping address: zip is required")
	}
	return nil
}

package payment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

// ステッカー1枚あたりの単価（USDセント）
const stickerUnitAmount = 399

// CheckoutClient はStripeのhosted checkoutセッションを扱う。
type CheckoutClient struct {
	secretKey string
	api       *client.API
}

func NewCheckoutClient(secretKey string) *CheckoutClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &CheckoutClient{secretKey: secretKey, api: api}
}

type CheckoutItem struct {
	ImageID  int64  `json:"image_id"`
	ImageURL string `json:"image_url"`
	Quantity int64  `json:"quantity"`
}

type CreateSessionInput struct {
	Items      []CheckoutItem
	Shipping   usecase.ShippingAddress
	SuccessURL string
	CancelURL  string
}

type CreateSessionOutput struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateSession はhosted checkoutを作る。配送先と明細はwebhook側で取り出せるよう
// metadataにJSONで埋め込む。
func (c *CheckoutClient) CreateSession(ctx context.Context, in CreateSessionInput) (CreateSessionOutput, error) {
	if c.secretKey == "" {
		return CreateSessionOutput{}, usecase.NewConfigurationError("STRIPE_SECRET_KEY is not set")
	}

	shippingJSON, err := json.Marshal(in.Shipping)
	if err != nil {
		return CreateSessionOutput{}, usecase.NewValidationError("shipping address is not serializable")
	}

	itemRefs := make([]map[string]int64, 0, len(in.Items))
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items))
	for _, it := range in.Items {
		itemRefs = append(itemRefs, map[string]int64{
			"image_id": it.ImageID,
			"quantity": it.Quantity,
		})
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(stickerUnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String("Custom ChaosSticker"),
					Images: []*string{stripe.String(it.ImageURL)},
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	itemsJSON, err := json.Marshal(itemRefs)
	if err != nil {
		return CreateSessionOutput{}, usecase.NewValidationError("items are not serializable")
	}

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(uuid.NewString()),
	}
	params.AddMetadata(metaShippingAddress, string(shippingJSON))
	params.AddMetadata(metaItems, string(itemsJSON))

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return CreateSessionOutput{}, usecase.NewVendorError(err, "failed to create checkout session")
	}
	return CreateSessionOutput{SessionID: s.ID, URL: s.URL}, nil
}

// PaymentIDBySession はconfirmポーリング用に sessionId → 決済ID を解決する。
func (c *CheckoutClient) PaymentIDBySession(ctx context.Context, sessionID string) (string, error) {
	if c.secretKey == "" {
		return "", usecase.NewConfigurationError("STRIPE_SECRET_KEY is not set")
	}

	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return "", usecase.NewNotFoundError("checkout session %s not found", sessionID)
	}
	if s.PaymentIntent == nil || s.PaymentIntent.ID == "" {
		return "", usecase.NewValidationError("session %s has no payment intent", sessionID)
	}
	return s.PaymentIntent.ID, nil
}

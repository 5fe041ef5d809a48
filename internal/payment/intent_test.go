package payment_test

import (
	"testing"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stretchr/testify/assert"

	"github.com/JamalC77/chaosstickers-backend/internal/payment"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

const validShippingJSON = `{
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@example.com",
	"phone": "555-0100",
	"country": "US",
	"region": "CA",
	"address1": "1 Analytical Way",
	"address2": "",
	"city": "London",
	"zip": "12345"
}`

func sessionWith(items string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_test_123"},
		Metadata: map[string]string{
			"shipping_address": validShippingJSON,
			"items":            items,
		},
	}
}

func TestExtractOrderIntent_Success(t *testing.T) {
	s := sessionWith(`[{"image_id": 10, "quantity": 1}, {"image_id": 11, "quantity": 3}]`)

	intent, err := payment.ExtractOrderIntent(s)

	assert.NoError(t, err)
	assert.Equal(t, "pi_test_123", intent.PaymentID)
	assert.Equal(t, "ada@example.com", intent.Shipping.Email)
	assert.Equal(t, "Ada", intent.Shipping.FirstName)
	assert.Len(t, intent.Items, 2)
	assert.Equal(t, int64(10), intent.Items[0].ImageID)
	assert.Equal(t, int64(3), intent.Items[1].Quantity)
}

// 非整数の数量は切り捨て（2.9 → 2）
func TestExtractOrderIntent_QuantityFloor(t *testing.T) {
	s := sessionWith(`[{"image_id": 10, "quantity": 2.9}]`)

	intent, err := payment.ExtractOrderIntent(s)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), intent.Items[0].Quantity)
}

func TestExtractOrderIntent_QuantityNotPositive(t *testing.T) {
	for _, items := range []string{
		`[{"image_id": 10, "quantity": 0}]`,
		`[{"image_id": 10, "quantity": -1}]`,
		`[{"image_id": 10, "quantity": 0.9}]`, // 切り捨てで0になる
	} {
		_, err := payment.ExtractOrderIntent(sessionWith(items))

		we, ok := usecase.AsWorkflowError(err)
		assert.True(t, ok, items)
		assert.Equal(t, usecase.KindValidation, we.Kind, items)
	}
}

// どの明細が不正かをindexで名指しする
func TestExtractOrderIntent_ErrorNamesItemIndex(t *testing.T) {
	s := sessionWith(`[{"image_id": 10, "quantity": 1}, {"image_id": 11, "quantity": 0}]`)

	_, err := payment.ExtractOrderIntent(s)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
}

func TestExtractOrderIntent_MissingImageID(t *testing.T) {
	_, err := payment.ExtractOrderIntent(sessionWith(`[{"quantity": 1}]`))

	we, ok := usecase.AsWorkflowError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, we.Kind)
	assert.Contains(t, err.Error(), "image_id")
}

func TestExtractOrderIntent_NoPaymentIntent(t *testing.T) {
	s := sessionWith(`[{"image_id": 10, "quantity": 1}]`)
	s.PaymentIntent = nil

	_, err := payment.ExtractOrderIntent(s)

	we, ok := usecase.AsWorkflowError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, we.Kind)
}

func TestExtractOrderIntent_MissingMetadata(t *testing.T) {
	cases := map[string]map[string]string{
		"no shipping": {"items": `[{"image_id": 10, "quantity": 1}]`},
		"no items":    {"shipping_address": validShippingJSON},
		"empty items": {"shipping_address": validShippingJSON, "items": `[]`},
		"bad json":    {"shipping_address": validShippingJSON, "items": `{oops`},
	}

	for name, meta := range cases {
		s := &stripe.CheckoutSession{
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_test_123"},
			Metadata:      meta,
		}

		_, err := payment.ExtractOrderIntent(s)

		we, ok := usecase.AsWorkflowError(err)
		assert.True(t, ok, name)
		assert.Equal(t, usecase.KindValidation, we.Kind, name)
	}
}

func TestExtractOrderIntent_IncompleteShipping(t *testing.T) {
	s := sessionWith(`[{"image_id": 10, "quantity": 1}]`)
	s.Metadata["shipping_address"] = `{"first_name": "Ada", "email": "ada@example.com"}`

	_, err := payment.ExtractOrderIntent(s)

	we, ok := usecase.AsWorkflowError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, we.Kind)
	assert.Contains(t, err.Error(), "country")
}

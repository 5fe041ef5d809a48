package payment

import (
	"encoding/json"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

// EventCheckoutCompleted だけが後続パイプラインを起動する。
// それ以外のイベント種別は200で受領だけして無視する（エラーではない）。
const EventCheckoutCompleted = "checkout.session.completed"

// Verifier はStripe webhookの署名検証と復号を行う。
type Verifier struct {
	webhookSecret string
}

func NewVerifier(webhookSecret string) *Verifier {
	return &Verifier{webhookSecret: webhookSecret}
}

// VerifyEvent は生のリクエストボディと署名ヘッダーからイベントを復元する。
// 署名はraw bytesに対して計算されるので、ボディは事前にパースしてはいけない。
func (v *Verifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if v.webhookSecret == "" {
		// デプロイ側の欠陥。クライアント起因ではないので署名検証より先に500で返す
		return stripe.Event{}, usecase.NewConfigurationError("STRIPE_WEBHOOK_SECRET is not set")
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, v.webhookSecret)
	if err != nil {
		return stripe.Event{}, usecase.NewAuthenticationError(err, "webhook signature verification failed")
	}
	return event, nil
}

// ParseCheckoutSession はイベントのpayloadをCheckoutSessionとして取り出す。
func ParseCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, usecase.NewValidationError("event payload is not a checkout session: %v", err)
	}
	return &session, nil
}

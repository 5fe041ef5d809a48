package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.resend.com"
	fromAddress    = "ChaosStickers <orders@chaosstickers.com>"
	requestTimeout = 10 * time.Second
)

var ErrMissingAPIKey = errors.New("resend api key is not set")

// EmailSender はResendのHTTP API経由で注文確認メールを送る。
// 送信失敗はワークフローの結果を変えない（呼び出し側でログだけ残す）。
type EmailSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewEmailSender(apiKey string) *EmailSender {
	return &EmailSender{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// NewEmailSenderWithBaseURL はテスト用にエンドポイントを差し替える。
func NewEmailSenderWithBaseURL(apiKey string, baseURL string) *EmailSender {
	s := NewEmailSender(apiKey)
	s.baseURL = baseURL
	return s
}

type OrderConfirmation struct {
	To            string
	OrderID       int64
	TrackingURL   string
	ItemImageURLs []string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailSender) SendOrderConfirmation(ctx context.Context, m OrderConfirmation) error {
	if s.apiKey == "" {
		return ErrMissingAPIKey
	}

	req := sendRequest{
		From:    fromAddress,
		To:      []string{m.To},
		Subject: fmt.Sprintf("Your ChaosStickers order #%d is confirmed", m.OrderID),
		HTML:    renderConfirmation(m),
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func renderConfirmation(m OrderConfirmation) string {
	var b strings.Builder
	b.WriteString("<h1>Thanks for your order!</h1>")
	fmt.Fprintf(&b, "<p>Your stickers are on their way to production. Track order #%d here: <a href=%q>%s</a></p>", m.OrderID, m.TrackingURL, m.TrackingURL)
	for _, u := range m.ItemImageURLs {
		fmt.Fprintf(&b, "<img src=%q width=\"120\" alt=\"sticker\" />", u)
	}
	return b.String()
}

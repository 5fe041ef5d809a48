package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JamalC77/chaosstickers-backend/internal/payment"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

type WebhookHandler struct {
	verifier     *payment.Verifier
	fulfillments *usecase.FulfillmentUsecase
	orders       *usecase.OrderUsecase
}

func NewWebhookHandler(verifier *payment.Verifier, fulfillments *usecase.FulfillmentUsecase, orders *usecase.OrderUsecase) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, fulfillments: fulfillments, orders: orders}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/webhook", h.stripeEvent)
	e.POST("/api/webhook/fulfillment", h.vendorStatusEvent)
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	OrderID  int64  `json:"orderId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// stripeEvent は決済プロバイダからのwebhook。署名はraw bodyに対して検証するので
// 共通のbody parserを通す前に自前で読む。
func (h *WebhookHandler) stripeEvent(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
	}

	event, err := h.verifier.VerifyEvent(body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return writeError(c, err)
	}

	// checkout完了以外のイベントは受領だけして処理しない（必須のno-op経路）
	if string(event.Type) != payment.EventCheckoutCompleted {
		return c.JSON(http.StatusOK, WebhookResponse{Received: true})
	}

	session, err := payment.ParseCheckoutSession(event)
	if err != nil {
		return writeError(c, err)
	}

	intent, err := payment.ExtractOrderIntent(session)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.fulfillments.ProcessPaidCheckout(c.Request().Context(), intent)
	if err != nil {
		return writeError(c, err)
	}

	resp := WebhookResponse{Received: true, OrderID: res.OrderID}
	if res.AlreadyProcessed {
		resp.Message = "already processed"
	}
	return c.JSON(http.StatusOK, resp)
}

type vendorStatusRequest struct {
	OrderID    string `json:"order_id"`
	ExternalID string `json:"external_id"` // 発注時に埋めた決済ID。order_id欠落時の相関キー
	Status     string `json:"status"`
}

// vendorStatusEvent はベンダーがpushしてくる注文ステータス更新。
func (h *WebhookHandler) vendorStatusEvent(c echo.Context) error {
	var req vendorStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	applied, err := h.orders.ApplyVendorStatusEvent(c.Request().Context(), req.OrderID, req.ExternalID, req.Status)
	if err != nil {
		return writeError(c, err)
	}

	resp := WebhookResponse{Received: true}
	if !applied {
		resp.Message = "ignored"
	}
	return c.JSON(http.StatusOK, resp)
}

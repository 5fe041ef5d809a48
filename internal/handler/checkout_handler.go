package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/JamalC77/chaosstickers-backend/internal/payment"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

// CheckoutHandler はhosted checkoutの入口。配送先と明細をmetadataに埋めて
// セッションを作り、決済完了後のwebhookがそれを取り出す。
type CheckoutHandler struct {
	images   repo.GeneratedImageRepository
	checkout *payment.CheckoutClient
	feURL    string
}

func NewCheckoutHandler(images repo.GeneratedImageRepository, checkout *payment.CheckoutClient, feURL string) *CheckoutHandler {
	return &CheckoutHandler{images: images, checkout: checkout, feURL: strings.TrimRight(feURL, "/")}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/checkout/session", h.createSession)
}

type checkoutItemRequest struct {
	ImageID  int64 `json:"image_id"`
	Quantity int64 `json:"quantity"`
}

type createSessionRequest struct {
	ShippingAddress usecase.ShippingAddress `json:"shipping_address"`
	Items           []checkoutItemRequest   `json:"items"`
}

func (h *CheckoutHandler) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "items are required"})
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be positive"})
		}
		ids = append(ids, it.ImageID)
	}

	// 決済前なので欠けている画像IDはクライアント起因の400
	images, err := h.images.FindByIDs(c.Request().Context(), ids)
	if err != nil {
		return writeError(c, usecase.NewStorageError(err, "failed to load generated images"))
	}
	urlByID := make(map[int64]string, len(images))
	for _, img := range images {
		urlByID[img.ID] = img.FulfillmentURL()
	}

	items := make([]payment.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		url, ok := urlByID[it.ImageID]
		if !ok || url == "" {
			return writeError(c, usecase.NewValidationError("image %d not found", it.ImageID))
		}
		items = append(items, payment.CheckoutItem{
			ImageID:  it.ImageID,
			ImageURL: url,
			Quantity: it.Quantity,
		})
	}

	out, err := h.checkout.CreateSession(c.Request().Context(), payment.CreateSessionInput{
		Items:      items,
		Shipping:   req.ShippingAddress,
		SuccessURL: h.feURL + "/confirmation?sessionId={CHECKOUT_SESSION_ID}",
		CancelURL:  h.feURL + "/cart",
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

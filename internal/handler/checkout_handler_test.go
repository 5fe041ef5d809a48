package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	"github.com/JamalC77/chaosstickers-backend/internal/handler"
	"github.com/JamalC77/chaosstickers-backend/internal/payment"
)

// セッション作成自体はStripeに当たるので、ここでは決済前バリデーションの
// 経路だけを確認する（不正入力はStripeに到達しない）

func newCheckoutEnv(images *ImageRepoMock) *echo.Echo {
	e := echo.New()
	h := handler.NewCheckoutHandler(images, payment.NewCheckoutClient("sk_test_dummy"), "https://chaosstickers.com")
	h.RegisterRoutes(e)
	return e
}

func postCheckout(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/session", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession_NoItems(t *testing.T) {
	images := &ImageRepoMock{}
	e := newCheckoutEnv(images)

	rec := postCheckout(e, `{"shipping_address":{}, "items":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "items are required")
	images.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestCreateSession_NonPositiveQuantity(t *testing.T) {
	images := &ImageRepoMock{}
	e := newCheckoutEnv(images)

	rec := postCheckout(e, `{"items":[{"image_id":10,"quantity":0}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be positive")
	images.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

// 存在しない画像IDは決済前なのでクライアント起因の400
func TestCreateSession_UnknownImage(t *testing.T) {
	images := &ImageRepoMock{}
	images.On("FindByIDs", mock.Anything, []int64{10, 99}).
		Return([]model.GeneratedImage{{ID: 10, ImageURL: "https://img.test/10.png"}}, nil)
	e := newCheckoutEnv(images)

	rec := postCheckout(e, `{"items":[{"image_id":10,"quantity":1},{"image_id":99,"quantity":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "99")
}

func TestCreateSession_InvalidBody(t *testing.T) {
	images := &ImageRepoMock{}
	e := newCheckoutEnv(images)

	rec := postCheckout(e, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

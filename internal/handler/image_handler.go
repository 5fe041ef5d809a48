package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

// ImageHandler は生成済みデザインの読み取り。フロントの確認画面が
// 明細のプレビューに使う（生成自体は別パイプライン）。
type ImageHandler struct {
	images repo.GeneratedImageRepository
}

func NewImageHandler(images repo.GeneratedImageRepository) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/images/:id", h.detail)
}

func (h *ImageHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	img, err := h.images.FindByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, img)
}

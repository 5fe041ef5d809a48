package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
	if we, ok := usecase.AsWorkflowError(err); ok {
		return c.JSON(we.HTTPStatus(), ErrorResponse{Error: we.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

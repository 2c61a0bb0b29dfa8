package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/service/editor"
	"github.com/mamadbah2/stockboard/pkg/clients/inventory"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrDisposed), errors.Is(err, editor.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrInvalidPage), inventory.IsValidation(err):
		return http.StatusBadRequest
	case inventory.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Warn(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/apperrors"
)

// respondWithError maps a service error onto an HTTP status and a JSON
// body. Internal errors are logged with their cause and reported with a
// generic message so details never leak to clients.
func respondWithError(c *gin.Context, log *slog.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindInternal:
		log.Error("request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	}
	c.JSON(status, gin.H{"error": apperrors.MessageOf(err)})
}

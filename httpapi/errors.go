package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"i4.energy/sms-gateway/store"
)

// sendError writes the teacher's {"message": "..."} JSON envelope,
// generalized from server.go's sendError to a gin.Context.
func sendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorResponse{Message: message})
}

// abortWithError picks a status code from the error's kind, per
// SPEC_FULL.md §7's error-to-HTTP mapping, and aborts the request.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		sendError(c, http.StatusNotFound, err.Error())
	default:
		sendError(c, http.StatusInternalServerError, err.Error())
	}
	c.Abort()
}

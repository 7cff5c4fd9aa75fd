package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`   // error code for client-side mapping
	Message string `json:"message"` // human readable detail
}

// RespondWithError writes the standard error body.
// statusCode: HTTP status code
// errorCode: an error code constant (see codes.go)
// message: human readable detail
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand helpers for the common cases.

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusForbidden, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An internal error occurred, please retry shortly"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

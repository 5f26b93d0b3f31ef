package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

const (
	retryAfterSeconds  = "1"
	UnauthorizedDetail = "Could not validate credentials"
)

type ErrorBody struct {
	Detail string `json:"detail"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes {"detail": ...} and aborts the remaining handlers.
func Error(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail})
}

// StatusOf maps a typed error to its HTTP status and public detail.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		return http.StatusUnprocessableEntity, err.Error()
	case appErr.IsUnauthorized(err):
		return http.StatusUnauthorized, UnauthorizedDetail
	case appErr.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, appErr.ErrConflict):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, appErr.ErrTooMany):
		return http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests)
	case errors.Is(err, appErr.ErrUnavailable):
		return http.StatusServiceUnavailable, "Database temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Fail is the single translation of a typed error into a response, headers
// included. It returns the status it wrote.
func Fail(c *gin.Context, err error) int {
	status, detail := StatusOf(err)
	switch status {
	case http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Bearer")
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		c.Header("Retry-After", retryAfterSeconds)
	}
	_ = c.Error(err)
	Error(c, status, detail)
	return status
}

package middlewares

import (
	"log"
	"net/http"

	"InsureCost/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, message string, status int, err error) {
	log.Printf("HTTP %d - %s: %v", status, message, err)
	c.JSON(status, gin.H{"error": message})
}

// RespondError maps a dashboard error onto a status code and writes it.
func RespondError(c *gin.Context, err error) {
	status, message := ErrorStatus(err)
	HttpError(c, message, status, err)
}

// ErrorStatus returns the status code and client message for err.
func ErrorStatus(err error) (int, string) {
	var (
		authErr       *models.AuthError
		validationErr *models.ValidationError
		netErr        *models.NetworkError
	)
	switch {
	case errors.Is(err, models.ErrNotLoggedIn):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrUnknownTab):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrStaleResponse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrShuttingDown):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &netErr):
		return http.StatusBadGateway, "backend request failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

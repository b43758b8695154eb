package middlewares

import (
	"net/http"

	"TeleClinic/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps an error type to its HTTP status.
func StatusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.TypeValidation:
		return http.StatusBadRequest
	case apperrors.TypeConflict, apperrors.TypeState:
		return http.StatusConflict
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypeDependency:
		return http.StatusBadGateway
	case apperrors.TypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.TypeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// HttpError writes err as {"error", "code"} plus any extra fields. Internal and
// dependency failures are logged; their details never reach the client.
func HttpError(c *gin.Context, log *zap.Logger, err error, extra ...gin.H) {
	appErr := apperrors.As(err)
	status := StatusFor(appErr.Type)

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		if appErr.Type == apperrors.TypeInternal {
			message = "internal server error"
		}
	}
	_ = c.Error(err)

	body := gin.H{"error": message, "code": appErr.Code}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// Package apierr writes the single JSON error shape returned by every handler.
package apierr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

const (
	CodeInvalidPayload     = "invalid_payload"
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotVerified   = "email_not_verified"
	CodeInvalidCode        = "invalid_code"
	CodeCodeExpired        = "code_expired"
	CodeTooManyAttempts    = "too_many_attempts"
	CodeRateLimited        = "rate_limit_exceeded"
	CodeConflict           = "conflict"
	CodeNotFound           = "not_found"
	CodeUnavailable        = "unavailable"
	CodePaymentFailed      = "payment_failed"
	CodeInternal           = "internal_server_error"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Respond aborts the request with the error body. devErr, when given, is only logged.
func Respond(c *gin.Context, status int, code, message string, devErr error) {
	entry := logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
		"status": status,
		"code":   code,
	})
	if devErr != nil {
		entry = entry.WithError(devErr)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

func BadRequest(c *gin.Context, message string, err error) {
	Respond(c, http.StatusBadRequest, CodeValidation, message, err)
}

func Unauthorized(c *gin.Context, message string) {
	Respond(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	Respond(c, http.StatusForbidden, CodeForbidden, message, nil)
}

func Internal(c *gin.Context, err error) {
	Respond(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", err)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error to a status code and JSON body.
// fallback is the message used for unexpected failures.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Warn("Unauthorized request", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrNotConfigured):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "needsReconnect": false})
	case apperrors.IsReconnectRequired(err):
		logger.Warn("Xero reconnect required", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "needsReconnect": true})
	case errors.Is(err, apperrors.ErrAdvisorDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		if apiErr, ok := apperrors.AsExternalAPIError(err); ok {
			status := apiErr.Status
			if status < http.StatusBadRequest || status > 599 {
				status = http.StatusBadGateway
			}
			logger.Error("Upstream API error", slog.String("service", apiErr.Service), slog.Int("status", apiErr.Status), slog.String("error", apiErr.Message))
			c.JSON(status, gin.H{"error": apiErr.Message, "service": apiErr.Service})
			return
		}
		if errors.As(err, &appErr) && appErr.Code >= http.StatusBadRequest && appErr.Code < http.StatusInternalServerError {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// validationMessage prefers the AppError message over the wrapped sentinel text.
func validationMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// requireCompanyID reads the id placed in the context by middleware.CompanyScope.
func requireCompanyID(c *gin.Context) (int64, bool) {
	id, ok := middleware.GetCompanyIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Company ID not found in context")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
	}
	return id, ok
}

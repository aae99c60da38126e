package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// companyIDKey is the key used to store the tenant company id in the Gin and request contexts.
const companyIDKey = contextKey("companyID")

// CompanyScope parses the :companyID path parameter, rejects anything that is not
// a positive integer and makes the id available to handlers and the request logger.
func CompanyScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("companyID")
		companyID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || companyID <= 0 {
			GetLoggerFromContext(c).Warn("Invalid company id in path", slog.String("company_id", raw))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
			return
		}

		logger := GetLoggerFromContext(c).With(slog.Int64("company_id", companyID))
		ctx := context.WithValue(c.Request.Context(), companyIDKey, companyID)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger))
		c.Set(string(loggerKey), logger)
		c.Set(string(companyIDKey), companyID)

		c.Next()
	}
}

// GetCompanyIDFromContext retrieves the company id set by CompanyScope.
// It returns the id and a boolean indicating if it was found.
func GetCompanyIDFromContext(c *gin.Context) (int64, bool) {
	if v, exists := c.Get(string(companyIDKey)); exists {
		id, ok := v.(int64)
		return id, ok
	}
	// check in the request context as well
	if v, ok := c.Request.Context().Value(companyIDKey).(int64); ok {
		return v, true
	}
	return 0, false
}

package handlers

import (
	"github.com/SscSPs/xero_import_app/cmd/docs"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/SscSPs/xero_import_app/internal/platform/config"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// A nil limiter disables rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
	posthog *utils.PosthogClientWrapper,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services, rateLimiter, posthog)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
	posthog *utils.PosthogClientWrapper,
) {
	var v1Middleware []gin.HandlerFunc
	if rateLimiter != nil {
		v1Middleware = append(v1Middleware, middleware.RateLimit(rateLimiter))
	}
	v1 := r.Group("/api/v1", v1Middleware...)

	// OAuth redirect target, the company arrives inside the signed state
	registerCallbackRoutes(v1, service.Credential, cfg.FrontendBaseURL)

	company := v1.Group("/companies/:companyID", middleware.CompanyScope(), middleware.PosthogMiddleware(posthog))

	// Delegate route registration to specific handlers, passing required services
	registerCredentialRoutes(company, service.Credential, cfg.FrontendBaseURL)
	registerTransactionRoutes(company, service.Import, service.Coding, service.Ledger, posthog)
	registerLedgerRoutes(company, service.Ledger, service.Advisor)
	registerPayrollRoutes(company, service.Payroll, posthog)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

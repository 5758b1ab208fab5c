package handlers

import (
	"fmt"

	"github.com/SscSPs/bookkeeping_app/cmd/docs"
	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/SscSPs/bookkeeping_app/internal/platform/config"
	"github.com/SscSPs/bookkeeping_app/internal/utils/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	// binding tags such as gt=0 compare decimal amounts numerically
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterDecimal(v)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	if err := setupAPIV1Routes(r, cfg, services); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	chain := []gin.HandlerFunc{}
	if cfg.RateLimit != "" {
		limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return fmt.Errorf("failed to build rate limiter: %w", err)
		}
		chain = append(chain, middleware.RateLimit(limiterInstance))
	}
	chain = append(chain, middleware.AuthMiddleware(cfg.JWTSecret))

	v1 := r.Group("/api/v1", chain...)

	registerCounterpartyRoutes(v1, services.Counterparty)
	registerInvoiceRoutes(v1, services.Invoice)
	registerProductRoutes(v1, services.Stock)
	registerBankingRoutes(v1, services.Banking)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

package handlers

import (
	"github.com/Vroy4298/land-tax-system/internal/auth"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/Vroy4298/land-tax-system/internal/metrics"
	"github.com/Vroy4298/land-tax-system/internal/middleware"
	"github.com/Vroy4298/land-tax-system/internal/services"
	"github.com/gin-gonic/gin"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *metrics.Metrics
	Tokens      *auth.TokenManager
	DB          Pinger
	Properties  services.PropertyService
	Accounts    services.AuthService
	CORSOrigins []string
	Env         string
}

// NewRouter builds the engine with middleware in order
// RequestID -> Logger -> Recovery -> Metrics -> CORS.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Log))
	router.Use(middleware.Recovery(cfg.Log))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))

	healthHandler := NewHealthHandler(cfg.DB, cfg.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	authHandler := NewAuthHandler(cfg.Accounts)
	propertyHandler := NewPropertyHandler(cfg.Properties)
	assessmentHandler := NewAssessmentHandler(cfg.Properties)
	requireAuth := middleware.Authenticate(cfg.Tokens)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", healthHandler.Info)

		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", requireAuth, authHandler.Me)
		}

		v1.POST("/assessments/preview", assessmentHandler.Preview)

		properties := v1.Group("/properties", requireAuth)
		{
			properties.GET("", propertyHandler.List)
			properties.GET("/summary", propertyHandler.Summary)
			properties.POST("", propertyHandler.Create)
			properties.GET("/:id", propertyHandler.Get)
			properties.PUT("/:id", propertyHandler.Update)
			properties.DELETE("/:id", propertyHandler.Delete)
			properties.POST("/:id/pay", propertyHandler.Pay)
		}
	}

	return router
}

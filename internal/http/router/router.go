package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/studio-backend/internal/config"
	"github.com/ignatzorin/studio-backend/internal/http/handlers"
	"github.com/ignatzorin/studio-backend/internal/http/middleware"
	"github.com/ignatzorin/studio-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	quoteHandler *handlers.QuoteHandler,
	catalogHandler *handlers.CatalogHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты: маркетинговый каталог и фид заявок.
	// Токен WebSocket передаётся в query и проверяется в хэндлере.
	api.GET("/services", catalogHandler.ListServices)
	api.GET("/projects", catalogHandler.ListProjects)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/quotes", quoteHandler.Submit)
		protected.GET("/quotes", quoteHandler.List)
		protected.GET("/quotes/my", quoteHandler.ListMy)
		protected.GET("/quotes/:id", middleware.UUIDValidator("id"), quoteHandler.Get)

		// Админские маршруты
		admin := protected.Group("/")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/quotes/stats", quoteHandler.Stats)
			admin.PUT("/quotes/:id/status", middleware.UUIDValidator("id"), quoteHandler.UpdateStatus)

			admin.POST("/services", catalogHandler.CreateService)
			admin.PUT("/services/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateService)
			admin.DELETE("/services/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteService)

			admin.POST("/projects", catalogHandler.CreateProject)
			admin.PUT("/projects/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateProject)
			admin.DELETE("/projects/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteProject)

			admin.POST("/media/images", mediaHandler.UploadImage)
			admin.DELETE("/media/images/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteImage)
		}
	}

	return r
}

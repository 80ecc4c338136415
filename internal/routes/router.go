package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"gymgate/internal/checkin"
	"gymgate/internal/config"
	"gymgate/internal/handlers"
	"gymgate/internal/middleware"
	"gymgate/internal/websocket"
)

func SetupRouter(db *gorm.DB, config *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.Metrics())

	checkinService := checkin.NewService(db)

	authMiddleware := middleware.NewAuthMiddleware(db, config.JWTSecret)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(config)
	publicLimit := middleware.RateLimitMiddleware(config.RateLimitRPS, config.RateLimitBurst)

	authHandler := handlers.NewAuthHandler(db, authMiddleware)
	memberHandler := handlers.NewMemberHandler(db, checkinService)
	packageHandler := handlers.NewPackageHandler(db)
	checkinHandler := handlers.NewCheckInHandler(db, checkinService)
	simulationHandler := handlers.NewSimulationHandler(db)

	if config.EnableWebsocket {
		wsHandler := websocket.NewHandler(config.JWTSecret)
		checkinService.SetHub(wsHandler.Hub())
		memberHandler.SetHub(wsHandler.Hub())

		router.GET("/ws/members", wsHandler.HandleWebSocket)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.AuthRequired(), authHandler.GetMe)
		auth.POST("/change-password", authMiddleware.AuthRequired(), authHandler.ChangePassword)
	}

	// Kiosk endpoints: optionally API-key gated, always rate limited.
	scans := api.Group("")
	scans.Use(publicLimit, apiKeyMiddleware.APIKeyRequired())
	{
		scans.POST("/checkin", checkinHandler.CheckIn)
		scans.POST("/checkout", checkinHandler.CheckOut)
	}

	// Public member surface.
	api.GET("/membership-packages", packageHandler.GetPackages)
	api.GET("/members/check-status", memberHandler.CheckStatus)
	api.POST("/members/register", publicLimit, memberHandler.Register)

	// Admin surface.
	admin := api.Group("")
	admin.Use(authMiddleware.AuthRequired())
	{
		members := admin.Group("/members")
		{
			members.GET("", memberHandler.GetMembers)
			members.GET("/:id", memberHandler.GetMember)
			members.PATCH("/:id/approve", memberHandler.Approve)
			members.PATCH("/:id/reject", memberHandler.Reject)
			members.PATCH("/:id/restore", memberHandler.RestoreMember)
			members.DELETE("/:id", memberHandler.DeleteMember)
		}

		packages := admin.Group("/admin/membership-packages")
		{
			packages.GET("", packageHandler.GetPackages)
			packages.GET("/:id", packageHandler.GetPackage)
			packages.POST("", packageHandler.CreatePackage)
			packages.PUT("/:id", packageHandler.UpdatePackage)
			packages.DELETE("/:id", packageHandler.DeletePackage)
		}

		checkins := admin.Group("/checkins")
		{
			checkins.GET("", checkinHandler.GetLogs)
			checkins.GET("/:id", checkinHandler.GetLog)
			checkins.GET("/stats/daily", checkinHandler.GetDailyStats)
			checkins.GET("/stats/summary", checkinHandler.GetSummary)
		}

		admin.POST("/simulate/checkin", simulationHandler.SimulateCheckIn)
	}

	return router
}

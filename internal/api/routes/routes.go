package routes

import (
	"net/http"

	"freightmarket-api-server/config"
	"freightmarket-api-server/internal/api/handlers"
	"freightmarket-api-server/internal/api/middleware"
	"freightmarket-api-server/internal/auth"
	"freightmarket-api-server/internal/jobs"
	"freightmarket-api-server/internal/models"
	"freightmarket-api-server/internal/socket"
	"freightmarket-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the handlers onto the API surface.
func SetupRouter(
	cfg config.Config,
	mongoStore *store.Mongo,
	jobService *jobs.Service,
	authService *auth.Service,
	wsHub *socket.Hub,
) *gin.Engine {
	// gin.Default already carries Logger and Recovery.
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.CORS.Origin != "" {
		corsConfig.AllowOrigins = []string{cfg.CORS.Origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	jobHandler := &handlers.JobHandler{Service: jobService}
	bidHandler := &handlers.BidHandler{Service: jobService}
	userHandler := &handlers.UserHandler{Store: mongoStore, Auth: authService}
	notificationHandler := &handlers.NotificationHandler{Store: mongoStore}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Auth: authService}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server is running"})
		})

		apiV1.GET("/ws", webSocketHandler.ServeWs)

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", userHandler.Register)
			authRoutes.POST("/login", userHandler.Login)
			authRoutes.GET("/me", middleware.Authenticate(authService), userHandler.Me)
		}

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(authService))
		{
			jobRoutes := protected.Group("/jobs")
			{
				jobRoutes.GET("/", jobHandler.GetJobs)
				jobRoutes.POST("/", middleware.Authorize(models.RoleDispatcher, models.RoleShipper), jobHandler.CreateJob)

				// Specific routes before the generic /:id ones.
				jobRoutes.POST("/:id/claim", middleware.Authorize(models.RoleTrucker), jobHandler.ClaimJob)
				jobRoutes.PUT("/:id/status", jobHandler.UpdateJobStatus)
				jobRoutes.POST("/:id/bids", middleware.Authorize(models.RoleTrucker), bidHandler.PlaceBid)
				jobRoutes.POST("/:id/bids/:bidId/accept", bidHandler.AcceptBid)
				jobRoutes.POST("/:id/bids/:bidId/reject", bidHandler.RejectBid)
				jobRoutes.POST("/:id/bids/:bidId/withdraw", middleware.Authorize(models.RoleTrucker), bidHandler.WithdrawBid)

				jobRoutes.GET("/:id", jobHandler.GetJob)
				jobRoutes.PUT("/:id", jobHandler.UpdateJob)
				jobRoutes.DELETE("/:id", jobHandler.DeleteJob)
			}

			notificationRoutes := protected.Group("/notifications")
			{
				notificationRoutes.GET("/", notificationHandler.GetNotifications)
				notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
				notificationRoutes.PUT("/read-all", notificationHandler.MarkAllRead)
				notificationRoutes.PUT("/:id/read", notificationHandler.MarkRead)
				notificationRoutes.DELETE("/:id", notificationHandler.Delete)
			}
		}
	}

	return router
}

package routes

import (
	"net/http"
	"time"

	"courtpilot/handlers"
	"courtpilot/middleware"
	"courtpilot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the token mint endpoint.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/token", hb.MintTokenHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/booking")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/runs", hb.StartRunHandler)          // register a run and queue it
		api.GET("/runs/:runID", hb.GetRunHandler)      // poll run progress and outcome
		api.GET("/availability", hb.AvailabilityHandler)
		api.POST("/voice", hb.VoiceRunHandler) // spoken request, multipart WAV
	}
}

// RegisterAdminRoutes sets up endpoints for operator access to run history.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware())
		adminGroup.GET("/runs", hb.AdminHandler.RecentRunsHandler)
		adminGroup.GET("/runs/date/:date", hb.AdminHandler.RunsByDateHandler)
		adminGroup.GET("/runs/:runID/screenshot", hb.AdminHandler.RunScreenshotHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Hi, I'm CourtPilot",
			"health":  utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}

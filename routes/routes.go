package routes

import (
	"time"

	"fixit/handlers"
	"fixit/middleware"
	"fixit/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers identity endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.SignUpHandler)
		api.POST("/signin", hb.SignInHandler)

		// Protected routes (Require Authentication)
		api.POST("/signout", hb.AuthMiddleware, hb.SignOutHandler)
	}
}

// RegisterProfileRoutes registers the current actor's profile endpoints.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/me")
	{
		api.Use(hb.AuthMiddleware)
		api.GET("", hb.GetMeHandler)
		api.PATCH("", hb.UpdateMeHandler)
		api.POST("/avatar", hb.UploadAvatarHandler)
	}
}

// RegisterProviderRoutes registers the provider directory.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.Use(hb.AuthMiddleware)
		api.GET("", hb.ListProvidersHandler)
		api.GET("/:id", hb.GetProviderHandler)
	}
}

// RegisterBookingRoutes registers the booking ledger endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.GET("/slots", hb.ListSlotsHandler)

		protected := api.Group("")
		protected.Use(hb.AuthMiddleware)
		protected.GET("", hb.ListBookingsHandler)
		protected.POST("", middleware.RequireRole(models.RoleCustomer), hb.CreateBookingHandler)
		protected.PATCH("/:id/status", hb.UpdateStatusHandler)
		protected.GET("/earnings", middleware.RequireRole(models.RoleProvider), hb.ProviderEarningsHandler)
	}
}

// RegisterChatRoutes registers conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/conversations")
	{
		api.Use(hb.AuthMiddleware)
		api.POST("", hb.StartConversationHandler)
		api.GET("", hb.ListConversationsHandler)
		api.GET("/:id", hb.GetConversationHandler)
		api.POST("/:id/messages", hb.SendMessageHandler)
		api.POST("/:id/read", hb.MarkReadHandler)
	}
}

// RegisterStreamRoute registers the realtime websocket.
func RegisterStreamRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/stream", hb.AuthMiddleware, hb.StreamHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterStreamRoute(r, hb)
}

package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth middleware shared by the protected groups.
	AuthMiddleware gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc

	// Identity endpoints
	SignUpHandler  gin.HandlerFunc
	SignInHandler  gin.HandlerFunc
	SignOutHandler gin.HandlerFunc

	// Profile endpoints
	GetMeHandler         gin.HandlerFunc
	UpdateMeHandler      gin.HandlerFunc
	UploadAvatarHandler  gin.HandlerFunc
	ListProvidersHandler gin.HandlerFunc
	GetProviderHandler   gin.HandlerFunc

	// Booking endpoints
	ListSlotsHandler        gin.HandlerFunc
	CreateBookingHandler    gin.HandlerFunc
	ListBookingsHandler     gin.HandlerFunc
	UpdateStatusHandler     gin.HandlerFunc
	ProviderEarningsHandler gin.HandlerFunc

	// Chat endpoints
	StartConversationHandler gin.HandlerFunc
	ListConversationsHandler gin.HandlerFunc
	GetConversationHandler   gin.HandlerFunc
	SendMessageHandler       gin.HandlerFunc
	MarkReadHandler          gin.HandlerFunc

	// Realtime
	StreamHandler gin.HandlerFunc
}

package handlers

import (
	"net/http"
	"time"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/booking"
	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the booking ledger.
type BookingHandler struct {
	BookingService booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{BookingService: svc}
}

// ListSlotsHandler handles GET /api/bookings/slots.
func (h *BookingHandler) ListSlotsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"slots":            models.TimeSlots,
		"minDurationHours": models.MinDurationHours,
		"maxDurationHours": models.MaxDurationHours,
	})
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	b, err := h.BookingService.CreateBooking(c.Request.Context(), actorID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actorID, role := middleware.ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"bookings": h.BookingService.BookingsFor(actorID, role)})
}

// UpdateStatusHandler handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("status is required"))
		return
	}
	b, err := h.BookingService.TransitionStatus(c.Request.Context(), c.Param("id"), actorID, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ProviderEarningsHandler handles GET /api/bookings/earnings.
func (h *BookingHandler) ProviderEarningsHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	c.JSON(http.StatusOK, h.BookingService.EarningsFor(actorID, time.Now()))
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"consultly/models"
	"consultly/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle operations.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// respondDomainError maps the engine's typed errors onto HTTP statuses.
// Unknown errors are treated as infrastructure failures: the caller
// gets a generic retry message, the details go to the log only.
func (h *BookingHandler) respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	case errors.Is(err, booking.ErrNotJoinable):
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not open for enrollment"})
	case errors.Is(err, booking.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 1-5 with a non-empty review"})
	case errors.Is(err, booking.ErrNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not completed"})
	case errors.Is(err, booking.ErrAlreadyRated):
		c.JSON(http.StatusConflict, gin.H{"error": "booking already rated"})
	case errors.Is(err, booking.ErrAlreadyOnWaitlist):
		c.JSON(http.StatusConflict, gin.H{"error": "already on this waitlist"})
	case errors.Is(err, booking.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting update, please retry"})
	default:
		h.Logger.Error("booking operation failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, please try again"})
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	// The student id always comes from the authenticated caller, never
	// the request body.
	req.StudentID = CallerID(c)

	created, err := h.Service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ConfirmBooking handles POST /api/bookings/:bookingID/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.Service.ConfirmBooking)
}

// StartSession handles POST /api/bookings/:bookingID/start.
func (h *BookingHandler) StartSession(c *gin.Context) {
	h.transition(c, h.Service.StartSession)
}

// CompleteSession handles POST /api/bookings/:bookingID/complete.
func (h *BookingHandler) CompleteSession(c *gin.Context) {
	h.transition(c, h.Service.CompleteSession)
}

// CancelBooking handles POST /api/bookings/:bookingID/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, h.Service.CancelBooking)
}

// RefundBooking handles POST /api/bookings/:bookingID/refund.
func (h *BookingHandler) RefundBooking(c *gin.Context) {
	var input struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	updated, err := h.Service.RefundBooking(c.Request.Context(), c.Param("bookingID"), input.Amount)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, bookingID string) (*models.Booking, error)) {
	updated, err := op(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SubmitRating handles POST /api/bookings/:bookingID/rating.
func (h *BookingHandler) SubmitRating(c *gin.Context) {
	var input struct {
		Rating     int    `json:"rating"`
		ReviewText string `json:"review_text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	updated, err := h.Service.SubmitRating(c.Request.Context(), c.Param("bookingID"), CallerID(c), input.Rating, input.ReviewText)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListBookings handles GET /api/bookings for the caller.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var filters models.BookingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters", "details": err.Error()})
		return
	}

	bookings, err := h.Service.ListBookings(c.Request.Context(), CallerID(c), filters)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookingStats handles GET /api/bookings/stats for the caller.
func (h *BookingHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.Service.GetBookingStats(c.Request.Context(), CallerID(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

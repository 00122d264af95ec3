package routes

import (
	"consultly/handlers"
	"consultly/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking engine.
// Every route requires an authenticated caller.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())

	bookings := api.Group("/bookings")
	{
		bookings.POST("", bh.CreateBooking)
		bookings.GET("", bh.ListBookings)
		bookings.GET("/stats", bh.GetBookingStats)
		bookings.POST("/:bookingID/confirm", bh.ConfirmBooking)
		bookings.POST("/:bookingID/start", bh.StartSession)
		bookings.POST("/:bookingID/complete", bh.CompleteSession)
		bookings.POST("/:bookingID/cancel", bh.CancelBooking)
		bookings.POST("/:bookingID/refund", bh.RefundBooking)
		bookings.POST("/:bookingID/rating", bh.SubmitRating)
	}

	groups := api.Group("/group-sessions")
	{
		groups.GET("/available", bh.AvailableGroupSessions)
		groups.GET("/enrolled", bh.EnrolledGroupSessions)
		groups.POST("/:bookingID/join", bh.JoinGroupSession)
		groups.POST("/:bookingID/leave", bh.LeaveGroupSession)
	}

	waitlist := api.Group("/waitlist")
	{
		waitlist.POST("", bh.JoinWaitlist)
		waitlist.GET("", bh.StudentWaitlists)
		waitlist.DELETE("/:entryID", bh.LeaveWaitlist)
	}

	saved := api.Group("/saved-consultants")
	{
		saved.GET("", bh.ListSavedConsultants)
		saved.POST("/:consultantID/toggle", bh.ToggleSavedConsultant)
	}
}

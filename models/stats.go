package models

// BookingStats aggregates a student's bookings. Derived, never stored:
// recomputed from the booking set on demand so it cannot drift.
type BookingStats struct {
	TotalSessions      int     `json:"total_sessions"`
	CompletedSessions  int     `json:"completed_sessions"`
	UpcomingSessions   int     `json:"upcoming_sessions"`
	CancelledSessions  int     `json:"cancelled_sessions"`
	RefundedSessions   int     `json:"refunded_sessions"`
	TotalSpent         float64 `json:"total_spent"`
	TotalCreditsEarned int     `json:"total_credits_earned"`
	AverageRating      float64 `json:"average_rating"`
	UnratedSessions    int     `json:"unrated_sessions"`
}

package models

import "time"

// Change feed event types emitted by the booking engine. Delivery to
// notification collaborators is best-effort and fire-and-forget.
const (
	EventBookingCreated   = "booking_created"
	EventStatusChanged    = "status_changed"
	EventAdmitted         = "admitted"
	EventWaitlisted       = "waitlisted"
	EventLeft             = "left"
	EventSlotFreed        = "slot_freed"
	EventPromoted         = "promoted"
	EventBookingCancelled = "booking_cancelled"
	EventRatingRecorded   = "rating_recorded"
)

// BookingEvent is one entry in the engine's change feed. Sequence is
// monotonically increasing per booking id; ordering across bookings is
// not guaranteed.
type BookingEvent struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	Type      string    `bson:"type" json:"type"`
	StudentID string    `bson:"student_id,omitempty" json:"student_id,omitempty"`
	Status    string    `bson:"status,omitempty" json:"status,omitempty"`
	Sequence  uint64    `bson:"sequence" json:"sequence"`
	At        time.Time `bson:"at" json:"at"`
}

package models

import "time"

// GroupSessionParticipant links one student to one group booking. A row
// exists only while the student is actively enrolled; it is deleted on
// leave or when the booking is cancelled/refunded. At most one row may
// exist per (booking_id, student_id), enforced by a unique index.
type GroupSessionParticipant struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	JoinedAt  time.Time `bson:"joined_at" json:"joined_at"`
}

package models

import "time"

// ConsultantWaitlistEntry is a student's queued interest in a
// (consultant, optional service) combination once capacity is full.
// Positions within one consultant's queue are 1-based and dense:
// removing an entry renumbers everything behind it. ServiceID is stored
// even when empty so the uniqueness index and the duplicate check agree
// on what "no service scope" looks like.
type ConsultantWaitlistEntry struct {
	ID           string     `bson:"id" json:"id"`
	ConsultantID string     `bson:"consultant_id" json:"consultant_id"`
	StudentID    string     `bson:"student_id" json:"student_id"`
	ServiceID    string     `bson:"service_id" json:"service_id,omitempty"`
	Position     int        `bson:"position" json:"position"`
	JoinedAt     time.Time  `bson:"joined_at" json:"joined_at"`
	Notified     bool       `bson:"notified" json:"notified"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// Expired reports whether the entry's optional expiry has passed.
func (e *ConsultantWaitlistEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

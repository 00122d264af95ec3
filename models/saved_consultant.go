package models

import "time"

// SavedConsultant is a bookmark relation between a student and a
// consultant. Plain set membership, no capacity semantics.
type SavedConsultant struct {
	ID           string    `bson:"id" json:"id"`
	StudentID    string    `bson:"student_id" json:"student_id"`
	ConsultantID string    `bson:"consultant_id" json:"consultant_id"`
	SavedAt      time.Time `bson:"saved_at" json:"saved_at"`
}

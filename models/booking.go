package models

import "time"

// Booking statuses. A booking only ever moves through the transition
// table in services/booking/lifecycle.go; completed, cancelled and
// refunded are terminal.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// Refund statuses recorded on a booking when a refund is requested.
const (
	RefundPending   = "pending"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
	RefundProcessed = "processed"
)

// Booking represents one requested or completed unit of consulting work.
type Booking struct {
	ID           string `bson:"id" json:"id"`
	StudentID    string `bson:"student_id" json:"student_id"`
	ConsultantID string `bson:"consultant_id" json:"consultant_id"`
	ServiceID    string `bson:"service_id" json:"service_id"`

	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	Status          string    `bson:"status" json:"status"`

	// Pricing. Amounts are supplied by the pricing collaborator and
	// recorded here; this engine never moves money.
	BasePrice      float64 `bson:"base_price" json:"base_price"`
	RushMultiplier float64 `bson:"rush_multiplier,omitempty" json:"rush_multiplier,omitempty"`
	DiscountAmount float64 `bson:"discount_amount,omitempty" json:"discount_amount,omitempty"`
	FinalPrice     float64 `bson:"final_price" json:"final_price"`
	CreditsEarned  int     `bson:"credits_earned" json:"credits_earned"`

	// Group session fields. CurrentParticipants is authoritative only for
	// group bookings and must equal the count of active participant rows.
	IsGroupSession      bool `bson:"is_group_session" json:"is_group_session"`
	MaxParticipants     int  `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	CurrentParticipants int  `bson:"current_participants" json:"current_participants"`

	// Review fields, set once after completion.
	Rating     int        `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewText string     `bson:"review_text,omitempty" json:"review_text,omitempty"`
	ReviewedAt *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`

	// Refund fields.
	RefundRequested bool       `bson:"refund_requested,omitempty" json:"refund_requested,omitempty"`
	RefundStatus    string     `bson:"refund_status,omitempty" json:"refund_status,omitempty"`
	RefundAmount    float64    `bson:"refund_amount,omitempty" json:"refund_amount,omitempty"`
	RefundedAt      *time.Time `bson:"refunded_at,omitempty" json:"refunded_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether no further status transition is permitted.
func (b *Booking) Terminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// BookingFilters narrows booking list queries. Nil/empty fields mean
// "no filter". The form tags drive query-string binding on the list
// endpoint; From/To accept RFC3339 timestamps.
type BookingFilters struct {
	Statuses       []string   `json:"statuses,omitempty" form:"statuses"`
	From           *time.Time `json:"from,omitempty" form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To             *time.Time `json:"to,omitempty" form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	MinPrice       *float64   `json:"min_price,omitempty" form:"min_price"`
	MaxPrice       *float64   `json:"max_price,omitempty" form:"max_price"`
	HasRating      *bool      `json:"has_rating,omitempty" form:"has_rating"`
	IsGroupSession *bool      `json:"is_group_session,omitempty" form:"is_group_session"`
}

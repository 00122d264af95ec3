package booking

import (
	"context"
	"time"

	bookingRepo "consultly/database/repository/booking"
	savedRepo "consultly/database/repository/saved"
	waitlistRepo "consultly/database/repository/waitlist"
	"consultly/models"
	"consultly/services/feed"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CreateBookingRequest carries the inputs for a new booking. Prices are
// supplied by the external pricing collaborator and recorded verbatim.
type CreateBookingRequest struct {
	StudentID       string    `json:"student_id"`
	ConsultantID    string    `json:"consultant_id"`
	ServiceID       string    `json:"service_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	BasePrice       float64   `json:"base_price"`
	RushMultiplier  float64   `json:"rush_multiplier,omitempty"`
	DiscountAmount  float64   `json:"discount_amount,omitempty"`
	IsGroupSession  bool      `json:"is_group_session"`
	MaxParticipants int       `json:"max_participants,omitempty"`
}

// JoinResult is the discriminated outcome of JoinGroupSession.
type JoinResult struct {
	Outcome       JoinOutcome                     `json:"outcome"`
	Participant   *models.GroupSessionParticipant `json:"participant,omitempty"`
	WaitlistEntry *models.ConsultantWaitlistEntry `json:"waitlist_entry,omitempty"`
}

// BookingService is the booking lifecycle and group-session capacity
// engine. Every operation returns a definitive outcome: domain
// conditions come back as typed errors or discriminated results, never
// panics.
type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	StartSession(ctx context.Context, bookingID string) (*models.Booking, error)
	CompleteSession(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	RefundBooking(ctx context.Context, bookingID string, amount float64) (*models.Booking, error)

	JoinGroupSession(ctx context.Context, bookingID, studentID string) (*JoinResult, error)
	LeaveGroupSession(ctx context.Context, bookingID, studentID string) (LeaveOutcome, error)
	AvailableGroupSessions(ctx context.Context, studentID string) ([]models.Booking, error)
	EnrolledGroupSessions(ctx context.Context, studentID string) ([]models.Booking, error)

	JoinWaitlist(ctx context.Context, consultantID, studentID, serviceID string) (*models.ConsultantWaitlistEntry, error)
	LeaveWaitlist(ctx context.Context, entryID, studentID string) error
	StudentWaitlists(ctx context.Context, studentID string) ([]models.ConsultantWaitlistEntry, error)

	SubmitRating(ctx context.Context, bookingID, studentID string, rating int, reviewText string) (*models.Booking, error)
	GetBookingStats(ctx context.Context, studentID string) (*models.BookingStats, error)
	ListBookings(ctx context.Context, studentID string, filters models.BookingFilters) ([]models.Booking, error)

	ToggleSavedConsultant(ctx context.Context, studentID, consultantID string) (bool, error)
	ListSavedConsultants(ctx context.Context, studentID string) ([]models.SavedConsultant, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Waitlist waitlistRepo.WaitlistRepository
	Saved    savedRepo.SavedConsultantRepository
	Feed     feed.Feed
	Cache    *redis.Client // optional; nil disables stats caching
	Logger   *zap.Logger

	// Now supplies the clock; defaults to time.Now via clock().
	Now func() time.Time

	// ReviewCreditBonus is the flat credit award for a completed review.
	ReviewCreditBonus int
	// WaitlistEntryTTL bounds how long an entry stays promotable; zero
	// disables expiry.
	WaitlistEntryTTL time.Duration
	// RetryAttempts bounds transaction retries on lost races.
	RetryAttempts int
}

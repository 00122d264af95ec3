// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors surfaced to the service layer. Expected domain
// conditions are values, never panics.
var (
	// ErrNotFound is returned when a referenced booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrCapacityFull is returned when a join attempt finds no free slot.
	// It never crosses the API boundary: the service converts it into a
	// waitlist handoff.
	ErrCapacityFull = errors.New("group session is at capacity")
	// ErrAlreadyEnrolled is returned when the student already holds an
	// active participant row for the booking.
	ErrAlreadyEnrolled = errors.New("student already enrolled in this session")
	// ErrNotEnrolled is returned when a leave finds no participant row.
	ErrNotEnrolled = errors.New("student is not enrolled in this session")
	// ErrNotJoinable is returned when the conditional capacity update
	// matched nothing because the booking is no longer a confirmed group
	// session (e.g. it was cancelled while the join was in flight).
	ErrNotJoinable = errors.New("booking is not open for enrollment")
	// ErrConcurrent is returned when the underlying transaction lost a
	// race and can safely be retried.
	ErrConcurrent = errors.New("concurrent modification, retry")
)

// BookingRepository is the persistence boundary for bookings and group
// session participants. All capacity mutation goes through JoinGroup /
// LeaveGroup / ReleaseParticipants so the participant count and the
// membership set can never diverge.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// TransitionStatus atomically moves a booking from one of the given
	// statuses to the target status, applying extra field updates in the
	// same write. When releaseParticipants is set the participant rows are
	// removed and the count zeroed in the same transaction. Returns the
	// updated booking, or ErrNotFound / a nil match if the current status
	// did not permit the transition (the caller diagnoses via GetByID).
	TransitionStatus(ctx context.Context, id string, from []string, to string, set map[string]interface{}, releaseParticipants bool) (*models.Booking, error)

	// JoinGroup inserts a participant row and increments the participant
	// count in one transaction, conditioned on the booking still being a
	// confirmed group session with free capacity.
	JoinGroup(ctx context.Context, bookingID, studentID string, joinedAt time.Time) (*models.GroupSessionParticipant, error)

	// LeaveGroup deletes the participant row and decrements the count
	// (floored at zero) in one transaction.
	LeaveGroup(ctx context.Context, bookingID, studentID string) error

	// RecordRating writes the review fields and the one-time credit bonus,
	// conditioned on status=completed and no existing review. A zero match
	// is reported as (nil, nil) for the caller to diagnose.
	RecordRating(ctx context.Context, bookingID string, rating int, reviewText string, reviewedAt time.Time, creditBonus int) (*models.Booking, error)

	ListByStudent(ctx context.Context, studentID string, filters models.BookingFilters) ([]models.Booking, error)
	ListAvailableGroupSessions(ctx context.Context, now time.Time) ([]models.Booking, error)
	ListEnrolledGroupSessions(ctx context.Context, studentID string, now time.Time) ([]models.Booking, error)
	Participants(ctx context.Context, bookingID string) ([]models.GroupSessionParticipant, error)
}

type mongoBookingRepo struct {
	bookingColl     *mongo.Collection
	participantColl *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &mongoBookingRepo{
		bookingColl:     db.Collection("bookings"),
		participantColl: db.Collection("group_session_participants"),
	}
}

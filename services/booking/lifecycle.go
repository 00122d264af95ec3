package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// transitions maps each target status to the statuses it may be
// reached from. Anything not listed here is rejected with
// ErrInvalidTransition and leaves the booking untouched.
var transitions = map[string][]string{
	models.StatusConfirmed:  {models.StatusPending},
	models.StatusInProgress: {models.StatusConfirmed},
	models.StatusCompleted:  {models.StatusInProgress},
	models.StatusCancelled:  {models.StatusPending, models.StatusConfirmed, models.StatusInProgress},
	models.StatusRefunded:   {models.StatusCompleted, models.StatusConfirmed},
}

// CreateBooking records a new booking in pending status with its final
// price computed from the supplied amounts.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if req.StudentID == "" || req.ConsultantID == "" || req.ServiceID == "" {
		return nil, fmt.Errorf("%w: student, consultant and service ids are required", ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if req.BasePrice < 0 {
		return nil, fmt.Errorf("%w: base price cannot be negative", ErrInvalidInput)
	}
	if req.IsGroupSession && req.MaxParticipants < 2 {
		return nil, fmt.Errorf("%w: group sessions need max_participants >= 2", ErrInvalidInput)
	}

	now := s.clock()
	booking := &models.Booking{
		ID:              uuid.New().String(),
		StudentID:       req.StudentID,
		ConsultantID:    req.ConsultantID,
		ServiceID:       req.ServiceID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          models.StatusPending,
		BasePrice:       req.BasePrice,
		RushMultiplier:  req.RushMultiplier,
		DiscountAmount:  req.DiscountAmount,
		FinalPrice:      FinalPrice(req.BasePrice, req.RushMultiplier, req.DiscountAmount),
		IsGroupSession:  req.IsGroupSession,
		MaxParticipants: req.MaxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, booking.StudentID)
	s.emit(models.EventBookingCreated, booking.ID, booking.StudentID, booking.Status)
	s.log().Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("student_id", booking.StudentID),
		zap.Bool("group", booking.IsGroupSession))
	return booking, nil
}

// ConfirmBooking accepts a pending booking.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusConfirmed, nil)
}

// StartSession marks a confirmed booking as in progress.
func (s *DefaultBookingService) StartSession(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusInProgress, nil)
}

// CompleteSession marks a delivered session completed. From this point
// final_price and credits_earned are frozen and the booking becomes
// eligible for rating.
func (s *DefaultBookingService) CompleteSession(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusCompleted, nil)
}

// CancelBooking cancels a booking from any pre-terminal state. For a
// group booking the participant rows are released in the same
// transaction; no waitlist promotion runs against the cancelled
// booking.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	updated, err := s.transition(ctx, bookingID, models.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.emit(models.EventBookingCancelled, updated.ID, updated.StudentID, updated.Status)
	return updated, nil
}

// RefundBooking records a refund resolved in the student's favor. The
// refund execution itself belongs to the payment collaborator; only the
// resulting amounts are recorded here.
func (s *DefaultBookingService) RefundBooking(ctx context.Context, bookingID string, amount float64) (*models.Booking, error) {
	now := s.clock()
	set := map[string]interface{}{
		"refund_requested": true,
		"refund_status":    models.RefundProcessed,
		"refund_amount":    amount,
		"refunded_at":      now,
	}
	return s.transition(ctx, bookingID, models.StatusRefunded, set)
}

// transition performs one state-machine step. The repository pins the
// allowed "from" statuses in its conditional update, so a concurrent
// competitor loses cleanly and is diagnosed here against the
// post-transition state.
func (s *DefaultBookingService) transition(ctx context.Context, bookingID, to string, set map[string]interface{}) (*models.Booking, error) {
	from, ok := transitions[to]
	if !ok {
		return nil, ErrInvalidTransition
	}

	// Cancelling or refunding a group booking must release every
	// remaining participant atomically with the status write.
	release := to == models.StatusCancelled || to == models.StatusRefunded

	var updated *models.Booking
	err := s.withRetry(func() error {
		var err error
		updated, err = s.Repo.TransitionStatus(ctx, bookingID, from, to, set, release)
		return err
	})
	if err != nil {
		return nil, err
	}

	if updated == nil {
		current, err := s.Repo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		s.log().Warn("rejected status transition",
			zap.String("booking_id", bookingID),
			zap.String("from", current.Status),
			zap.String("to", to))
		return nil, ErrInvalidTransition
	}

	s.invalidateStats(ctx, updated.StudentID)
	s.emit(models.EventStatusChanged, updated.ID, updated.StudentID, updated.Status)
	s.log().Info("booking status changed",
		zap.String("booking_id", updated.ID),
		zap.String("status", updated.Status))
	return updated, nil
}

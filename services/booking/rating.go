package booking

import (
	"context"
	"errors"
	"strings"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"

	"go.uber.org/zap"
)

// SubmitRating records a post-completion rating and the one-time review
// credit bonus. The write is idempotent: the reviewed_at null-check
// runs inside the same conditional update as the credit increment, so a
// duplicate submission returns ErrAlreadyRated and never grants credits
// twice.
func (s *DefaultBookingService) SubmitRating(ctx context.Context, bookingID, studentID string, rating int, reviewText string) (*models.Booking, error) {
	if rating < 1 || rating > 5 || strings.TrimSpace(reviewText) == "" {
		return nil, ErrInvalidRating
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.StudentID != studentID {
		return nil, ErrNotFound
	}
	if b.Status != models.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if b.ReviewedAt != nil {
		return nil, ErrAlreadyRated
	}

	bonus := s.ReviewCreditBonus
	updated, err := s.Repo.RecordRating(ctx, bookingID, rating, reviewText, s.clock(), bonus)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Lost a race between the check above and the write: either a
		// concurrent submission won or the status moved on. Re-read to
		// report the precise outcome.
		current, err := s.Repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if current.ReviewedAt != nil {
			return nil, ErrAlreadyRated
		}
		return nil, ErrNotCompleted
	}

	s.invalidateStats(ctx, studentID)
	s.emit(models.EventRatingRecorded, bookingID, studentID, updated.Status)
	s.log().Info("rating recorded",
		zap.String("booking_id", bookingID),
		zap.Int("rating", rating),
		zap.Int("credit_bonus", bonus))
	return updated, nil
}

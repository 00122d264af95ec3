package booking

import (
	"context"
	"encoding/json"
	"time"

	"consultly/models"

	"go.uber.org/zap"
)

const (
	statsCacheKeyPrefix = "booking-stats:"
	statsCacheTTL       = 5 * time.Minute
)

// GetBookingStats returns the aggregate of the student's bookings.
// Stats are always re-derivable from the booking set alone; the Redis
// cache is an optimization invalidated on every booking write, never a
// second source of truth.
func (s *DefaultBookingService) GetBookingStats(ctx context.Context, studentID string) (*models.BookingStats, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, statsCacheKeyPrefix+studentID).Result(); err == nil {
			var stats models.BookingStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	bookings, err := s.Repo.ListByStudent(ctx, studentID, models.BookingFilters{})
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(bookings, s.clock())

	if s.Cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.Cache.Set(ctx, statsCacheKeyPrefix+studentID, payload, statsCacheTTL).Err(); err != nil {
				s.log().Warn("failed to cache booking stats",
					zap.String("student_id", studentID), zap.Error(err))
			}
		}
	}
	return stats, nil
}

// ListBookings returns the student's bookings narrowed by filters.
func (s *DefaultBookingService) ListBookings(ctx context.Context, studentID string, filters models.BookingFilters) ([]models.Booking, error) {
	return s.Repo.ListByStudent(ctx, studentID, filters)
}

// ToggleSavedConsultant flips the bookmark relation and reports the
// resulting membership.
func (s *DefaultBookingService) ToggleSavedConsultant(ctx context.Context, studentID, consultantID string) (bool, error) {
	return s.Saved.Toggle(ctx, studentID, consultantID)
}

// ListSavedConsultants returns the student's bookmarks, newest first.
func (s *DefaultBookingService) ListSavedConsultants(ctx context.Context, studentID string) ([]models.SavedConsultant, error) {
	return s.Saved.ListByStudent(ctx, studentID)
}

// ComputeStats is a pure aggregation over a booking set: spent and
// credits count completed bookings only, upcoming means confirmed and
// scheduled after now, and the unrated count covers completed bookings
// awaiting a review.
func ComputeStats(bookings []models.Booking, now time.Time) *models.BookingStats {
	stats := &models.BookingStats{TotalSessions: len(bookings)}

	var totalRating, ratedCount int
	for _, b := range bookings {
		switch b.Status {
		case models.StatusCompleted:
			stats.CompletedSessions++
			stats.TotalSpent += b.FinalPrice
			stats.TotalCreditsEarned += b.CreditsEarned
			if b.Rating > 0 {
				totalRating += b.Rating
				ratedCount++
			} else {
				stats.UnratedSessions++
			}
		case models.StatusCancelled:
			stats.CancelledSessions++
		case models.StatusRefunded:
			stats.RefundedSessions++
		case models.StatusConfirmed:
			if b.ScheduledAt.After(now) {
				stats.UpcomingSessions++
			}
		}
	}

	if ratedCount > 0 {
		stats.AverageRating = float64(totalRating) / float64(ratedCount)
	}
	return stats
}

// invalidateStats drops the cached aggregate after a booking write.
func (s *DefaultBookingService) invalidateStats(ctx context.Context, studentID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, statsCacheKeyPrefix+studentID).Err(); err != nil {
		s.log().Warn("failed to invalidate stats cache",
			zap.String("student_id", studentID), zap.Error(err))
	}
}

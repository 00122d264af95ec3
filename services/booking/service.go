package booking

import (
	"errors"
	"time"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// withRetry runs fn, retrying with linear backoff while the underlying
// transaction reports a lost race. After the attempt budget it surfaces
// ErrConcurrentModification for the caller to retry.
func (s *DefaultBookingService) withRetry(fn func() error) error {
	attempts := s.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, bookingRepo.ErrConcurrent) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return ErrConcurrentModification
}

// emit publishes a change-feed event; the feed is optional so tests and
// tools can run without one.
func (s *DefaultBookingService) emit(eventType, bookingID, studentID, status string) {
	if s.Feed == nil {
		return
	}
	s.Feed.Publish(models.BookingEvent{
		Type:      eventType,
		BookingID: bookingID,
		StudentID: studentID,
		Status:    status,
		At:        s.clock(),
	})
}

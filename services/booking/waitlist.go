package booking

import (
	"context"
	"errors"

	bookingRepo "consultly/database/repository/booking"
	waitlistRepo "consultly/database/repository/waitlist"
	"consultly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JoinWaitlist queues the student for a consultant (optionally scoped
// to one service). Positions are assigned FIFO.
func (s *DefaultBookingService) JoinWaitlist(ctx context.Context, consultantID, studentID, serviceID string) (*models.ConsultantWaitlistEntry, error) {
	return s.enqueueWaitlist(ctx, consultantID, studentID, serviceID)
}

func (s *DefaultBookingService) enqueueWaitlist(ctx context.Context, consultantID, studentID, serviceID string) (*models.ConsultantWaitlistEntry, error) {
	now := s.clock()
	entry := &models.ConsultantWaitlistEntry{
		ID:           uuid.New().String(),
		ConsultantID: consultantID,
		StudentID:    studentID,
		ServiceID:    serviceID,
		JoinedAt:     now,
	}
	if s.WaitlistEntryTTL > 0 {
		expires := now.Add(s.WaitlistEntryTTL)
		entry.ExpiresAt = &expires
	}

	err := s.withRetry(func() error {
		return s.Waitlist.Append(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrDuplicateEntry) {
			return nil, ErrAlreadyOnWaitlist
		}
		return nil, err
	}
	return entry, nil
}

// LeaveWaitlist removes the student's own entry; later entries shift
// forward to keep positions dense.
func (s *DefaultBookingService) LeaveWaitlist(ctx context.Context, entryID, studentID string) error {
	entry, err := s.Waitlist.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if entry.StudentID != studentID {
		return ErrNotFound
	}

	err = s.withRetry(func() error {
		return s.Waitlist.Remove(ctx, entryID)
	})
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// StudentWaitlists lists every queue the student currently waits on.
func (s *DefaultBookingService) StudentWaitlists(ctx context.Context, studentID string) ([]models.ConsultantWaitlistEntry, error) {
	return s.Waitlist.ListByStudent(ctx, studentID)
}

// onSlotFreed promotes the head of the consultant's waitlist into the
// freed slot. Expired entries are skipped and lazily purged; stale
// entries (student already enrolled) are dropped; attempts are capped
// at the queue length observed when the slot freed, so promotion can
// never loop forever over a fully stale queue.
func (s *DefaultBookingService) onSlotFreed(ctx context.Context, bookingID string) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil || !b.IsGroupSession || b.Status != models.StatusConfirmed || !b.ScheduledAt.After(s.clock()) {
		// A cancelled, finished or already-elapsed session never
		// receives promotions; same precondition a direct join meets.
		return
	}

	entries, err := s.Waitlist.ListByConsultant(ctx, b.ConsultantID)
	if err != nil {
		s.log().Error("failed to load waitlist for promotion",
			zap.String("consultant_id", b.ConsultantID), zap.Error(err))
		return
	}

	now := s.clock()
	attempts := len(entries)
	for _, entry := range entries {
		if attempts <= 0 {
			return
		}
		attempts--

		if entry.ServiceID != "" && entry.ServiceID != b.ServiceID {
			continue
		}
		if entry.Expired(now) {
			if err := s.Waitlist.Remove(ctx, entry.ID); err != nil && !errors.Is(err, waitlistRepo.ErrNotFound) {
				s.log().Warn("failed to purge expired waitlist entry",
					zap.String("entry_id", entry.ID), zap.Error(err))
			}
			continue
		}

		_, err := s.Repo.JoinGroup(ctx, bookingID, entry.StudentID, now)
		switch {
		case err == nil:
			if err := s.Waitlist.MarkNotified(ctx, entry.ID); err != nil && !errors.Is(err, waitlistRepo.ErrNotFound) {
				s.log().Warn("failed to mark promoted entry notified",
					zap.String("entry_id", entry.ID), zap.Error(err))
			}
			if err := s.Waitlist.Remove(ctx, entry.ID); err != nil && !errors.Is(err, waitlistRepo.ErrNotFound) {
				s.log().Warn("failed to dequeue promoted entry",
					zap.String("entry_id", entry.ID), zap.Error(err))
			}
			s.emit(models.EventPromoted, bookingID, entry.StudentID, b.Status)
			s.log().Info("promoted waitlist entry into freed slot",
				zap.String("booking_id", bookingID),
				zap.String("student_id", entry.StudentID))
			return

		case errors.Is(err, bookingRepo.ErrAlreadyEnrolled):
			// Stale entry: the student got in some other way.
			if err := s.Waitlist.Remove(ctx, entry.ID); err != nil && !errors.Is(err, waitlistRepo.ErrNotFound) {
				s.log().Warn("failed to drop stale waitlist entry",
					zap.String("entry_id", entry.ID), zap.Error(err))
			}
			continue

		case errors.Is(err, bookingRepo.ErrCapacityFull), errors.Is(err, bookingRepo.ErrNotJoinable):
			// Someone else took the slot, or the booking closed. Done.
			return

		default:
			s.log().Error("waitlist promotion failed",
				zap.String("booking_id", bookingID),
				zap.String("entry_id", entry.ID), zap.Error(err))
			return
		}
	}
}

// PurgeExpiredWaitlistEntries removes entries whose expiry has passed.
// Called by the periodic sweep.
func (s *DefaultBookingService) PurgeExpiredWaitlistEntries(ctx context.Context) (int64, error) {
	return s.Waitlist.PurgeExpired(ctx, s.clock())
}

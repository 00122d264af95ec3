package booking

import (
	"context"
	"errors"

	bookingRepo "consultly/database/repository/booking"
	"consultly/models"

	"go.uber.org/zap"
)

// JoinGroupSession admits the student into a group session, routes them
// to the consultant's waitlist when the session is full, or reports an
// existing enrollment. Admission is atomic with the participant-count
// increment: the repository serializes the compare-and-increment, so
// two students racing for the last slot get exactly one admission.
func (s *DefaultBookingService) JoinGroupSession(ctx context.Context, bookingID, studentID string) (*JoinResult, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !b.IsGroupSession || b.Status != models.StatusConfirmed || !b.ScheduledAt.After(s.clock()) {
		return nil, ErrNotJoinable
	}

	var participant *models.GroupSessionParticipant
	err = s.withRetry(func() error {
		var err error
		participant, err = s.Repo.JoinGroup(ctx, bookingID, studentID, s.clock())
		return err
	})

	switch {
	case err == nil:
		s.emit(models.EventAdmitted, bookingID, studentID, b.Status)
		s.log().Info("student admitted to group session",
			zap.String("booking_id", bookingID),
			zap.String("student_id", studentID))
		return &JoinResult{Outcome: JoinAdmitted, Participant: participant}, nil

	case errors.Is(err, bookingRepo.ErrAlreadyEnrolled):
		return &JoinResult{Outcome: JoinAlreadyEnrolled}, nil

	case errors.Is(err, bookingRepo.ErrCapacityFull):
		entry, werr := s.enqueueWaitlist(ctx, b.ConsultantID, studentID, b.ServiceID)
		if werr != nil {
			return nil, werr
		}
		s.emit(models.EventWaitlisted, bookingID, studentID, b.Status)
		s.log().Info("student waitlisted for full group session",
			zap.String("booking_id", bookingID),
			zap.String("student_id", studentID),
			zap.Int("position", entry.Position))
		return &JoinResult{Outcome: JoinWaitlisted, WaitlistEntry: entry}, nil

	case errors.Is(err, bookingRepo.ErrNotJoinable):
		// The booking stopped being joinable while the join was in
		// flight (e.g. cancelled concurrently).
		return nil, ErrNotJoinable

	default:
		return nil, err
	}
}

// LeaveGroupSession releases the student's slot. A missing enrollment
// is an idempotent no-op reported as LeaveNotEnrolled. A successful
// leave frees a slot and triggers waitlist promotion for that booking.
func (s *DefaultBookingService) LeaveGroupSession(ctx context.Context, bookingID, studentID string) (LeaveOutcome, error) {
	err := s.withRetry(func() error {
		return s.Repo.LeaveGroup(ctx, bookingID, studentID)
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotEnrolled) {
			return LeaveNotEnrolled, nil
		}
		return "", err
	}

	s.emit(models.EventLeft, bookingID, studentID, "")
	s.emit(models.EventSlotFreed, bookingID, "", "")
	s.log().Info("student left group session",
		zap.String("booking_id", bookingID),
		zap.String("student_id", studentID))

	s.onSlotFreed(ctx, bookingID)
	return LeaveLeft, nil
}

// AvailableGroupSessions lists confirmed upcoming group sessions with
// free capacity, excluding ones the student is already enrolled in.
func (s *DefaultBookingService) AvailableGroupSessions(ctx context.Context, studentID string) ([]models.Booking, error) {
	now := s.clock()
	available, err := s.Repo.ListAvailableGroupSessions(ctx, now)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.Repo.ListEnrolledGroupSessions(ctx, studentID, now)
	if err != nil {
		return nil, err
	}

	enrolledIDs := make(map[string]bool, len(enrolled))
	for _, b := range enrolled {
		enrolledIDs[b.ID] = true
	}

	filtered := make([]models.Booking, 0, len(available))
	for _, b := range available {
		if !enrolledIDs[b.ID] {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// EnrolledGroupSessions lists the student's upcoming group enrollments.
func (s *DefaultBookingService) EnrolledGroupSessions(ctx context.Context, studentID string) ([]models.Booking, error) {
	return s.Repo.ListEnrolledGroupSessions(ctx, studentID, s.clock())
}

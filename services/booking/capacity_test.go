package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"consultly/models"
)

func TestJoinGroupSessionAdmits(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.seedGroupSession("group-1", 3)

	res, err := env.svc.JoinGroupSession(ctx, b.ID, "student-a")
	if err != nil {
		t.Fatalf("JoinGroupSession failed: %v", err)
	}
	if res.Outcome != JoinAdmitted {
		t.Fatalf("expected admitted, got %s", res.Outcome)
	}
	if res.Participant == nil || res.Participant.StudentID != "student-a" {
		t.Fatalf("expected participant row for student-a, got %+v", res.Participant)
	}

	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CurrentParticipants != 1 {
		t.Errorf("expected participant count 1, got %d", current.CurrentParticipants)
	}
}

func TestJoinGroupSessionIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.seedGroupSession("group-1", 3)

	if _, err := env.svc.JoinGroupSession(ctx, b.ID, "student-a"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	res, err := env.svc.JoinGroupSession(ctx, b.ID, "student-a")
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if res.Outcome != JoinAlreadyEnrolled {
		t.Fatalf("expected already_enrolled, got %s", res.Outcome)
	}

	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CurrentParticipants != 1 {
		t.Errorf("duplicate join changed participant count to %d", current.CurrentParticipants)
	}
}

func TestJoinFullSessionWaitlists(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.seedGroupSession("group-1", 2)

	env.svc.JoinGroupSession(ctx, b.ID, "student-a")
	env.svc.JoinGroupSession(ctx, b.ID, "student-b")

	res, err := env.svc.JoinGroupSession(ctx, b.ID, "student-c")
	if err != nil {
		t.Fatalf("join on full session failed: %v", err)
	}
	if res.Outcome != JoinWaitlisted {
		t.Fatalf("expected waitlisted, got %s", res.Outcome)
	}
	if res.WaitlistEntry == nil || res.WaitlistEntry.Position != 1 {
		t.Fatalf("expected waitlist position 1, got %+v", res.WaitlistEntry)
	}

	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CurrentParticipants != 2 {
		t.Errorf("overflow join changed participant count to %d", current.CurrentParticipants)
	}
}

func TestJoinNonJoinableBookings(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// One-on-one booking.
	solo, _ := env.svc.CreateBooking(ctx, CreateBookingRequest{
		StudentID:       "student-1",
		ConsultantID:    "consultant-1",
		ServiceID:       "service-1",
		ScheduledAt:     env.now.Add(24 * time.Hour),
		DurationMinutes: 60,
		BasePrice:       50,
	})
	env.svc.ConfirmBooking(ctx, solo.ID)
	if _, err := env.svc.JoinGroupSession(ctx, solo.ID, "student-a"); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("one-on-one join: expected ErrNotJoinable, got %v", err)
	}

	// Unconfirmed group session.
	pending := env.seedGroupSession("group-pending", 3)
	pending.Status = models.StatusPending
	env.repo.Create(ctx, pending)
	if _, err := env.svc.JoinGroupSession(ctx, pending.ID, "student-a"); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("pending join: expected ErrNotJoinable, got %v", err)
	}

	// Past session.
	past := env.seedGroupSession("group-past", 3)
	past.ScheduledAt = env.now.Add(-time.Hour)
	env.repo.Create(ctx, past)
	if _, err := env.svc.JoinGroupSession(ctx, past.ID, "student-a"); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("past join: expected ErrNotJoinable, got %v", err)
	}

	// Unknown booking.
	if _, err := env.svc.JoinGroupSession(ctx, "no-such-id", "student-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown join: expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	const capacity = 5
	const contenders = 40
	b := env.seedGroupSession("group-race", capacity)

	var wg sync.WaitGroup
	outcomes := make(chan JoinOutcome, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := env.svc.JoinGroupSession(ctx, b.ID, fmt.Sprintf("student-%d", n))
			if err != nil {
				t.Errorf("join %d failed: %v", n, err)
				return
			}
			outcomes <- res.Outcome
		}(i)
	}
	wg.Wait()
	close(outcomes)

	admitted, waitlisted := 0, 0
	for o := range outcomes {
		switch o {
		case JoinAdmitted:
			admitted++
		case JoinWaitlisted:
			waitlisted++
		}
	}
	if admitted != capacity {
		t.Errorf("expected exactly %d admissions, got %d", capacity, admitted)
	}
	if waitlisted != contenders-capacity {
		t.Errorf("expected %d waitlisted, got %d", contenders-capacity, waitlisted)
	}

	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CurrentParticipants != capacity {
		t.Errorf("participant count %d exceeds capacity %d", current.CurrentParticipants, capacity)
	}
	if n := env.repo.participantCount(b.ID); n != capacity {
		t.Errorf("participant rows %d diverge from count %d", n, capacity)
	}
}

func TestLeaveGroupSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.seedGroupSession("group-1", 3)

	env.svc.JoinGroupSession(ctx, b.ID, "student-a")

	outcome, err := env.svc.LeaveGroupSession(ctx, b.ID, "student-a")
	if err != nil {
		t.Fatalf("LeaveGroupSession failed: %v", err)
	}
	if outcome != LeaveLeft {
		t.Fatalf("expected left, got %s", outcome)
	}
	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CurrentParticipants != 0 {
		t.Errorf("expected participant count 0 after leave, got %d", current.CurrentParticipants)
	}

	// Leaving again is an idempotent no-op.
	outcome, err = env.svc.LeaveGroupSession(ctx, b.ID, "student-a")
	if err != nil {
		t.Fatalf("second leave failed: %v", err)
	}
	if outcome != LeaveNotEnrolled {
		t.Fatalf("expected not_enrolled, got %s", outcome)
	}
}

func TestAvailableGroupSessionsExcludesFullAndEnrolled(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	open := env.seedGroupSession("group-open", 3)
	full := env.seedGroupSession("group-full", 2)
	enrolled := env.seedGroupSession("group-enrolled", 3)

	env.svc.JoinGroupSession(ctx, full.ID, "other-1")
	env.svc.JoinGroupSession(ctx, full.ID, "other-2")
	env.svc.JoinGroupSession(ctx, enrolled.ID, "student-a")

	sessions, err := env.svc.AvailableGroupSessions(ctx, "student-a")
	if err != nil {
		t.Fatalf("AvailableGroupSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != open.ID {
		ids := make([]string, 0, len(sessions))
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
		t.Fatalf("expected only %s available, got %v", open.ID, ids)
	}

	mine, err := env.svc.EnrolledGroupSessions(ctx, "student-a")
	if err != nil {
		t.Fatalf("EnrolledGroupSessions failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != enrolled.ID {
		t.Fatalf("expected enrollment in %s only, got %+v", enrolled.ID, mine)
	}
}

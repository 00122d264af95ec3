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

func (env *testEnv) completedBooking(t *testing.T, studentID string) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := env.svc.CreateBooking(ctx, CreateBookingRequest{
		StudentID:       studentID,
		ConsultantID:    "consultant-1",
		ServiceID:       "service-1",
		ScheduledAt:     env.now.Add(24 * time.Hour),
		DurationMinutes: 60,
		BasePrice:       50,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	for _, op := range []func(context.Context, string) (*models.Booking, error){
		env.svc.ConfirmBooking, env.svc.StartSession, env.svc.CompleteSession,
	} {
		if b, err = op(ctx, b.ID); err != nil {
			t.Fatalf("transition failed: %v", err)
		}
	}
	return b
}

func TestSubmitRatingAwardsCreditsOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.completedBooking(t, "student-1")

	updated, err := env.svc.SubmitRating(ctx, b.ID, "student-1", 5, "excellent session")
	if err != nil {
		t.Fatalf("SubmitRating failed: %v", err)
	}
	if updated.Rating != 5 || updated.ReviewText != "excellent session" {
		t.Errorf("review fields not recorded: %+v", updated)
	}
	if updated.ReviewedAt == nil {
		t.Error("expected reviewed_at to be set")
	}
	if updated.CreditsEarned != 5 {
		t.Errorf("expected 5 credits, got %d", updated.CreditsEarned)
	}

	// Second submission is rejected and grants nothing.
	if _, err := env.svc.SubmitRating(ctx, b.ID, "student-1", 3, "changed my mind"); !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.Rating != 5 || current.CreditsEarned != 5 {
		t.Errorf("duplicate submission altered the record: %+v", current)
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.completedBooking(t, "student-1")

	for _, tc := range []struct {
		rating int
		text   string
	}{
		{0, "too low"},
		{6, "too high"},
		{4, ""},
		{4, "   "},
	} {
		if _, err := env.svc.SubmitRating(ctx, b.ID, "student-1", tc.rating, tc.text); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating=%d text=%q: expected ErrInvalidRating, got %v", tc.rating, tc.text, err)
		}
	}
}

func TestSubmitRatingRequiresCompletion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	b, _ := env.svc.CreateBooking(ctx, CreateBookingRequest{
		StudentID:       "student-1",
		ConsultantID:    "consultant-1",
		ServiceID:       "service-1",
		ScheduledAt:     env.now.Add(24 * time.Hour),
		DurationMinutes: 60,
		BasePrice:       50,
	})
	env.svc.ConfirmBooking(ctx, b.ID)

	if _, err := env.svc.SubmitRating(ctx, b.ID, "student-1", 4, "premature"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestSubmitRatingOwnershipAndUnknown(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.completedBooking(t, "student-1")

	if _, err := env.svc.SubmitRating(ctx, b.ID, "student-2", 4, "not mine"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign rating: expected ErrNotFound, got %v", err)
	}
	if _, err := env.svc.SubmitRating(ctx, "no-such-id", "student-1", 4, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown rating: expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentRatingsGrantSingleBonus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	b := env.completedBooking(t, "student-1")

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.svc.SubmitRating(ctx, b.ID, "student-1", 4, fmt.Sprintf("attempt %d", n))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrAlreadyRated) {
				t.Errorf("attempt %d: unexpected error %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful submission, got %d", succeeded)
	}
	current, _ := env.repo.GetByID(ctx, b.ID)
	if current.CreditsEarned != 5 {
		t.Errorf("expected single credit award of 5, got %d", current.CreditsEarned)
	}
}

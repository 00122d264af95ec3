package booking

import "errors"

// Domain errors. All of these are expected outcomes returned as values
// across the API boundary; only infrastructure failures propagate as
// wrapped unexpected errors.
var (
	// ErrInvalidInput is returned when a create request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the referenced booking, waitlist entry
	// or owner does not match.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a status change violates the
	// state machine. The booking is left unchanged.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotJoinable is returned when a group join targets a booking that
	// is not a confirmed, upcoming group session.
	ErrNotJoinable = errors.New("booking is not open for enrollment")
	// ErrInvalidRating is returned when the rating is outside 1..5 or the
	// review text is empty.
	ErrInvalidRating = errors.New("rating must be 1-5 with a non-empty review")
	// ErrNotCompleted is returned when a rating targets a booking that
	// has not completed.
	ErrNotCompleted = errors.New("booking is not completed")
	// ErrAlreadyRated is returned on duplicate rating submissions; the
	// first submission's credits stand.
	ErrAlreadyRated = errors.New("booking already rated")
	// ErrAlreadyOnWaitlist is returned when the student already holds an
	// active entry for the same consultant and service.
	ErrAlreadyOnWaitlist = errors.New("already on this waitlist")
	// ErrConcurrentModification is returned after bounded retries when a
	// transaction keeps losing races. Callers may retry.
	ErrConcurrentModification = errors.New("concurrent modification, retry")
)

// JoinOutcome discriminates the result of a group session join.
type JoinOutcome string

const (
	JoinAdmitted        JoinOutcome = "admitted"
	JoinWaitlisted      JoinOutcome = "waitlisted"
	JoinAlreadyEnrolled JoinOutcome = "already_enrolled"
)

// LeaveOutcome discriminates the result of a group session leave.
type LeaveOutcome string

const (
	LeaveLeft        LeaveOutcome = "left"
	LeaveNotEnrolled LeaveOutcome = "not_enrolled"
)

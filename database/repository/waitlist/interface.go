// File: database/repository/waitlist/interface.go
package waitlistRepo

import (
	"context"
	"errors"
	"time"

	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a waitlist entry does not exist.
	ErrNotFound = errors.New("waitlist entry not found")
	// ErrDuplicateEntry is returned when the student already holds an
	// active entry for the same (consultant, service) tuple.
	ErrDuplicateEntry = errors.New("student already on this waitlist")
)

// WaitlistRepository persists per-consultant FIFO waitlists. Positions
// are 1-based and dense within one consultant's queue; Remove renumbers
// everything behind the removed entry in the same transaction.
type WaitlistRepository interface {
	Append(ctx context.Context, entry *models.ConsultantWaitlistEntry) error
	Remove(ctx context.Context, entryID string) error
	GetByID(ctx context.Context, entryID string) (*models.ConsultantWaitlistEntry, error)
	ListByConsultant(ctx context.Context, consultantID string) ([]models.ConsultantWaitlistEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ConsultantWaitlistEntry, error)
	MarkNotified(ctx context.Context, entryID string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoWaitlistRepo struct {
	coll *mongo.Collection
}

// NewMongoWaitlistRepo constructs a MongoDB WaitlistRepository.
func NewMongoWaitlistRepo() WaitlistRepository {
	return &mongoWaitlistRepo{
		coll: database.DB().Collection("consultant_waitlist"),
	}
}

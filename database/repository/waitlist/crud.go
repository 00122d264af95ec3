package waitlistRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts a new entry at the tail of the consultant's queue.
// The position read and the insert share one transaction so two
// concurrent appends cannot claim the same position.
func (repo *mongoWaitlistRepo) Append(ctx context.Context, entry *models.ConsultantWaitlistEntry) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		dup := bson.M{
			"consultant_id": entry.ConsultantID,
			"student_id":    entry.StudentID,
			"service_id":    entry.ServiceID,
		}
		count, err := repo.coll.CountDocuments(sc, dup)
		if err != nil {
			return fmt.Errorf("check duplicate waitlist entry: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEntry
		}

		// Tail position = current max + 1.
		opts := options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})
		var tail models.ConsultantWaitlistEntry
		err = repo.coll.FindOne(sc, bson.M{"consultant_id": entry.ConsultantID}, opts).Decode(&tail)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			entry.Position = 1
		case err != nil:
			return fmt.Errorf("find tail position: %w", err)
		default:
			entry.Position = tail.Position + 1
		}

		if _, err := repo.coll.InsertOne(sc, entry); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateEntry
			}
			return fmt.Errorf("insert waitlist entry: %w", err)
		}
		return nil
	}

	return runTxn(ctx, sess, txnFn)
}

// Remove deletes an entry and renumbers every later entry in the same
// consultant queue down by one, keeping positions dense. O(n) in the
// queue length, which stays in the tens for this domain.
func (repo *mongoWaitlistRepo) Remove(ctx context.Context, entryID string) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		var entry models.ConsultantWaitlistEntry
		err := repo.coll.FindOneAndDelete(sc, bson.M{"id": entryID}).Decode(&entry)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("delete waitlist entry: %w", err)
		}

		_, err = repo.coll.UpdateMany(sc,
			bson.M{
				"consultant_id": entry.ConsultantID,
				"position":      bson.M{"$gt": entry.Position},
			},
			bson.M{"$inc": bson.M{"position": -1}},
		)
		if err != nil {
			return fmt.Errorf("renumber waitlist positions: %w", err)
		}
		return nil
	}

	return runTxn(ctx, sess, txnFn)
}

// GetByID returns one entry or ErrNotFound.
func (repo *mongoWaitlistRepo) GetByID(ctx context.Context, entryID string) (*models.ConsultantWaitlistEntry, error) {
	var entry models.ConsultantWaitlistEntry
	err := repo.coll.FindOne(ctx, bson.M{"id": entryID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get waitlist entry: %w", err)
	}
	return &entry, nil
}

// ListByConsultant returns a consultant's queue in FIFO order.
func (repo *mongoWaitlistRepo) ListByConsultant(ctx context.Context, consultantID string) ([]models.ConsultantWaitlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"consultant_id": consultantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ConsultantWaitlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode waitlist: %w", err)
	}
	return entries, nil
}

// ListByStudent returns every queue the student currently waits on.
func (repo *mongoWaitlistRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ConsultantWaitlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list student waitlists: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ConsultantWaitlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode student waitlists: %w", err)
	}
	return entries, nil
}

// MarkNotified flags an entry as notified after a promotion.
func (repo *mongoWaitlistRepo) MarkNotified(ctx context.Context, entryID string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": entryID}, bson.M{"$set": bson.M{"notified": true}})
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired removes entries whose expiry has passed. Each removal
// goes through Remove so positions stay dense.
func (repo *mongoWaitlistRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cursor, err := repo.coll.Find(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("find expired entries: %w", err)
	}
	var expired []models.ConsultantWaitlistEntry
	if err := cursor.All(ctx, &expired); err != nil {
		return 0, fmt.Errorf("decode expired entries: %w", err)
	}

	var purged int64
	for _, entry := range expired {
		if err := repo.Remove(ctx, entry.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return purged, err
		}
		purged++
	}
	return purged, nil
}

// runTxn wraps a function in a mongo transaction.
func runTxn(ctx context.Context, sess mongo.Session, txnFn func(mongo.SessionContext) error) error {
	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

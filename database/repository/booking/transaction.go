package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JoinGroup admits a student into a group session. The participant
// insert and the count increment commit together or not at all, and the
// increment is conditioned on current_participants < max_participants,
// so two students racing for the last slot can never both get in.
func (repo *mongoBookingRepo) JoinGroup(
	ctx context.Context,
	bookingID, studentID string,
	joinedAt time.Time,
) (*models.GroupSessionParticipant, error) {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	participant := &models.GroupSessionParticipant{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		StudentID: studentID,
		JoinedAt:  joinedAt,
	}

	txnFn := func(sc mongo.SessionContext) error {
		// The unique (booking_id, student_id) index turns a concurrent
		// double-join into a duplicate key error here.
		if _, err := repo.participantColl.InsertOne(sc, participant); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("insert participant: %w", err)
		}

		filter := bson.M{
			"id":               bookingID,
			"is_group_session": true,
			"status":           models.StatusConfirmed,
			"$expr": bson.M{
				"$lt": bson.A{"$current_participants", "$max_participants"},
			},
		}
		update := bson.M{
			"$inc": bson.M{"current_participants": 1},
			"$set": bson.M{"updated_at": joinedAt},
		}

		res, err := repo.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("increment participant count: %w", err)
		}
		if res.MatchedCount == 0 {
			// Either the session filled up, or it stopped being a
			// confirmed group session while we were joining. Distinguish
			// inside the same transaction so the caller gets a precise
			// outcome and the participant insert is rolled back.
			var b models.Booking
			if err := repo.bookingColl.FindOne(sc, bson.M{"id": bookingID}).Decode(&b); err != nil {
				return ErrNotJoinable
			}
			if b.IsGroupSession && b.Status == models.StatusConfirmed {
				return ErrCapacityFull
			}
			return ErrNotJoinable
		}
		return nil
	}

	if err := runTxn(ctx, sess, txnFn); err != nil {
		return nil, err
	}
	return participant, nil
}

// LeaveGroup removes a student's participant row and releases the slot.
// The delete and the decrement share one transaction; the decrement is
// floored at zero by its own filter.
func (repo *mongoBookingRepo) LeaveGroup(ctx context.Context, bookingID, studentID string) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.participantColl.DeleteOne(sc, bson.M{
			"booking_id": bookingID,
			"student_id": studentID,
		})
		if err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotEnrolled
		}

		_, err = repo.bookingColl.UpdateOne(sc,
			bson.M{"id": bookingID, "current_participants": bson.M{"$gt": 0}},
			bson.M{
				"$inc": bson.M{"current_participants": -1},
				"$set": bson.M{"updated_at": time.Now().UTC()},
			},
		)
		if err != nil {
			return fmt.Errorf("decrement participant count: %w", err)
		}
		return nil
	}

	return runTxn(ctx, sess, txnFn)
}

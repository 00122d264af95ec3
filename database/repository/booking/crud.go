package bookingRepo

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

// Create inserts a new booking document.
func (repo *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := repo.bookingColl.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a single booking or ErrNotFound.
func (repo *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

// TransitionStatus performs the state-machine write as a single
// conditional update: the filter pins the current status to the allowed
// "from" set, so of two racing writers exactly one matches and the
// other observes the post-transition state. With releaseParticipants
// the participant cascade runs in the same multi-document transaction.
func (repo *mongoBookingRepo) TransitionStatus(
	ctx context.Context,
	id string,
	from []string,
	to string,
	set map[string]interface{},
	releaseParticipants bool,
) (*models.Booking, error) {
	setFields := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range set {
		setFields[k] = v
	}
	if releaseParticipants {
		setFields["current_participants"] = 0
	}

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": from},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	if !releaseParticipants {
		var updated models.Booking
		err := repo.bookingColl.FindOneAndUpdate(ctx, filter, bson.M{"$set": setFields}, opts).Decode(&updated)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Not found or wrong status; the service diagnoses which.
				return nil, nil
			}
			return nil, fmt.Errorf("transition booking status: %w", err)
		}
		return &updated, nil
	}

	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var updated *models.Booking
	txnFn := func(sc mongo.SessionContext) error {
		var b models.Booking
		if err := repo.bookingColl.FindOneAndUpdate(sc, filter, bson.M{"$set": setFields}, opts).Decode(&b); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				updated = nil
				return nil
			}
			return fmt.Errorf("transition booking status: %w", err)
		}
		if _, err := repo.participantColl.DeleteMany(sc, bson.M{"booking_id": id}); err != nil {
			return fmt.Errorf("release participants: %w", err)
		}
		updated = &b
		return nil
	}

	if err := runTxn(ctx, sess, txnFn); err != nil {
		return nil, err
	}
	return updated, nil
}

// RecordRating writes the review fields and the credit bonus in one
// conditional update. The reviewed_at null-check inside the filter is
// the idempotency guard: a duplicate submission matches nothing and
// credits are never granted twice.
func (repo *mongoBookingRepo) RecordRating(
	ctx context.Context,
	bookingID string,
	rating int,
	reviewText string,
	reviewedAt time.Time,
	creditBonus int,
) (*models.Booking, error) {
	filter := bson.M{
		"id":          bookingID,
		"status":      models.StatusCompleted,
		"reviewed_at": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"rating":      rating,
			"review_text": reviewText,
			"reviewed_at": reviewedAt,
			"updated_at":  reviewedAt,
		},
		"$inc": bson.M{"credits_earned": creditBonus},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("record rating: %w", err)
	}
	return &updated, nil
}

// runTxn wraps a function in a mongo transaction, translating transient
// transaction errors into ErrConcurrent so the service layer can retry.
func runTxn(ctx context.Context, sess mongo.Session, txnFn func(mongo.SessionContext) error) error {
	err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult")) {
		return ErrConcurrent
	}
	return err
}

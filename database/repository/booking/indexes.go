package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the engine's invariants rely on.
// The unique (booking_id, student_id) index on participants is what
// makes concurrent double-joins impossible, so this must run at startup.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.DB()
	repo := &mongoBookingRepo{
		bookingColl:     db.Collection("bookings"),
		participantColl: db.Collection("group_session_participants"),
	}

	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "scheduled_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "is_group_session", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
		},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}

	participantIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}},
		},
	}
	if _, err := repo.participantColl.Indexes().CreateMany(ctx, participantIndexes); err != nil {
		return fmt.Errorf("create participant indexes: %w", err)
	}

	return nil
}

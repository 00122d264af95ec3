package waitlistRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the waitlist indexes. The unique
// (consultant_id, student_id, service_id) index rejects duplicate
// active entries at the storage layer.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := database.DB().Collection("consultant_waitlist")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "consultant_id", Value: 1},
				{Key: "student_id", Value: 1},
				{Key: "service_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "consultant_id", Value: 1}, {Key: "position", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create waitlist indexes: %w", err)
	}
	return nil
}

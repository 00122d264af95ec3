// File: database/repository/saved/saved.go
package savedRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"
	"consultly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SavedConsultantRepository persists student bookmark relations.
type SavedConsultantRepository interface {
	// Toggle saves the consultant if no bookmark exists, removes it
	// otherwise, and reports the resulting membership.
	Toggle(ctx context.Context, studentID, consultantID string) (saved bool, err error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SavedConsultant, error)
}

type mongoSavedRepo struct {
	coll *mongo.Collection
}

// NewMongoSavedRepo constructs a MongoDB SavedConsultantRepository.
func NewMongoSavedRepo() SavedConsultantRepository {
	return &mongoSavedRepo{
		coll: database.DB().Collection("saved_consultants"),
	}
}

func (repo *mongoSavedRepo) Toggle(ctx context.Context, studentID, consultantID string) (bool, error) {
	filter := bson.M{"student_id": studentID, "consultant_id": consultantID}

	res, err := repo.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete saved consultant: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	record := models.SavedConsultant{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		ConsultantID: consultantID,
		SavedAt:      time.Now().UTC(),
	}
	if _, err := repo.coll.InsertOne(ctx, record); err != nil {
		// A concurrent toggle may have inserted first; the unique index
		// keeps the set consistent either way.
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, fmt.Errorf("insert saved consultant: %w", err)
	}
	return true, nil
}

func (repo *mongoSavedRepo) ListByStudent(ctx context.Context, studentID string) ([]models.SavedConsultant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list saved consultants: %w", err)
	}
	defer cursor.Close(ctx)

	var saved []models.SavedConsultant
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, fmt.Errorf("decode saved consultants: %w", err)
	}
	return saved, nil
}

// EnsureIndexes creates the unique bookmark index.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := database.DB().Collection("saved_consultants")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "consultant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create saved consultant indexes: %w", err)
	}
	return nil
}

package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByStudent returns a student's bookings, newest scheduled first,
// narrowed by the optional filters.
func (repo *mongoBookingRepo) ListByStudent(ctx context.Context, studentID string, filters models.BookingFilters) ([]models.Booking, error) {
	filter := bson.M{"student_id": studentID}

	if len(filters.Statuses) > 0 {
		filter["status"] = bson.M{"$in": filters.Statuses}
	}
	if filters.From != nil || filters.To != nil {
		scheduled := bson.M{}
		if filters.From != nil {
			scheduled["$gte"] = *filters.From
		}
		if filters.To != nil {
			scheduled["$lte"] = *filters.To
		}
		filter["scheduled_at"] = scheduled
	}
	if filters.MinPrice != nil || filters.MaxPrice != nil {
		price := bson.M{}
		if filters.MinPrice != nil {
			price["$gte"] = *filters.MinPrice
		}
		if filters.MaxPrice != nil {
			price["$lte"] = *filters.MaxPrice
		}
		filter["final_price"] = price
	}
	if filters.HasRating != nil {
		filter["rating"] = bson.M{"$exists": *filters.HasRating}
	}
	if filters.IsGroupSession != nil {
		filter["is_group_session"] = *filters.IsGroupSession
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: -1}})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// ListAvailableGroupSessions returns confirmed, upcoming group sessions
// that still have free capacity.
func (repo *mongoBookingRepo) ListAvailableGroupSessions(ctx context.Context, now time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"is_group_session": true,
		"status":           models.StatusConfirmed,
		"scheduled_at":     bson.M{"$gte": now},
		"$expr": bson.M{
			"$lt": bson.A{"$current_participants", "$max_participants"},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list available group sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode group sessions: %w", err)
	}
	return bookings, nil
}

// ListEnrolledGroupSessions returns the upcoming group sessions the
// student currently holds a participant row for.
func (repo *mongoBookingRepo) ListEnrolledGroupSessions(ctx context.Context, studentID string, now time.Time) ([]models.Booking, error) {
	cursor, err := repo.participantColl.Find(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return nil, fmt.Errorf("list participant rows: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.GroupSessionParticipant
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode participant rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BookingID)
	}

	filter := bson.M{
		"id":           bson.M{"$in": ids},
		"scheduled_at": bson.M{"$gte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	bookingCursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list enrolled group sessions: %w", err)
	}
	defer bookingCursor.Close(ctx)

	var bookings []models.Booking
	if err := bookingCursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode enrolled group sessions: %w", err)
	}
	return bookings, nil
}

// Participants returns the active participant rows for a booking.
func (repo *mongoBookingRepo) Participants(ctx context.Context, bookingID string) ([]models.GroupSessionParticipant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	cursor, err := repo.participantColl.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.GroupSessionParticipant
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return rows, nil
}

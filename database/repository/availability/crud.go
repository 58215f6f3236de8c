// File: database/repository/availability/crud.go
package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func dayFilter(providerID string, day time.Time) bson.M {
	return bson.M{"providerId": providerID, "date": day}
}

func (r *mongoAvailabilityRepo) EnsureDay(ctx context.Context, providerID string, day time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"timeSlots": models.NewDaySlots(),
			"createdAt": now,
			"updatedAt": now,
		},
	}
	_, err := r.coll.UpdateOne(ctx, dayFilter(providerID, day), update, options.Update().SetUpsert(true))
	if err != nil {
		// Two first-bookings of the same day raced on the unique index; the other one created it.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to ensure availability day: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) GetDay(ctx context.Context, providerID string, day time.Time) (*models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var avail models.Availability
	err := r.coll.FindOne(ctx, dayFilter(providerID, day)).Decode(&avail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch availability day: %w", err)
	}
	return &avail, nil
}

func (r *mongoAvailabilityRepo) ListClaimedDays(ctx context.Context, from, to time.Time) ([]models.Availability, error) {
	filter := bson.M{
		"date":               bson.M{"$gte": from, "$lt": to},
		"timeSlots.isBooked": true,
	}
	return r.find(ctx, filter)
}

func (r *mongoAvailabilityRepo) find(ctx context.Context, filter bson.M) ([]models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer cursor.Close(ctx)

	var days []models.Availability
	if err := cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return days, nil
}

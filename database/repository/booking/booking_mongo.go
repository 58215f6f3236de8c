package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByPaymentSession(ctx context.Context, sessionID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"paymentSessionId": sessionID})
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &booking, nil
}

func activeDayFilter(providerID string, day time.Time) bson.M {
	return bson.M{
		"providerId":  providerID,
		"bookingDate": day,
		"status":      bson.M{"$ne": models.BookingCancelled},
	}
}

func (r *MongoBookingRepo) FindActiveBySlot(ctx context.Context, providerID string, day time.Time, label string) (*models.Booking, error) {
	filter := activeDayFilter(providerID, day)
	filter["timeSlot"] = label

	booking, err := r.findOne(ctx, filter)
	if errors.Is(err, ErrBookingNotFound) {
		return nil, nil
	}
	return booking, err
}

func (r *MongoBookingRepo) ListActiveByDay(ctx context.Context, providerID string, day time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, activeDayFilter(providerID, day), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) ListActiveDays(ctx context.Context, from, to time.Time) ([]DayKey, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"bookingDate": bson.M{"$gte": from, "$lt": to},
			"status":      bson.M{"$ne": models.BookingCancelled},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"providerId": "$providerId", "date": "$bookingDate"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"providerId": "$_id.providerId",
			"date":       "$_id.date",
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking days: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []DayKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode booking days: %w", err)
	}
	return keys, nil
}

func (r *MongoBookingRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next models.BookingState) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": expected.Status, "paymentStatus": expected.PaymentStatus}
	update := bson.M{"$set": bson.M{
		"status":        next.Status,
		"paymentStatus": next.PaymentStatus,
		"updatedAt":     time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &updated, nil
}

func (r *MongoBookingRepo) SetPaymentSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"paymentSessionId": sessionID, "updatedAt": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to attach payment session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

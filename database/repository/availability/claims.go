// File: database/repository/availability/claims.go
package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClaimSlots is a single-document compare-and-set. The filter only matches the
// day record when every label is either free or already bound to bookingID,
// and the update binds all of them at once, so two overlapping claims can never
// both succeed and a partial claim is never written.
func (r *mongoAvailabilityRepo) ClaimSlots(ctx context.Context, providerID string, day time.Time, labels []string, bookingID string) error {
	if len(labels) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conditions := make(bson.A, 0, len(labels))
	for _, label := range labels {
		conditions = append(conditions, bson.M{
			"timeSlots": bson.M{
				"$elemMatch": bson.M{
					"startTime": label,
					"$or": bson.A{
						bson.M{"isBooked": false},
						bson.M{"bookingRef": bookingID},
					},
				},
			},
		})
	}
	filter := dayFilter(providerID, day)
	filter["$and"] = conditions

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"timeSlots.$[slot].isBooked":   true,
			"timeSlots.$[slot].bookingRef": bookingID,
			"timeSlots.$[slot].claimedAt":  now,
			"updatedAt":                    now,
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"slot.startTime": bson.M{"$in": labels}}},
	})

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to claim slots: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func (r *mongoAvailabilityRepo) ReleaseSlots(ctx context.Context, providerID string, day time.Time, labels []string, bookingID string) error {
	if len(labels) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"timeSlots.$[slot].isBooked":   false,
			"timeSlots.$[slot].bookingRef": nil,
			"updatedAt":                    time.Now().UTC(),
		},
		"$unset": bson.M{"timeSlots.$[slot].claimedAt": ""},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"slot.startTime":  bson.M{"$in": labels},
			"slot.bookingRef": bookingID,
		}},
	})

	if _, err := r.coll.UpdateOne(ctx, dayFilter(providerID, day), update, opts); err != nil {
		return fmt.Errorf("failed to release slots: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) ClearStaleClaim(ctx context.Context, providerID string, day time.Time, label, staleBookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := dayFilter(providerID, day)
	filter["timeSlots"] = bson.M{
		"$elemMatch": bson.M{"startTime": label, "bookingRef": staleBookingID},
	}
	update := bson.M{
		"$set": bson.M{
			"timeSlots.$[slot].isBooked":   false,
			"timeSlots.$[slot].bookingRef": nil,
			"updatedAt":                    time.Now().UTC(),
		},
		"$unset": bson.M{"timeSlots.$[slot].claimedAt": ""},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"slot.startTime": label, "slot.bookingRef": staleBookingID}},
	})

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("failed to clear stale claim: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

package bookingRepo

import (
	"context"
	"testing"
	"time"

	"slotbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "slotbook.bookings"

var day = time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

func bookingDoc(id string, status models.BookingStatus) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "userId", Value: "user-1"},
		{Key: "providerId", Value: "prov-1"},
		{Key: "bookingDate", Value: day},
		{Key: "timeSlot", Value: bson.A{"09:00", "10:00"}},
		{Key: "status", Value: string(status)},
		{Key: "paymentStatus", Value: "Pending"},
	}
}

func TestGetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc("b1", models.BookingPending)))
		b, err := NewMongoBookingRepo(mt.DB).GetByID(context.Background(), "b1")
		require.NoError(mt, err)
		assert.Equal(mt, "prov-1", b.ProviderID)
		assert.Equal(mt, []string{"09:00", "10:00"}, b.TimeSlots)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := NewMongoBookingRepo(mt.DB).GetByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, ErrBookingNotFound)
	})
}

func TestFindActiveBySlot(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("free slot", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		b, err := NewMongoBookingRepo(mt.DB).FindActiveBySlot(context.Background(), "prov-1", day, "09:00")
		require.NoError(mt, err)
		assert.Nil(mt, b)
	})

	mt.Run("held slot", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc("b1", models.BookingAccepted)))
		b, err := NewMongoBookingRepo(mt.DB).FindActiveBySlot(context.Background(), "prov-1", day, "09:00")
		require.NoError(mt, err)
		require.NotNil(mt, b)
		assert.Equal(mt, "b1", b.ID)
	})
}

func TestCompareAndSetStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("applies when status matches", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bookingDoc("b1", models.BookingCancelled)},
		})
		b, err := NewMongoBookingRepo(mt.DB).CompareAndSetStatus(context.Background(), "b1",
			models.BookingState{Status: models.BookingPending, PaymentStatus: models.PaymentPending},
			models.BookingState{Status: models.BookingCancelled, PaymentStatus: models.PaymentPending})
		require.NoError(mt, err)
		assert.Equal(mt, models.BookingCancelled, b.Status)
	})

	mt.Run("conflict when status moved", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})
		_, err := NewMongoBookingRepo(mt.DB).CompareAndSetStatus(context.Background(), "b1",
			models.BookingState{Status: models.BookingPending, PaymentStatus: models.PaymentPending},
			models.BookingState{Status: models.BookingCancelled, PaymentStatus: models.PaymentPending})
		assert.ErrorIs(mt, err, ErrStatusConflict)
	})

	mt.Run("filter pins both axes", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bookingDoc("b1", models.BookingCompleted)},
		})
		_, err := NewMongoBookingRepo(mt.DB).CompareAndSetStatus(context.Background(), "b1",
			models.BookingState{Status: models.BookingAccepted, PaymentStatus: models.PaymentPending},
			models.BookingState{Status: models.BookingCompleted, PaymentStatus: models.PaymentPending})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		query := started.Command.Lookup("query").Document()
		assert.Equal(mt, "Accepted", query.Lookup("status").StringValue())
		assert.Equal(mt, "Pending", query.Lookup("paymentStatus").StringValue())
	})
}

func TestListActiveDays(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes grouped keys", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "providerId", Value: "prov-1"}, {Key: "date", Value: day}},
			bson.D{{Key: "providerId", Value: "prov-2"}, {Key: "date", Value: day}},
		))
		keys, err := NewMongoBookingRepo(mt.DB).ListActiveDays(context.Background(), day, day.AddDate(0, 0, 7))
		require.NoError(mt, err)
		require.Len(mt, keys, 2)
		assert.Equal(mt, "prov-2", keys[1].ProviderID)
		assert.True(mt, keys[0].Date.Equal(day))
	})
}

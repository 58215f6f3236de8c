package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	availabilityRepo "slotbook/database/repository/availability"
	"slotbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFirstBookingOfDay(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Allocate(context.Background(), customer, request("10:00"))
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	assert.Equal(t, []string{"10:00"}, b.TimeSlots)
	assert.Equal(t, testDay, b.BookingDate)
	assert.NotNil(t, b.LocationGeo)
	require.NotNil(t, resp.Service)
	assert.Equal(t, "Cleaning", resp.Service.Name)

	day, err := env.avail.GetDay(context.Background(), "prov-1", testDay)
	require.NoError(t, err)
	require.NotNil(t, day)
	require.Len(t, day.TimeSlots, 9)
	for _, slot := range day.TimeSlots {
		if slot.StartTime == "10:00" {
			assert.True(t, slot.IsBooked)
			require.NotNil(t, slot.BookingRef)
			assert.Equal(t, b.ID, *slot.BookingRef)
			continue
		}
		assert.False(t, slot.IsBooked, slot.StartTime)
		assert.Nil(t, slot.BookingRef, slot.StartTime)
	}

	events := env.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "prov-1", events[0].Receiver)
	assert.Equal(t, models.NotificationBookingCreated, events[0].Kind)
	assert.Equal(t, b.ID, events[0].Booking.ID)
}

func TestAllocateSortsLabelsIntoScheduleOrder(t *testing.T) {
	env := newTestEnv(t)
	b := env.allocate(t, "14:00", "09:00")
	assert.Equal(t, []string{"09:00", "14:00"}, b.TimeSlots)
}

func TestAllocateRejectsTakenSlot(t *testing.T) {
	env := newTestEnv(t)
	first := env.allocate(t, "10:00")

	_, err := env.svc.Allocate(context.Background(), otherUser, request("10:00"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 1, env.bookings.count())
	assert.Equal(t, first.ID, *env.slotRef(t, "10:00"))
}

func TestAllocateIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	env.allocate(t, "10:00")

	_, err := env.svc.Allocate(context.Background(), otherUser, request("09:00", "10:00", "11:00"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, MessageOf(err), "10:00")

	assert.Nil(t, env.slotRef(t, "09:00"))
	assert.Nil(t, env.slotRef(t, "11:00"))
	assert.Equal(t, 1, env.bookings.count())
}

func TestAllocateConcurrentRequestsForSameSlot(t *testing.T) {
	env := newTestEnv(t)

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := env.svc.Allocate(context.Background(), customer, request("13:00"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if KindOf(err) == KindConflict {
					conflicts++
				}
				return
			}
			winners = append(winners, resp.Booking.ID)
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, env.bookings.count())
	assert.Equal(t, winners[0], *env.slotRef(t, "13:00"))
}

func TestAllocateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.AllocationRequest)
		kind   ErrorKind
	}{
		{"past date", func(r *models.AllocationRequest) { r.Date = testNow.AddDate(0, 0, -1) }, KindValidation},
		{"no slots", func(r *models.AllocationRequest) { r.SlotLabels = nil }, KindValidation},
		{"unknown label", func(r *models.AllocationRequest) { r.SlotLabels = []string{"08:00"} }, KindValidation},
		{"duplicate label", func(r *models.AllocationRequest) { r.SlotLabels = []string{"10:00", "10:00"} }, KindValidation},
		{"missing location", func(r *models.AllocationRequest) { r.Location = " " }, KindValidation},
		{"missing contact", func(r *models.AllocationRequest) { r.ContactNumber = "" }, KindValidation},
		{"unknown provider", func(r *models.AllocationRequest) { r.ProviderID = "nobody" }, KindNotFound},
		{"provider is a plain user", func(r *models.AllocationRequest) { r.ProviderID = "user-2" }, KindValidation},
		{"unknown service", func(r *models.AllocationRequest) { r.ServiceID = "svc-404" }, KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := request("10:00")
			tc.mutate(&req)

			_, err := env.svc.Allocate(context.Background(), customer, req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, 0, env.bookings.count())
			assert.Equal(t, 0, env.avail.ensures)
			assert.Empty(t, env.notifier.all())
		})
	}
}

func TestAllocateTodayIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	req := request("17:00")
	req.Date = testNow
	_, err := env.svc.Allocate(context.Background(), customer, req)
	require.NoError(t, err)
}

func TestAllocateGeocodeFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Geocoder = stubGeocoder{err: errors.New("quota exceeded")}

	_, err := env.svc.Allocate(context.Background(), customer, request("10:00"))
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, 0, env.bookings.count())
	assert.Equal(t, 0, env.avail.ensures)
}

func TestAllocateWithoutGeocoder(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Geocoder = nil
	b := env.allocate(t, "10:00")
	assert.Nil(t, b.LocationGeo)
}

func TestAllocateRollsBackBookingWhenClaimFails(t *testing.T) {
	env := newTestEnv(t)
	env.avail.claimErr = availabilityRepo.ErrSlotUnavailable

	_, err := env.svc.Allocate(context.Background(), customer, request("10:00"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 0, env.bookings.count())
	assert.Equal(t, 1, env.tx.aborts)
	assert.Equal(t, 0, env.tx.commits)
	assert.Empty(t, env.notifier.all())
}

func TestAllocateClaimStoreErrorLeavesNoBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.claimErr = errors.New("connection reset")

	_, err := env.svc.Allocate(ctx, customer, request("10:00"))
	require.Error(t, err)
	assert.Equal(t, ErrorKind(""), KindOf(err))
	assert.Equal(t, 0, env.bookings.count())

	free, err := env.svc.IsSlotFree(ctx, "prov-1", testDay, "10:00")
	require.NoError(t, err)
	assert.True(t, free)

	env.avail.claimErr = nil
	resp, err := env.svc.Allocate(ctx, otherUser, request("10:00"))
	require.NoError(t, err)
	assert.Equal(t, resp.Booking.ID, *env.slotRef(t, "10:00"))
	assert.Equal(t, 1, env.bookings.count())
}

func TestAllocateCreateErrorClaimsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.createErr = errors.New("write concern timeout")

	_, err := env.svc.Allocate(context.Background(), customer, request("10:00", "11:00"))
	require.Error(t, err)
	assert.Nil(t, env.slotRef(t, "10:00"))
	assert.Nil(t, env.slotRef(t, "11:00"))
	assert.Equal(t, 1, env.tx.aborts)
}

func TestAllocateWithoutTransactorWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Transactions = nil

	_, err := env.svc.Allocate(context.Background(), customer, request("10:00"))
	require.Error(t, err)
	assert.Equal(t, 0, env.bookings.count())
	assert.Nil(t, env.slotRef(t, "10:00"))
}

func TestAllocateClearsStaleFlag(t *testing.T) {
	env := newTestEnv(t)
	ghost := "deleted-booking"
	env.avail.setSlot("prov-1", testDay, "11:00", &ghost)

	b := env.allocate(t, "11:00")
	assert.Equal(t, b.ID, *env.slotRef(t, "11:00"))
}

func TestAllocateClearsFlagOfCancelledBooking(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.put(models.Booking{
		ID: "old", UserID: "user-2", ProviderID: "prov-1", BookingDate: testDay,
		TimeSlots: []string{"15:00"}, Status: models.BookingCancelled,
	})
	old := "old"
	env.avail.setSlot("prov-1", testDay, "15:00", &old)

	b := env.allocate(t, "15:00")
	assert.Equal(t, b.ID, *env.slotRef(t, "15:00"))
}

func TestAllocateBookingRecordWinsOverMissingFlag(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.put(models.Booking{
		ID: "held", UserID: "user-2", ProviderID: "prov-1", BookingDate: testDay,
		TimeSlots: []string{"16:00"}, Status: models.BookingAccepted,
	})

	_, err := env.svc.Allocate(context.Background(), customer, request("16:00"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestNormalizeLabels(t *testing.T) {
	got, err := normalizeLabels([]string{"17:00", "09:00", "12:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "12:00", "17:00"}, got)

	_, err = normalizeLabels([]string{"9:00"})
	assert.Equal(t, KindValidation, KindOf(err))
}

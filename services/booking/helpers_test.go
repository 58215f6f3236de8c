package booking

import (
	"context"
	"testing"
	"time"

	"slotbook/models"

	"go.uber.org/zap"
)

var (
	testNow      = time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	testDay      = time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	customer     = models.Actor{UserID: "user-1", Role: models.RoleUser}
	otherUser    = models.Actor{UserID: "user-2", Role: models.RoleUser}
	providerSelf = models.Actor{UserID: "prov-1", Role: models.RoleServiceProvider}
	admin        = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
)

type testEnv struct {
	svc      *DefaultBookingService
	bookings *fakeBookings
	avail    *fakeAvailability
	notifier *recordingNotifier
	checkout *stubCheckout
	tx       *fakeTx
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		bookings: newFakeBookings(),
		avail:    newFakeAvailability(),
		notifier: &recordingNotifier{},
		checkout: &stubCheckout{},
	}
	env.tx = &fakeTx{bookings: env.bookings, avail: env.avail}
	env.svc = &DefaultBookingService{
		Bookings:     env.bookings,
		Availability: env.avail,
		Transactions: env.tx,
		Users: fakeUsers{
			"user-1":  {ID: "user-1", Role: models.RoleUser},
			"user-2":  {ID: "user-2", Role: models.RoleUser},
			"prov-1":  {ID: "prov-1", Role: models.RoleServiceProvider},
			"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
		},
		Catalog: fakeCatalog{
			"svc-1": {ID: "svc-1", ProviderID: "prov-1", Name: "Cleaning", Price: 25},
		},
		Geocoder:         stubGeocoder{point: models.NewGeoPoint(-1.29, 36.82)},
		Notifier:         env.notifier,
		Checkout:         env.checkout,
		Logger:           zap.NewNop(),
		CheckoutCurrency: "usd",
		Now:              func() time.Time { return testNow },
	}
	return env
}

func request(labels ...string) models.AllocationRequest {
	return models.AllocationRequest{
		ProviderID:    "prov-1",
		ServiceID:     "svc-1",
		Date:          testDay,
		SlotLabels:    labels,
		Location:      "Kenyatta Avenue, Nairobi",
		ContactNumber: "+254700000000",
	}
}

// allocate books labels for the customer and fails the test on error.
func (e *testEnv) allocate(t *testing.T, labels ...string) *models.Booking {
	t.Helper()
	resp, err := e.svc.Allocate(context.Background(), customer, request(labels...))
	if err != nil {
		t.Fatalf("allocate %v: %v", labels, err)
	}
	return resp.Booking
}

func (e *testEnv) slotRef(t *testing.T, label string) *string {
	t.Helper()
	day, err := e.avail.GetDay(context.Background(), "prov-1", testDay)
	if err != nil || day == nil {
		t.Fatalf("no day record: %v", err)
	}
	return day.Slot(label).BookingRef
}

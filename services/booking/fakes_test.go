package booking

import (
	"context"
	"sync"
	"time"

	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	catalogRepo "slotbook/database/repository/catalog"
	userRepo "slotbook/database/repository/user"
	"slotbook/models"

	"github.com/google/uuid"
)

type fakeBookings struct {
	mu        sync.Mutex
	bookings  map[string]models.Booking
	creates   int
	createErr error

	// beforeCAS runs once, ahead of the next CompareAndSetStatus, to interleave a concurrent writer.
	beforeCAS func(ctx context.Context, id string)
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: make(map[string]models.Booking)}
}

func (f *fakeBookings) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeBookings) GetByPaymentSession(_ context.Context, sessionID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.PaymentSessionID == sessionID {
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookings) FindActiveBySlot(_ context.Context, providerID string, day time.Time, label string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.BookingDate.Equal(day) && b.IsActive() && b.HasSlot(label) {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookings) ListActiveByDay(_ context.Context, providerID string, day time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.BookingDate.Equal(day) && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListActiveDays(_ context.Context, from, to time.Time) ([]bookingRepo.DayKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[bookingRepo.DayKey]bool{}
	var out []bookingRepo.DayKey
	for _, b := range f.bookings {
		if !b.IsActive() || b.BookingDate.Before(from) || !b.BookingDate.Before(to) {
			continue
		}
		k := bookingRepo.DayKey{ProviderID: b.ProviderID, Date: b.BookingDate}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeBookings) CompareAndSetStatus(ctx context.Context, id string, expected, next models.BookingState) (*models.Booking, error) {
	if f.beforeCAS != nil {
		hook := f.beforeCAS
		f.beforeCAS = nil
		hook(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.State() != expected {
		return nil, bookingRepo.ErrStatusConflict
	}
	b.Status = next.Status
	b.PaymentStatus = next.PaymentStatus
	f.bookings[id] = b
	return &b, nil
}

func (f *fakeBookings) SetPaymentSession(_ context.Context, id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.PaymentSessionID = sessionID
	f.bookings[id] = b
	return nil
}

func (f *fakeBookings) EnsureIndexes(context.Context) error { return nil }

func (f *fakeBookings) put(b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

func (f *fakeBookings) snapshot() map[string]models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(map[string]models.Booking, len(f.bookings))
	for k, v := range f.bookings {
		cp[k] = v
	}
	return cp
}

func (f *fakeBookings) restore(snap map[string]models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = snap
}

// fakeAvailability keeps day records in memory. ClaimSlots holds the lock for
// the whole check-and-set, like the single-document update it stands in for.
type fakeAvailability struct {
	mu         sync.Mutex
	days       map[string]*models.Availability
	ensures    int
	claimDelay time.Duration
	claimErr   error
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{days: make(map[string]*models.Availability)}
}

func dayKey(providerID string, day time.Time) string {
	return providerID + "|" + day.Format("2006-01-02")
}

func (f *fakeAvailability) EnsureDay(_ context.Context, providerID string, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensures++
	k := dayKey(providerID, day)
	if _, ok := f.days[k]; ok {
		return nil
	}
	f.days[k] = &models.Availability{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		Date:       day,
		TimeSlots:  models.NewDaySlots(),
	}
	return nil
}

func (f *fakeAvailability) GetDay(_ context.Context, providerID string, day time.Time) (*models.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.days[dayKey(providerID, day)]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.TimeSlots = append([]models.SlotState(nil), a.TimeSlots...)
	return &cp, nil
}

func (f *fakeAvailability) ClaimSlots(_ context.Context, providerID string, day time.Time, labels []string, bookingID string) error {
	if f.claimDelay > 0 {
		time.Sleep(f.claimDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return f.claimErr
	}
	a, ok := f.days[dayKey(providerID, day)]
	if !ok {
		return availabilityRepo.ErrSlotUnavailable
	}
	for _, l := range labels {
		s := a.Slot(l)
		if s == nil || (s.IsBooked && (s.BookingRef == nil || *s.BookingRef != bookingID)) {
			return availabilityRepo.ErrSlotUnavailable
		}
	}
	now := time.Now()
	for _, l := range labels {
		s := a.Slot(l)
		ref := bookingID
		s.IsBooked = true
		s.BookingRef = &ref
		s.ClaimedAt = &now
	}
	return nil
}

func (f *fakeAvailability) ReleaseSlots(_ context.Context, providerID string, day time.Time, labels []string, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.days[dayKey(providerID, day)]
	if !ok {
		return nil
	}
	for _, l := range labels {
		if s := a.Slot(l); s != nil && s.BookingRef != nil && *s.BookingRef == bookingID {
			s.IsBooked = false
			s.BookingRef = nil
			s.ClaimedAt = nil
		}
	}
	return nil
}

func (f *fakeAvailability) ClearStaleClaim(_ context.Context, providerID string, day time.Time, label, staleBookingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.days[dayKey(providerID, day)]
	if !ok {
		return false, nil
	}
	s := a.Slot(label)
	if s == nil || s.BookingRef == nil || *s.BookingRef != staleBookingID {
		return false, nil
	}
	s.IsBooked = false
	s.BookingRef = nil
	s.ClaimedAt = nil
	return true, nil
}

func (f *fakeAvailability) ListClaimedDays(_ context.Context, from, to time.Time) ([]models.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Availability
	for _, a := range f.days {
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		for _, s := range a.TimeSlots {
			if s.IsBooked {
				out = append(out, *a)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAvailability) EnsureIndexes(context.Context) error { return nil }

func (f *fakeAvailability) snapshot() map[string]*models.Availability {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(map[string]*models.Availability, len(f.days))
	for k, a := range f.days {
		day := *a
		day.TimeSlots = append([]models.SlotState(nil), a.TimeSlots...)
		cp[k] = &day
	}
	return cp
}

func (f *fakeAvailability) restore(snap map[string]*models.Availability) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = snap
}

// fakeTx runs one transaction at a time and puts both stores back the way
// they were when fn fails.
type fakeTx struct {
	mu       sync.Mutex
	bookings *fakeBookings
	avail    *fakeAvailability
	commits  int
	aborts   int
}

func (tx *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	bookings, days := tx.bookings.snapshot(), tx.avail.snapshot()
	if err := fn(ctx); err != nil {
		tx.bookings.restore(bookings)
		tx.avail.restore(days)
		tx.aborts++
		return err
	}
	tx.commits++
	return nil
}

// setSlot forces a flag, simulating drift between the day record and bookings.
func (f *fakeAvailability) setSlot(providerID string, day time.Time, label string, ref *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(providerID, day)
	if _, ok := f.days[k]; !ok {
		f.days[k] = &models.Availability{ProviderID: providerID, Date: day, TimeSlots: models.NewDaySlots()}
	}
	s := f.days[k].Slot(label)
	s.IsBooked = ref != nil
	s.BookingRef = ref
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	return u, nil
}

type fakeCatalog map[string]*models.Service

func (f fakeCatalog) GetByID(_ context.Context, id string) (*models.Service, error) {
	s, ok := f[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return s, nil
}

type sentEvent struct {
	Receiver string
	Kind     models.NotificationType
	Text     string
	Booking  *models.Booking
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Emit(_ context.Context, receiverID string, kind models.NotificationType, text string, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{Receiver: receiverID, Kind: kind, Text: text, Booking: b})
}

func (n *recordingNotifier) all() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type stubGeocoder struct {
	point *models.GeoPoint
	err   error
}

func (g stubGeocoder) Geocode(context.Context, string) (*models.GeoPoint, error) {
	return g.point, g.err
}

type stubCheckout struct {
	req models.CheckoutRequest
	err error
}

func (c *stubCheckout) CreateCheckoutSession(_ context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &models.CheckoutSession{SessionID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"stagedoor/internal/external"
	"stagedoor/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// In-memory stores mirroring the conditional-write semantics of the Postgres
// repositories. The hooks let tests interleave a competing writer between a
// service's read and its conditional write.

type fakeShowStore struct {
	mu     sync.Mutex
	nextID int64
	shows  map[int64]*models.Show
}

func newFakeShowStore() *fakeShowStore {
	return &fakeShowStore{shows: make(map[int64]*models.Show)}
}

func (f *fakeShowStore) Create(_ context.Context, show *models.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	show.ID = f.nextID
	show.CreatedAt = time.Now()
	show.UpdatedAt = show.CreatedAt
	cp := *show
	f.shows[show.ID] = &cp
	return nil
}

func (f *fakeShowStore) GetByID(_ context.Context, id int64) (*models.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return nil, nil
	}
	cp := *show
	return &cp, nil
}

func (f *fakeShowStore) List(_ context.Context, _ string, page, pageSize int) ([]models.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.shows))
	for id := range f.shows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Show
	start := (page - 1) * pageSize
	for i, id := range ids {
		if i < start || len(out) >= pageSize {
			continue
		}
		if f.shows[id].Status == models.ShowCancelled {
			continue
		}
		out = append(out, *f.shows[id])
	}
	return out, nil
}

func (f *fakeShowStore) DecrementAvailableSeats(_ context.Context, showID int64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if show, ok := f.shows[showID]; ok {
		show.AvailableSeats -= count
		if show.AvailableSeats < 0 {
			show.AvailableSeats = 0
		}
	}
	return nil
}

type fakeSeatStore struct {
	mu    sync.Mutex
	seats map[string]*models.Seat
	order []string

	// called before the conditional write, outside the lock
	reserveHook  func()
	markSoldHook func()
}

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{seats: make(map[string]*models.Seat)}
}

func (f *fakeSeatStore) addSeat(showID int64, section, row string, number int, status string, price int64, reservedUntil *time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.seats[id] = &models.Seat{
		ID:            id,
		ShowID:        showID,
		Section:       section,
		Row:           row,
		Number:        number,
		Status:        status,
		Price:         price,
		ReservedUntil: reservedUntil,
	}
	f.order = append(f.order, id)
	return id
}

func (f *fakeSeatStore) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seats[id].Status
}

func (f *fakeSeatStore) CreateSeatMap(_ context.Context, showID int64, sections []models.SectionRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, seat := range f.seats {
		if seat.ShowID == showID {
			return 0, nil
		}
	}
	created := 0
	for _, section := range sections {
		for row := 1; row <= section.Rows; row++ {
			for num := 1; num <= section.SeatsPerRow; num++ {
				id := uuid.NewString()
				f.seats[id] = &models.Seat{
					ID:      id,
					ShowID:  showID,
					Section: section.Name,
					Status:  models.SeatAvailable,
					Number:  num,
					Price:   section.Price,
				}
				f.order = append(f.order, id)
				created++
			}
		}
	}
	return created, nil
}

func (f *fakeSeatStore) GetForShow(_ context.Context, showID int64, seatIDs []string) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Seat
	for _, id := range seatIDs {
		seat, ok := f.seats[id]
		if !ok || seat.ShowID != showID {
			continue
		}
		out = append(out, *seat)
	}
	return out, nil
}

func (f *fakeSeatStore) ListByShow(_ context.Context, showID int64, page, pageSize int, section, status *string) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Seat
	for _, id := range f.order {
		seat := f.seats[id]
		if seat.ShowID != showID {
			continue
		}
		if section != nil && seat.Section != *section {
			continue
		}
		if status != nil && seat.Status != *status {
			continue
		}
		matched = append(matched, *seat)
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (f *fakeSeatStore) ReserveSeats(_ context.Context, showID int64, seatIDs []string, until time.Time) ([]string, error) {
	if f.reserveHook != nil {
		f.reserveHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var reserved []string
	for _, id := range seatIDs {
		seat, ok := f.seats[id]
		if !ok || seat.ShowID != showID || seat.Status != models.SeatAvailable {
			continue
		}
		u := until
		seat.Status = models.SeatReserved
		seat.ReservedUntil = &u
		reserved = append(reserved, id)
	}
	return reserved, nil
}

func (f *fakeSeatStore) ReleaseSeats(_ context.Context, seatIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range seatIDs {
		if seat, ok := f.seats[id]; ok && seat.Status == models.SeatReserved {
			seat.Status = models.SeatAvailable
			seat.ReservedUntil = nil
		}
	}
	return nil
}

func (f *fakeSeatStore) ReleaseExpired(_ context.Context, seatIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var released int64
	for _, id := range seatIDs {
		seat, ok := f.seats[id]
		if !ok || seat.Status != models.SeatReserved {
			continue
		}
		if seat.ReservedUntil != nil && seat.ReservedUntil.After(now) {
			continue
		}
		seat.Status = models.SeatAvailable
		seat.ReservedUntil = nil
		released++
	}
	return released, nil
}

func (f *fakeSeatStore) MarkSold(_ context.Context, showID int64, seatIDs []string) ([]string, error) {
	if f.markSoldHook != nil {
		f.markSoldHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var sold []string
	for _, id := range seatIDs {
		seat, ok := f.seats[id]
		if !ok || seat.ShowID != showID {
			continue
		}
		if seat.Status != models.SeatAvailable && seat.Status != models.SeatReserved {
			continue
		}
		seat.Status = models.SeatSold
		seat.ReservedUntil = nil
		sold = append(sold, id)
	}
	return sold, nil
}

func (f *fakeSeatStore) RevertSold(_ context.Context, seatIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range seatIDs {
		if seat, ok := f.seats[id]; ok && seat.Status == models.SeatSold {
			seat.Status = models.SeatAvailable
		}
	}
	return nil
}

type fakeBookingStore struct {
	mu           sync.Mutex
	nextID       int64
	bookings     map[int64]*models.Booking
	bookingSeats map[int64][]string
	seatSource   *fakeSeatStore

	// references seen so far
	refs map[string]bool
	// when positive, the next Create calls fail with a unique violation
	uniqueViolations int
}

func newFakeBookingStore(seats *fakeSeatStore) *fakeBookingStore {
	return &fakeBookingStore{
		bookings:     make(map[int64]*models.Booking),
		bookingSeats: make(map[int64][]string),
		seatSource:   seats,
		refs:         make(map[string]bool),
	}
}

func (f *fakeBookingStore) Create(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uniqueViolations > 0 || f.refs[booking.BookingReference] {
		if f.uniqueViolations > 0 {
			f.uniqueViolations--
		}
		return &pq.Error{Code: "23505", Constraint: "bookings_booking_reference_key"}
	}
	f.refs[booking.BookingReference] = true
	f.nextID++
	booking.ID = f.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingStore) GetByReference(_ context.Context, reference string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := normalizeRef(reference)
	for _, booking := range f.bookings {
		if booking.BookingReference == want {
			cp := *booking
			return &cp, nil
		}
	}
	return nil, nil
}

func normalizeRef(ref string) string {
	out := make([]byte, 0, len(ref))
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c == ' ' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func (f *fakeBookingStore) GetByUserID(_ context.Context, userID int64) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, booking := range f.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			out = append(out, *booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBookingStore) AddSeats(_ context.Context, bookingID int64, seatIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingSeats[bookingID] = append(f.bookingSeats[bookingID], seatIDs...)
	return nil
}

func (f *fakeBookingStore) GetSeats(_ context.Context, bookingID int64) ([]models.Seat, error) {
	f.mu.Lock()
	ids := f.bookingSeats[bookingID]
	f.mu.Unlock()

	var out []models.Seat
	f.seatSource.mu.Lock()
	defer f.seatSource.mu.Unlock()
	for _, id := range ids {
		if seat, ok := f.seatSource.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateTicketPayload(_ context.Context, bookingID int64, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[bookingID]; ok {
		booking.TicketPayload = &payload
	}
	return nil
}

func (f *fakeBookingStore) MarkTicketSent(_ context.Context, bookingID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[bookingID]; ok {
		booking.TicketSent = true
	}
	return nil
}

func (f *fakeBookingStore) SetStatus(_ context.Context, bookingID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[bookingID]; ok {
		booking.Status = status
	}
	return nil
}

func (f *fakeBookingStore) CheckIn(_ context.Context, bookingID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.CheckedIn {
		return false, nil
	}
	now := time.Now()
	booking.CheckedIn = true
	booking.CheckedInAt = &now
	return true, nil
}

type fakeDiscountStore struct {
	mu    sync.Mutex
	codes map[string]*models.DiscountCode
}

func newFakeDiscountStore() *fakeDiscountStore {
	return &fakeDiscountStore{codes: make(map[string]*models.DiscountCode)}
}

func (f *fakeDiscountStore) addCode(id int64, code string, percentOff int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[normalizeRef(code)] = &models.DiscountCode{ID: id, Code: code, PercentOff: percentOff}
}

func (f *fakeDiscountStore) GetByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	discount, ok := f.codes[normalizeRef(code)]
	if !ok {
		return nil, nil
	}
	cp := *discount
	return &cp, nil
}

func (f *fakeDiscountStore) SetTimesUsed(_ context.Context, id int64, timesUsed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, discount := range f.codes {
		if discount.ID == id {
			discount.TimesUsed = timesUsed
		}
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
	err      error
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) published(subject string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

type fakeEmailDispatcher struct {
	mu   sync.Mutex
	err  error
	sent []*external.TicketEmailRequest
}

func (f *fakeEmailDispatcher) SendTicket(_ context.Context, req *external.TicketEmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []models.Show
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string, _, _ int) ([]models.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

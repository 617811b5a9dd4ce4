package models

import (
	"time"
)

// Seat statuses. A RESERVED seat whose reserved_until has elapsed is
// logically available; readers treat it as such (lazy expiry).
const (
	SeatAvailable = "AVAILABLE"
	SeatReserved  = "RESERVED"
	SeatSold      = "SOLD"
	SeatBlocked   = "BLOCKED"
)

// Show statuses
const (
	ShowScheduled = "SCHEDULED"
	ShowOnSale    = "ON_SALE"
	ShowSoldOut   = "SOLD_OUT"
	ShowCancelled = "CANCELLED"
)

// Booking statuses
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLoggedIn time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// Venue represents a theater building
type Venue struct {
	ID      int64   `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Address *string `json:"address" db:"address"`
}

// Ensemble represents a production company / cast
type Ensemble struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
}

// Show represents a single scheduled performance
type Show struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	VenueID        *int64    `json:"venue_id" db:"venue_id"`
	EnsembleID     *int64    `json:"ensemble_id" db:"ensemble_id"`
	DatetimeStart  time.Time `json:"datetime_start" db:"datetime_start"`
	Status         string    `json:"status" db:"status"`
	BasePrice      int64     `json:"base_price" db:"base_price"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Seat represents a seat for a show. Price is in minor currency units.
// ReservedUntil is set if and only if status is RESERVED.
type Seat struct {
	ID            string     `json:"id" db:"id"`
	ShowID        int64      `json:"show_id" db:"show_id"`
	Section       string     `json:"section" db:"section"`
	Row           string     `json:"row" db:"row_label"`
	Number        int        `json:"number" db:"seat_number"`
	Status        string     `json:"status" db:"status"`
	Price         int64      `json:"price" db:"price"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty" db:"reserved_until"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// HoldExpired reports whether a RESERVED seat's hold window has elapsed at
// the given instant. A RESERVED seat without a timestamp counts as expired.
func (s *Seat) HoldExpired(now time.Time) bool {
	if s.Status != SeatReserved {
		return false
	}
	return s.ReservedUntil == nil || !s.ReservedUntil.After(now)
}

// Booking represents a confirmed (or later cancelled) sale. Bookings are
// never deleted; cancellation is a status change.
type Booking struct {
	ID               int64      `json:"id" db:"id"`
	BookingReference string     `json:"booking_reference" db:"booking_reference"`
	ShowID           int64      `json:"show_id" db:"show_id"`
	UserID           *int64     `json:"user_id" db:"user_id"`
	Status           string     `json:"status" db:"status"`
	TotalAmount      int64      `json:"total_amount" db:"total_amount"`
	CustomerName     string     `json:"customer_name" db:"customer_name"`
	CustomerEmail    string     `json:"customer_email" db:"customer_email"`
	CustomerPhone    *string    `json:"customer_phone" db:"customer_phone"`
	SpecialRequests  *string    `json:"special_requests" db:"special_requests"`
	ConfirmedAt      *time.Time `json:"confirmed_at" db:"confirmed_at"`
	TicketPayload    *string    `json:"-" db:"ticket_payload"`
	TicketSent       bool       `json:"ticket_sent" db:"ticket_sent"`
	CheckedIn        bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt      *time.Time `json:"checked_in_at" db:"checked_in_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	Seats            []Seat     `json:"seats,omitempty"` // Not from DB, filled separately
}

// BookingSeat represents the relationship between bookings and seats
type BookingSeat struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	SeatID    string    `json:"seat_id" db:"seat_id"`
	SoldAt    time.Time `json:"sold_at" db:"sold_at"`
}

// DiscountCode represents a promotional code. The usage counter is advisory
// and incremented last-write-wins.
type DiscountCode struct {
	ID         int64  `json:"id" db:"id"`
	Code       string `json:"code" db:"code"`
	PercentOff int    `json:"percent_off" db:"percent_off"`
	TimesUsed  int    `json:"times_used" db:"times_used"`
}

package models

import "time"

// NATS Event Types
const (
	EventShowCreated        = "show.created"
	EventReservationCreated = "reservation.created"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCheckedIn   = "booking.checked_in"
)

// ShowCreatedEvent represents a show creation event; consumed by the search
// indexer.
type ShowCreatedEvent struct {
	ShowID    int64     `json:"show_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// ReservationCreatedEvent represents a successful seat hold
type ReservationCreatedEvent struct {
	ShowID        int64     `json:"show_id"`
	SeatIDs       []string  `json:"seat_ids"`
	ReservedUntil time.Time `json:"reserved_until"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingConfirmedEvent represents a confirmed sale; consumed by the ticket
// email retry worker.
type BookingConfirmedEvent struct {
	BookingID        int64     `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	ShowID           int64     `json:"show_id"`
	UserID           *int64    `json:"user_id"`
	TotalAmount      int64     `json:"total_amount"`
	TicketSent       bool      `json:"ticket_sent"`
	Timestamp        time.Time `json:"timestamp"`
}

// BookingCheckedInEvent represents a door check-in
type BookingCheckedInEvent struct {
	BookingID int64     `json:"booking_id"`
	ShowID    int64     `json:"show_id"`
	Timestamp time.Time `json:"timestamp"`
}

package models

import "time"

// CreateShowRequest - модель для создания спектакля
type CreateShowRequest struct {
	Title         string           `json:"title" binding:"required"`
	VenueID       *int64           `json:"venue_id,omitempty"`
	EnsembleID    *int64           `json:"ensemble_id,omitempty"`
	DatetimeStart time.Time        `json:"datetime_start" binding:"required"`
	BasePrice     int64            `json:"base_price"`
	Sections      []SectionRequest `json:"sections"`
}

// SectionRequest describes one rectangular block of the seat map.
type SectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Rows        int    `json:"rows" binding:"required"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required"`
	Price       int64  `json:"price"`
}

// CreateShowResponse - модель ответа при создании спектакля
type CreateShowResponse struct {
	ID           int64 `json:"id"`
	SeatsCreated int   `json:"seats_created"`
}

// ListShowsResponseItem - элемент списка спектаклей
type ListShowsResponseItem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	DatetimeStart  time.Time `json:"datetime_start"`
	Status         string    `json:"status"`
	AvailableSeats int       `json:"available_seats"`
}

// ListShowsResponse - список спектаклей
type ListShowsResponse []ListShowsResponseItem

// ListSeatsResponseItem - элемент карты зала
type ListSeatsResponseItem struct {
	ID            string     `json:"id"`
	Section       string     `json:"section"`
	Row           string     `json:"row"`
	Number        int        `json:"number"`
	Status        string     `json:"status"`
	Price         int64      `json:"price"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
}

// ListSeatsResponse - карта зала
type ListSeatsResponse []ListSeatsResponseItem

// ReserveSeatsRequest - запрос на резервирование мест
type ReserveSeatsRequest struct {
	ShowID  int64    `json:"show_id" binding:"required"`
	SeatIDs []string `json:"seat_ids" binding:"required"`
}

// ReserveSeatsResponse - ответ с таймаутом резерва
type ReserveSeatsResponse struct {
	ReservedUntil time.Time `json:"reserved_until"`
}

// ConflictResponse reports seats that could not be claimed. FailedCount is
// set when a race was detected after the conditional write and the exact ids
// are held by the winning party.
type ConflictResponse struct {
	Error              string   `json:"error"`
	UnavailableSeatIDs []string `json:"unavailable_seat_ids,omitempty"`
	FailedCount        int      `json:"failed_count,omitempty"`
}

// CustomerInfo - контактные данные покупателя
type CustomerInfo struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required"`
	Phone           *string `json:"phone,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// ConfirmBookingRequest - запрос на подтверждение бронирования
type ConfirmBookingRequest struct {
	ShowID       int64        `json:"show_id" binding:"required"`
	SeatIDs      []string     `json:"seat_ids" binding:"required"`
	Customer     CustomerInfo `json:"customer" binding:"required"`
	TotalAmount  int64        `json:"total_amount" binding:"required"`
	DiscountCode *string      `json:"discount_code,omitempty"`
}

// ConfirmBookingResponse - модель ответа при подтверждении бронирования
type ConfirmBookingResponse struct {
	BookingID        int64  `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	EmailSent        bool   `json:"email_sent"`
	EmailError       string `json:"email_error,omitempty"`
}

// ListBookingsResponseItem - элемент списка бронирований
type ListBookingsResponseItem struct {
	ID               int64                   `json:"id"`
	BookingReference string                  `json:"booking_reference"`
	ShowID           int64                   `json:"show_id"`
	Status           string                  `json:"status"`
	TotalAmount      int64                   `json:"total_amount"`
	CheckedIn        bool                    `json:"checked_in"`
	Seats            []ListSeatsResponseItem `json:"seats,omitempty"`
}

// ListBookingsResponse - список бронирований
type ListBookingsResponse []ListBookingsResponseItem

// VerifyTicketRequest accepts either a decoded QR string or a manually
// typed booking reference.
type VerifyTicketRequest struct {
	QRPayload        string `json:"qr_payload,omitempty"`
	BookingReference string `json:"booking_reference,omitempty"`
}

// Verify result statuses
const (
	VerifySuccess = "success"
	VerifyWarning = "warning"
	VerifyError   = "error"
)

// VerifyTicketResponse - результат проверки билета
type VerifyTicketResponse struct {
	Status           string          `json:"status"`
	Message          string          `json:"message"`
	AlreadyCheckedIn bool            `json:"already_checked_in"`
	Booking          *BookingSummary `json:"booking,omitempty"`
}

// BookingSummary is the subset of a booking shown to door staff.
type BookingSummary struct {
	BookingID        int64        `json:"booking_id"`
	BookingReference string       `json:"booking_reference"`
	CustomerName     string       `json:"customer_name"`
	ShowID           int64        `json:"show_id"`
	Status           string       `json:"status"`
	CheckedIn        bool         `json:"checked_in"`
	CheckedInAt      *time.Time   `json:"checked_in_at,omitempty"`
	Seats            []TicketSeat `json:"seats,omitempty"`
}

// CheckInRequest - запрос на отметку посещения
type CheckInRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// CheckInResponse - результат отметки посещения
type CheckInResponse struct {
	Success          bool   `json:"success"`
	AlreadyCheckedIn bool   `json:"already_checked_in"`
	Message          string `json:"message,omitempty"`
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/models"
)

type TicketService struct {
	bookingRepo BookingStore
	natsClient  Publisher
}

func NewTicketService(bookingRepo BookingStore, natsClient Publisher) *TicketService {
	return &TicketService{
		bookingRepo: bookingRepo,
		natsClient:  natsClient,
	}
}

// Verify checks a ticket at the door. It accepts either a scanned QR payload
// or a manually typed booking reference and never flips any state: a verify
// that finds problems reports them in the response status, not as an API
// error. Conditions a staff member can override (already checked in) come
// back as warnings; hard stops (cancelled, unknown) come back as errors.
func (s *TicketService) Verify(ctx context.Context, req *models.VerifyTicketRequest) (*models.VerifyTicketResponse, error) {
	reference := strings.TrimSpace(req.BookingReference)
	var payload *models.TicketPayload

	if req.QRPayload != "" {
		decoded, err := models.DecodeTicketPayload(req.QRPayload)
		if err != nil {
			return &models.VerifyTicketResponse{
				Status:  models.VerifyError,
				Message: "Ticket payload is malformed and cannot be read",
			}, nil
		}
		payload = decoded
		reference = decoded.BookingReference
	}

	if reference == "" {
		return nil, apperrors.NewValidation("either qr_payload or booking_reference is required")
	}

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	if booking == nil {
		return &models.VerifyTicketResponse{
			Status:  models.VerifyError,
			Message: fmt.Sprintf("No booking found for reference %s", strings.ToUpper(reference)),
		}, nil
	}

	// A scanned payload must agree with the stored booking; a mismatch
	// means the QR content was tampered with or belongs elsewhere.
	if payload != nil && payload.BookingID != 0 && payload.BookingID != booking.ID {
		return &models.VerifyTicketResponse{
			Status:  models.VerifyError,
			Message: "Ticket payload does not match booking records",
		}, nil
	}

	summary, err := s.buildSummary(ctx, booking)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingCancelled {
		return &models.VerifyTicketResponse{
			Status:  models.VerifyError,
			Message: "Booking has been cancelled",
			Booking: summary,
		}, nil
	}

	if booking.CheckedIn {
		msg := "Ticket was already used for entry"
		if booking.CheckedInAt != nil {
			msg = fmt.Sprintf("Ticket was already used for entry at %s", booking.CheckedInAt.Format(time.RFC3339))
		}
		return &models.VerifyTicketResponse{
			Status:           models.VerifyWarning,
			Message:          msg,
			AlreadyCheckedIn: true,
			Booking:          summary,
		}, nil
	}

	return &models.VerifyTicketResponse{
		Status:  models.VerifySuccess,
		Message: "Ticket is valid",
		Booking: summary,
	}, nil
}

// CheckIn marks a booking as used for entry. The flip is conditional in the
// database, so two concurrent check-ins resolve to one success and one
// already-checked-in outcome.
func (s *TicketService) CheckIn(ctx context.Context, req *models.CheckInRequest) (*models.CheckInResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NewNotFound("booking")
	}

	if booking.Status == models.BookingCancelled {
		return nil, &apperrors.ConflictError{Msg: "cancelled bookings cannot be checked in"}
	}

	checkedIn, err := s.bookingRepo.CheckIn(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check in booking: %w", err)
	}

	// Idempotent: a booking already checked in reports success again with
	// the flag set, so concurrent door staff cannot double-count an entry.
	if !checkedIn {
		return &models.CheckInResponse{
			Success:          true,
			AlreadyCheckedIn: true,
			Message:          "Booking was already checked in",
		}, nil
	}

	if s.natsClient != nil {
		event := models.BookingCheckedInEvent{
			BookingID: booking.ID,
			ShowID:    booking.ShowID,
			Timestamp: time.Now().UTC(),
		}
		if perr := s.natsClient.Publish(models.EventBookingCheckedIn, event); perr != nil {
			slog.Error("Failed to publish check-in event", "booking_id", booking.ID, "error", perr)
		}
	}

	return &models.CheckInResponse{Success: true}, nil
}

func (s *TicketService) buildSummary(ctx context.Context, booking *models.Booking) (*models.BookingSummary, error) {
	seats, err := s.bookingRepo.GetSeats(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking seats: %w", err)
	}

	ticketSeats := make([]models.TicketSeat, 0, len(seats))
	for i := range seats {
		ticketSeats = append(ticketSeats, models.TicketSeat{
			Section: seats[i].Section,
			Row:     seats[i].Row,
			Number:  seats[i].Number,
		})
	}

	return &models.BookingSummary{
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		CustomerName:     booking.CustomerName,
		ShowID:           booking.ShowID,
		Status:           booking.Status,
		CheckedIn:        booking.CheckedIn,
		CheckedInAt:      booking.CheckedInAt,
		Seats:            ticketSeats,
	}, nil
}

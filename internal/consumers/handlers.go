package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"stagedoor/internal/external"
	"stagedoor/internal/models"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 30 * time.Second

// handleBookingConfirmed retries the ticket email for bookings whose
// synchronous send failed. Bookings already marked sent are skipped, so a
// redelivered message is harmless.
func (s *Service) handleBookingConfirmed(msg *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to decode booking confirmed event", "error", err)
		return
	}

	if event.TicketSent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	booking, err := s.repos.Bookings.GetByID(ctx, event.BookingID)
	if err != nil || booking == nil {
		slog.Error("Failed to load booking for email retry", "booking_id", event.BookingID, "error", err)
		return
	}
	if booking.TicketSent || booking.Status != models.BookingConfirmed {
		return
	}
	if booking.TicketPayload == nil {
		slog.Error("Booking has no ticket payload", "booking_id", booking.ID)
		return
	}

	payload, err := models.DecodeTicketPayload(*booking.TicketPayload)
	if err != nil {
		slog.Error("Failed to decode stored ticket payload", "booking_id", booking.ID, "error", err)
		return
	}

	seats := make([]external.TicketEmailSeat, 0, len(payload.Seats))
	for _, seat := range payload.Seats {
		seats = append(seats, external.TicketEmailSeat{
			Section: seat.Section,
			Row:     seat.Row,
			Number:  seat.Number,
		})
	}

	req := &external.TicketEmailRequest{
		Recipient:        booking.CustomerEmail,
		CustomerName:     booking.CustomerName,
		BookingReference: booking.BookingReference,
		ShowTitle:        payload.ShowTitle,
		ShowDatetime:     payload.ShowDatetime,
		Seats:            seats,
		TotalAmount:      booking.TotalAmount,
		QRContent:        *booking.TicketPayload,
	}
	if err := s.emailClient.SendTicket(ctx, req); err != nil {
		slog.Error("Ticket email retry failed", "booking_id", booking.ID, "error", err)
		return
	}

	if err := s.repos.Bookings.MarkTicketSent(ctx, booking.ID); err != nil {
		slog.Error("Failed to mark ticket sent", "booking_id", booking.ID, "error", err)
		return
	}

	slog.Info("Ticket email delivered on retry", "booking_id", booking.ID)
}

// handleShowCreated indexes a newly created show for full-text search.
func (s *Service) handleShowCreated(msg *stan.Msg) {
	var event models.ShowCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to decode show created event", "error", err)
		return
	}

	if s.esClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	show, err := s.repos.Shows.GetByID(ctx, event.ShowID)
	if err != nil || show == nil {
		slog.Error("Failed to load show for indexing", "show_id", event.ShowID, "error", err)
		return
	}

	if err := s.esClient.IndexShow(ctx, show); err != nil {
		slog.Error("Failed to index show", "show_id", show.ID, "error", err)
		return
	}

	slog.Info("Show indexed", "show_id", show.ID)
}

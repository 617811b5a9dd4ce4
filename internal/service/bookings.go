package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/external"
	"stagedoor/internal/middleware"
	"stagedoor/internal/models"
	"stagedoor/internal/repository"
)

// referenceAlphabet excludes ambiguous characters (0/O, 1/I).
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referenceSuffixLen = 5

// maxReferenceAttempts bounds retries on booking reference collisions.
const maxReferenceAttempts = 5

type BookingService struct {
	showRepo     ShowStore
	seatRepo     SeatStore
	bookingRepo  BookingStore
	discountRepo DiscountStore
	natsClient   Publisher
	emailClient  EmailDispatcher
}

func NewBookingService(showRepo ShowStore, seatRepo SeatStore, bookingRepo BookingStore, discountRepo DiscountStore, natsClient Publisher, emailClient EmailDispatcher) *BookingService {
	return &BookingService{
		showRepo:     showRepo,
		seatRepo:     seatRepo,
		bookingRepo:  bookingRepo,
		discountRepo: discountRepo,
		natsClient:   natsClient,
		emailClient:  emailClient,
	}
}

// Confirm finalizes a booking: it recomputes the total from current seat
// prices, persists the booking with a unique reference, conditionally marks
// the seats sold and sends the ticket email. Seats held by other parties or
// sold concurrently fail the whole request.
func (s *BookingService) Confirm(ctx context.Context, req *models.ConfirmBookingRequest) (*models.ConfirmBookingResponse, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	seatIDs, err := normalizeSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Customer.Name) == "" {
		return nil, apperrors.NewValidation("customer name is required")
	}
	if !strings.Contains(req.Customer.Email, "@") {
		return nil, apperrors.NewValidation("customer email is invalid")
	}
	if req.TotalAmount <= 0 {
		return nil, apperrors.NewValidation("total_amount must be positive")
	}

	show, err := s.showRepo.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NewNotFound("show")
	}

	seats, err := s.seatRepo.GetForShow(ctx, req.ShowID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, apperrors.NewNotFound("one or more seats")
	}

	// Seats already sold or blocked can never be bought again; holds are
	// not checked here because the conditional sell below is the arbiter.
	var unavailable []string
	var soldCount, blockedCount int
	var total int64
	for i := range seats {
		switch seats[i].Status {
		case models.SeatSold:
			soldCount++
			unavailable = append(unavailable, seats[i].ID)
		case models.SeatBlocked:
			blockedCount++
			unavailable = append(unavailable, seats[i].ID)
		}
		total += seats[i].Price
	}
	if len(unavailable) > 0 {
		return nil, &apperrors.ConflictError{
			Msg:                fmt.Sprintf("%d seat(s) already sold and %d blocked out of %d requested", soldCount, blockedCount, len(seatIDs)),
			UnavailableSeatIDs: unavailable,
		}
	}

	var discount *models.DiscountCode
	if req.DiscountCode != nil && *req.DiscountCode != "" {
		var derr error
		discount, derr = s.discountRepo.GetByCode(ctx, *req.DiscountCode)
		if derr != nil {
			return nil, fmt.Errorf("failed to get discount code: %w", derr)
		}
		if discount == nil {
			return nil, apperrors.NewValidation("unknown discount code: %s", *req.DiscountCode)
		}
		total = total - total*int64(discount.PercentOff)/100
	}

	// The client-supplied total is advisory only; the authoritative amount
	// is recomputed here from current seat prices.
	if total != req.TotalAmount {
		return nil, apperrors.NewValidation("total_amount mismatch: expected %d, got %d", total, req.TotalAmount)
	}

	now := time.Now().UTC()

	payload := &models.TicketPayload{
		BookingReference: "",
		ShowID:           show.ID,
		ShowTitle:        show.Title,
		ShowDatetime:     show.DatetimeStart,
		CustomerName:     req.Customer.Name,
	}
	ticketSeats := make([]models.TicketSeat, 0, len(seats))
	emailSeats := make([]external.TicketEmailSeat, 0, len(seats))
	for i := range seats {
		ticketSeats = append(ticketSeats, models.TicketSeat{
			Section: seats[i].Section,
			Row:     seats[i].Row,
			Number:  seats[i].Number,
		})
		emailSeats = append(emailSeats, external.TicketEmailSeat{
			Section: seats[i].Section,
			Row:     seats[i].Row,
			Number:  seats[i].Number,
		})
	}
	payload.Seats = ticketSeats

	var booking *models.Booking
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference, rerr := generateBookingReference(now)
		if rerr != nil {
			return nil, fmt.Errorf("failed to generate booking reference: %w", rerr)
		}

		candidate := &models.Booking{
			BookingReference: reference,
			ShowID:           show.ID,
			UserID:           &userID,
			CustomerName:     req.Customer.Name,
			CustomerEmail:    req.Customer.Email,
			CustomerPhone:    req.Customer.Phone,
			SpecialRequests:  req.Customer.SpecialRequests,
			TotalAmount:      total,
			Status:           models.BookingConfirmed,
			ConfirmedAt:      &now,
		}
		if err = s.bookingRepo.Create(ctx, candidate); err != nil {
			if repository.IsUniqueViolation(err) {
				slog.Warn("Booking reference collision, retrying", "reference", reference)
				continue
			}
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
		booking = candidate
		break
	}
	if booking == nil {
		return nil, fmt.Errorf("failed to create booking: reference collisions exhausted %d attempts", maxReferenceAttempts)
	}

	if err = s.bookingRepo.AddSeats(ctx, booking.ID, seatIDs); err != nil {
		return nil, fmt.Errorf("failed to attach seats to booking: %w", err)
	}

	payload.BookingID = booking.ID
	payload.BookingReference = booking.BookingReference
	encoded, err := payload.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket payload: %w", err)
	}
	if err = s.bookingRepo.UpdateTicketPayload(ctx, booking.ID, encoded); err != nil {
		return nil, fmt.Errorf("failed to store ticket payload: %w", err)
	}

	// Conditional sell: only seats still AVAILABLE or RESERVED flip to
	// SOLD. A short count means someone else won a seat in between.
	sold, err := s.seatRepo.MarkSold(ctx, req.ShowID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to mark seats sold: %w", err)
	}
	if len(sold) != len(seatIDs) {
		if len(sold) > 0 {
			if rerr := s.seatRepo.RevertSold(ctx, sold); rerr != nil {
				slog.Error("Failed to revert partially sold seats", "booking_id", booking.ID, "error", rerr)
			}
		}
		if serr := s.bookingRepo.SetStatus(ctx, booking.ID, models.BookingCancelled); serr != nil {
			slog.Error("Failed to cancel booking after sell conflict", "booking_id", booking.ID, "error", serr)
		}
		return nil, &apperrors.ConflictError{
			Msg:         fmt.Sprintf("%d of %d seats were taken before the booking completed", len(seatIDs)-len(sold), len(seatIDs)),
			FailedCount: len(seatIDs) - len(sold),
		}
	}

	if err = s.showRepo.DecrementAvailableSeats(ctx, req.ShowID, len(seatIDs)); err != nil {
		slog.Error("Failed to update show available seats", "show_id", req.ShowID, "error", err)
	}

	if discount != nil {
		if uerr := s.discountRepo.SetTimesUsed(ctx, discount.ID, discount.TimesUsed+1); uerr != nil {
			slog.Error("Failed to update discount usage", "discount_id", discount.ID, "error", uerr)
		}
	}

	resp := &models.ConfirmBookingResponse{
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
	}

	emailReq := &external.TicketEmailRequest{
		Recipient:        req.Customer.Email,
		CustomerName:     req.Customer.Name,
		BookingReference: booking.BookingReference,
		ShowTitle:        show.Title,
		ShowDatetime:     show.DatetimeStart,
		Seats:            emailSeats,
		TotalAmount:      total,
		QRContent:        encoded,
	}
	if s.emailClient == nil {
		resp.EmailError = "email dispatch is not configured"
	} else if serr := s.emailClient.SendTicket(ctx, emailReq); serr != nil {
		slog.Error("Failed to send ticket email", "booking_id", booking.ID, "error", serr)
		resp.EmailSent = false
		resp.EmailError = serr.Error()
	} else {
		if merr := s.bookingRepo.MarkTicketSent(ctx, booking.ID); merr != nil {
			slog.Error("Failed to mark ticket sent", "booking_id", booking.ID, "error", merr)
		}
		resp.EmailSent = true
	}

	event := models.BookingConfirmedEvent{
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		ShowID:           show.ID,
		UserID:           &userID,
		TotalAmount:      total,
		TicketSent:       resp.EmailSent,
		Timestamp:        now,
	}
	if s.natsClient != nil {
		if perr := s.natsClient.Publish(models.EventBookingConfirmed, event); perr != nil {
			slog.Error("Failed to publish booking confirmed event", "booking_id", booking.ID, "error", perr)
		}
	}

	return resp, nil
}

// List returns the authenticated user's bookings, newest first.
func (s *BookingService) List(ctx context.Context) (models.ListBookingsResponse, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	items := make(models.ListBookingsResponse, 0, len(bookings))
	for i := range bookings {
		seats, serr := s.bookingRepo.GetSeats(ctx, bookings[i].ID)
		if serr != nil {
			return nil, fmt.Errorf("failed to get booking seats: %w", serr)
		}
		seatItems := make([]models.ListSeatsResponseItem, 0, len(seats))
		for j := range seats {
			seatItems = append(seatItems, models.ListSeatsResponseItem{
				ID:      seats[j].ID,
				Section: seats[j].Section,
				Row:     seats[j].Row,
				Number:  seats[j].Number,
				Status:  seats[j].Status,
				Price:   seats[j].Price,
			})
		}
		items = append(items, models.ListBookingsResponseItem{
			ID:               bookings[i].ID,
			BookingReference: bookings[i].BookingReference,
			ShowID:           bookings[i].ShowID,
			Status:           bookings[i].Status,
			TotalAmount:      bookings[i].TotalAmount,
			CheckedIn:        bookings[i].CheckedIn,
			Seats:            seatItems,
		})
	}

	return items, nil
}

// generateBookingReference builds STG-YYYYMMDD-XXXXX references from a
// crypto-random alphabet suffix.
func generateBookingReference(now time.Time) (string, error) {
	suffix := make([]byte, referenceSuffixLen)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("STG-%s-%s", now.Format("20060102"), string(suffix)), nil
}

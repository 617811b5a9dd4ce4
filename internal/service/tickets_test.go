package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketEnv struct {
	seats     *fakeSeatStore
	bookings  *fakeBookingStore
	publisher *fakePublisher
	svc       *TicketService
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	seats := newFakeSeatStore()
	bookings := newFakeBookingStore(seats)
	publisher := &fakePublisher{}
	return &ticketEnv{
		seats:     seats,
		bookings:  bookings,
		publisher: publisher,
		svc:       NewTicketService(bookings, publisher),
	}
}

// seedBooking stores a confirmed booking with one seat and its ticket payload.
func (env *ticketEnv) seedBooking(t *testing.T, reference string) *models.Booking {
	t.Helper()
	ctx := context.Background()
	seatID := env.seats.addSeat(1, "Balcony", "C", 4, models.SeatSold, 6000, nil)

	booking := &models.Booking{
		BookingReference: reference,
		ShowID:           1,
		CustomerName:     "Grace Hopper",
		CustomerEmail:    "grace@example.com",
		Status:           models.BookingConfirmed,
		TotalAmount:      6000,
	}
	require.NoError(t, env.bookings.Create(ctx, booking))
	require.NoError(t, env.bookings.AddSeats(ctx, booking.ID, []string{seatID}))

	payload := &models.TicketPayload{
		BookingID:        booking.ID,
		BookingReference: reference,
		ShowID:           1,
		ShowTitle:        "King Lear",
		ShowDatetime:     time.Now().Add(6 * time.Hour),
		CustomerName:     booking.CustomerName,
		Seats:            []models.TicketSeat{{Section: "Balcony", Row: "C", Number: 4}},
	}
	encoded, err := payload.Encode()
	require.NoError(t, err)
	require.NoError(t, env.bookings.UpdateTicketPayload(ctx, booking.ID, encoded))
	booking.TicketPayload = &encoded
	return booking
}

func TestVerifyByReference(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		BookingReference: "STG-20260830-KXQ42",
	})
	require.NoError(t, err)

	assert.Equal(t, models.VerifySuccess, resp.Status)
	assert.False(t, resp.AlreadyCheckedIn)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, booking.ID, resp.Booking.BookingID)
	assert.Equal(t, "Grace Hopper", resp.Booking.CustomerName)
	require.Len(t, resp.Booking.Seats, 1)
	assert.Equal(t, "Balcony", resp.Booking.Seats[0].Section)
}

func TestVerifyReferenceIsCaseInsensitive(t *testing.T) {
	env := newTicketEnv(t)
	env.seedBooking(t, "STG-20260830-KXQ42")

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		BookingReference: "  stg-20260830-kxq42 ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifySuccess, resp.Status)
}

func TestVerifyByQRPayload(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		QRPayload: *booking.TicketPayload,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifySuccess, resp.Status)
	assert.Equal(t, booking.ID, resp.Booking.BookingID)
}

func TestVerifyMalformedQRPayload(t *testing.T) {
	env := newTicketEnv(t)

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		QRPayload: "%%% not json %%%",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifyError, resp.Status)
}

func TestVerifyUnknownReference(t *testing.T) {
	env := newTicketEnv(t)

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		BookingReference: "STG-20260830-ZZZZZ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifyError, resp.Status)
	assert.True(t, strings.Contains(resp.Message, "STG-20260830-ZZZZZ"))
}

func TestVerifyPayloadBookingMismatch(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")

	forged := &models.TicketPayload{
		BookingID:        booking.ID + 100,
		BookingReference: booking.BookingReference,
		ShowID:           1,
	}
	encoded, err := forged.Encode()
	require.NoError(t, err)

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{QRPayload: encoded})
	require.NoError(t, err)
	assert.Equal(t, models.VerifyError, resp.Status)
}

func TestVerifyAlreadyCheckedInIsWarning(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")

	done, err := env.bookings.CheckIn(context.Background(), booking.ID)
	require.NoError(t, err)
	require.True(t, done)

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		BookingReference: booking.BookingReference,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifyWarning, resp.Status)
	assert.True(t, resp.AlreadyCheckedIn)
	require.NotNil(t, resp.Booking)
	assert.True(t, resp.Booking.CheckedIn)
}

func TestVerifyCancelledBookingIsError(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")
	require.NoError(t, env.bookings.SetStatus(context.Background(), booking.ID, models.BookingCancelled))

	resp, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{
		BookingReference: booking.BookingReference,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerifyError, resp.Status)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, models.BookingCancelled, resp.Booking.Status)
}

func TestVerifyRequiresReferenceOrPayload(t *testing.T) {
	env := newTicketEnv(t)

	_, err := env.svc.Verify(context.Background(), &models.VerifyTicketRequest{})
	_, ok := apperrors.AsValidation(err)
	assert.True(t, ok)
}

func TestCheckInIsIdempotent(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")

	first, err := env.svc.CheckIn(context.Background(), &models.CheckInRequest{BookingID: booking.ID})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyCheckedIn)
	assert.True(t, env.publisher.published(models.EventBookingCheckedIn))

	second, err := env.svc.CheckIn(context.Background(), &models.CheckInRequest{BookingID: booking.ID})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.AlreadyCheckedIn)

	// no second check-in timestamp, no second event
	final, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, final.CheckedIn)
	env.publisher.mu.Lock()
	events := len(env.publisher.subjects)
	env.publisher.mu.Unlock()
	assert.Equal(t, 1, events)
}

func TestCheckInUnknownBooking(t *testing.T) {
	env := newTicketEnv(t)

	_, err := env.svc.CheckIn(context.Background(), &models.CheckInRequest{BookingID: 42})
	_, ok := apperrors.AsNotFound(err)
	assert.True(t, ok)
}

func TestCheckInCancelledBooking(t *testing.T) {
	env := newTicketEnv(t)
	booking := env.seedBooking(t, "STG-20260830-KXQ42")
	require.NoError(t, env.bookings.SetStatus(context.Background(), booking.ID, models.BookingCancelled))

	_, err := env.svc.CheckIn(context.Background(), &models.CheckInRequest{BookingID: booking.ID})
	_, ok := apperrors.AsConflict(err)
	assert.True(t, ok)
}

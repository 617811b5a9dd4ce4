package service

import (
	"context"
	"time"

	"stagedoor/internal/external"
	"stagedoor/internal/models"
)

// Store interfaces consumed by the services. The repository package provides
// the Postgres implementations; tests substitute in-memory fakes.

type ShowStore interface {
	Create(ctx context.Context, show *models.Show) error
	GetByID(ctx context.Context, id int64) (*models.Show, error)
	List(ctx context.Context, date string, page, pageSize int) ([]models.Show, error)
	DecrementAvailableSeats(ctx context.Context, showID int64, count int) error
}

type SeatStore interface {
	CreateSeatMap(ctx context.Context, showID int64, sections []models.SectionRequest) (int, error)
	GetForShow(ctx context.Context, showID int64, seatIDs []string) ([]models.Seat, error)
	ListByShow(ctx context.Context, showID int64, page, pageSize int, section, status *string) ([]models.Seat, error)
	ReserveSeats(ctx context.Context, showID int64, seatIDs []string, until time.Time) ([]string, error)
	ReleaseSeats(ctx context.Context, seatIDs []string) error
	ReleaseExpired(ctx context.Context, seatIDs []string) (int64, error)
	MarkSold(ctx context.Context, showID int64, seatIDs []string) ([]string, error)
	RevertSold(ctx context.Context, seatIDs []string) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	AddSeats(ctx context.Context, bookingID int64, seatIDs []string) error
	GetSeats(ctx context.Context, bookingID int64) ([]models.Seat, error)
	UpdateTicketPayload(ctx context.Context, bookingID int64, payload string) error
	MarkTicketSent(ctx context.Context, bookingID int64) error
	SetStatus(ctx context.Context, bookingID int64, status string) error
	CheckIn(ctx context.Context, bookingID int64) (bool, error)
}

type DiscountStore interface {
	GetByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	SetTimesUsed(ctx context.Context, id int64, timesUsed int) error
}

// Publisher publishes domain events. Publish failures are logged by callers
// and never fail the operation that raised the event.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// EmailDispatcher sends ticket emails through the external collaborator.
type EmailDispatcher interface {
	SendTicket(ctx context.Context, req *external.TicketEmailRequest) error
}

// ShowSearcher runs full-text show searches.
type ShowSearcher interface {
	Search(ctx context.Context, query, date string, page, pageSize int) ([]models.Show, error)
}

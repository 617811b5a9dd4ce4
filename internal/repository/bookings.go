package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"stagedoor/internal/database"
	"stagedoor/internal/models"

	"github.com/lib/pq"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Used to retry booking reference generation on collision.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (booking_reference, show_id, user_id, status, total_amount,
		                      customer_name, customer_email, customer_phone, special_requests,
		                      confirmed_at, ticket_payload, ticket_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		booking.BookingReference,
		booking.ShowID,
		booking.UserID,
		booking.Status,
		booking.TotalAmount,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.SpecialRequests,
		booking.ConfirmedAt,
		booking.TicketPayload,
		booking.TicketSent,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	return err
}

const bookingColumns = `id, booking_reference, show_id, user_id, status, total_amount,
	       customer_name, customer_email, customer_phone, special_requests,
	       confirmed_at, ticket_payload, ticket_sent, checked_in, checked_in_at,
	       created_at, updated_at`

func (r *BookingRepository) scanBooking(row *sql.Row) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.BookingReference,
		&booking.ShowID,
		&booking.UserID,
		&booking.Status,
		&booking.TotalAmount,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.SpecialRequests,
		&booking.ConfirmedAt,
		&booking.TicketPayload,
		&booking.TicketSent,
		&booking.CheckedIn,
		&booking.CheckedInAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.db.QueryRowContext(ctx, query, id))
}

// GetByReference looks a booking up by its human-enterable code. References
// are stored upper-case; the lookup case-folds its input so door staff can
// type them in any case.
func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`
	return r.scanBooking(r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(reference))))
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.BookingReference,
			&booking.ShowID,
			&booking.UserID,
			&booking.Status,
			&booking.TotalAmount,
			&booking.CustomerName,
			&booking.CustomerEmail,
			&booking.CustomerPhone,
			&booking.SpecialRequests,
			&booking.ConfirmedAt,
			&booking.TicketPayload,
			&booking.TicketSent,
			&booking.CheckedIn,
			&booking.CheckedInAt,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) AddSeats(ctx context.Context, bookingID int64, seatIDs []string) error {
	query := `
		INSERT INTO booking_seats (booking_id, seat_id)
		SELECT $1, unnest($2::uuid[])`

	_, err := r.db.ExecContext(ctx, query, bookingID, pq.Array(seatIDs))
	return err
}

func (r *BookingRepository) GetSeats(ctx context.Context, bookingID int64) ([]models.Seat, error) {
	query := `
		SELECT s.id, s.show_id, s.section, s.row_label, s.seat_number, s.status, s.price, s.reserved_until, s.created_at, s.updated_at
		FROM seats s
		JOIN booking_seats bs ON s.id = bs.seat_id
		WHERE bs.booking_id = $1
		ORDER BY s.section, s.row_label, s.seat_number`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

// UpdateTicketPayload patches the serialized payload once the booking id is
// known.
func (r *BookingRepository) UpdateTicketPayload(ctx context.Context, bookingID int64, payload string) error {
	query := `UPDATE bookings SET ticket_payload = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, payload, bookingID)
	return err
}

func (r *BookingRepository) MarkTicketSent(ctx context.Context, bookingID int64) error {
	query := `UPDATE bookings SET ticket_sent = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, bookingID)
	return err
}

func (r *BookingRepository) SetStatus(ctx context.Context, bookingID int64, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, bookingID)
	return err
}

// CheckIn sets the checked-in flag only when it is not already set, which
// makes the operation safe to repeat. Returns whether this call flipped the
// flag.
func (r *BookingRepository) CheckIn(ctx context.Context, bookingID int64) (bool, error) {
	query := `
		UPDATE bookings
		SET checked_in = TRUE, checked_in_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND checked_in = FALSE`

	result, err := r.db.ExecContext(ctx, query, bookingID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

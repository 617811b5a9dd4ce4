package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stagedoor/internal/database"
	"stagedoor/internal/models"

	"github.com/lib/pq"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// CreateSeatMap materializes the seat map for a show from its section
// layout. It is idempotent: when any seats already exist for the show it
// does nothing and returns 0.
func (r *SeatRepository) CreateSeatMap(ctx context.Context, showID int64, sections []models.SectionRequest) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seats WHERE show_id = $1`, showID).Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	total := 0
	for _, section := range sections {
		for row := 1; row <= section.Rows; row++ {
			rowLabel := rowLabelFor(row)
			for seat := 1; seat <= section.SeatsPerRow; seat++ {
				query := `
					INSERT INTO seats (show_id, section, row_label, seat_number, status, price)
					VALUES ($1, $2, $3, $4, 'AVAILABLE', $5)`

				if _, err := tx.ExecContext(ctx, query, showID, section.Name, rowLabel, seat, section.Price); err != nil {
					return 0, err
				}
				total++
			}
		}
	}

	updateQuery := `UPDATE shows SET available_seats = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, total, showID); err != nil {
		return 0, err
	}

	return total, tx.Commit()
}

// rowLabelFor converts a 1-based row ordinal to a letter label: A..Z, then
// AA, AB and so on.
func rowLabelFor(row int) string {
	label := ""
	for row > 0 {
		row--
		label = string(rune('A'+row%26)) + label
		row /= 26
	}
	return label
}

// GetForShow returns the current state of exactly the requested seats scoped
// to the show. Callers compare the returned count to the requested count to
// detect unknown or cross-show ids.
func (r *SeatRepository) GetForShow(ctx context.Context, showID int64, seatIDs []string) ([]models.Seat, error) {
	query := `
		SELECT id, show_id, section, row_label, seat_number, status, price, reserved_until, created_at, updated_at
		FROM seats
		WHERE show_id = $1 AND id = ANY($2::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, showID, pq.Array(seatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

// ListByShow returns the seat map with live statuses, optionally filtered.
func (r *SeatRepository) ListByShow(ctx context.Context, showID int64, page, pageSize int, section, status *string) ([]models.Seat, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, show_id, section, row_label, seat_number, status, price, reserved_until, created_at, updated_at
		FROM seats
		WHERE show_id = $1`
	args = append(args, showID)
	argIndex++

	if section != nil {
		query += fmt.Sprintf(" AND section = $%d", argIndex)
		args = append(args, *section)
		argIndex++
	}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY section, row_label, seat_number"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

// ReserveSeats attempts to place a hold on every requested seat. The status
// predicate is the concurrency gate: only rows still AVAILABLE flip to
// RESERVED, so a racing caller affects fewer rows than requested. Returns
// the ids actually reserved.
func (r *SeatRepository) ReserveSeats(ctx context.Context, showID int64, seatIDs []string, until time.Time) ([]string, error) {
	query := `
		UPDATE seats
		SET status = 'RESERVED', reserved_until = $3, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND show_id = $1 AND status = 'AVAILABLE'
		RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, showID, pq.Array(seatIDs), until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIDs(rows)
}

// ReleaseSeats rolls a partially-reserved subset back to AVAILABLE. The
// RESERVED predicate keeps it from ever touching a sold seat.
func (r *SeatRepository) ReleaseSeats(ctx context.Context, seatIDs []string) error {
	query := `
		UPDATE seats
		SET status = 'AVAILABLE', reserved_until = NULL, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND status = 'RESERVED'`

	_, err := r.db.ExecContext(ctx, query, pq.Array(seatIDs))
	return err
}

// ReleaseExpired resets lazily-expired holds back to AVAILABLE. The expiry
// predicate is re-checked in the write so a hold freshly taken by another
// caller between read and cleanup is left alone.
func (r *SeatRepository) ReleaseExpired(ctx context.Context, seatIDs []string) (int64, error) {
	query := `
		UPDATE seats
		SET status = 'AVAILABLE', reserved_until = NULL, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND status = 'RESERVED'
		  AND (reserved_until IS NULL OR reserved_until <= NOW())`

	result, err := r.db.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkSold flips seats to SOLD at the commit point of a booking. The write
// is conditional on the seat still being sellable; callers treat a short
// count as a lost race.
func (r *SeatRepository) MarkSold(ctx context.Context, showID int64, seatIDs []string) ([]string, error) {
	query := `
		UPDATE seats
		SET status = 'SOLD', reserved_until = NULL, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND show_id = $1 AND status IN ('AVAILABLE', 'RESERVED')
		RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, showID, pq.Array(seatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIDs(rows)
}

// RevertSold returns just-sold seats to AVAILABLE when a booking commit
// loses the race on part of its seat set.
func (r *SeatRepository) RevertSold(ctx context.Context, seatIDs []string) error {
	query := `
		UPDATE seats
		SET status = 'AVAILABLE', reserved_until = NULL, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND status = 'SOLD'`

	_, err := r.db.ExecContext(ctx, query, pq.Array(seatIDs))
	return err
}

func scanSeats(rows *sql.Rows) ([]models.Seat, error) {
	var seats []models.Seat
	for rows.Next() {
		var seat models.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.ShowID,
			&seat.Section,
			&seat.Row,
			&seat.Number,
			&seat.Status,
			&seat.Price,
			&seat.ReservedUntil,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

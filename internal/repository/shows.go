package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stagedoor/internal/database"
	"stagedoor/internal/models"
)

type ShowRepository struct {
	db *database.DB
}

func NewShowRepository(db *database.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

func (r *ShowRepository) Create(ctx context.Context, show *models.Show) error {
	query := `
		INSERT INTO shows (title, venue_id, ensemble_id, datetime_start, status, base_price, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		show.Title,
		show.VenueID,
		show.EnsembleID,
		show.DatetimeStart,
		show.Status,
		show.BasePrice,
		show.AvailableSeats,
	).Scan(&show.ID, &show.CreatedAt, &show.UpdatedAt)

	return err
}

func (r *ShowRepository) GetByID(ctx context.Context, id int64) (*models.Show, error) {
	show := &models.Show{}
	query := `
		SELECT id, title, venue_id, ensemble_id, datetime_start, status, base_price, available_seats, created_at, updated_at
		FROM shows
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&show.ID,
		&show.Title,
		&show.VenueID,
		&show.EnsembleID,
		&show.DatetimeStart,
		&show.Status,
		&show.BasePrice,
		&show.AvailableSeats,
		&show.CreatedAt,
		&show.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return show, err
}

func (r *ShowRepository) List(ctx context.Context, date string, page, pageSize int) ([]models.Show, error) {
	var shows []models.Show
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, title, venue_id, ensemble_id, datetime_start, status, base_price, available_seats, created_at, updated_at
		FROM shows
		WHERE status <> 'CANCELLED'`

	if date != "" {
		query += fmt.Sprintf(" AND DATE(datetime_start) = $%d", argIndex)
		args = append(args, date)
		argIndex++
	}

	query += " ORDER BY datetime_start"

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

	for rows.Next() {
		var show models.Show
		err := rows.Scan(
			&show.ID,
			&show.Title,
			&show.VenueID,
			&show.EnsembleID,
			&show.DatetimeStart,
			&show.Status,
			&show.BasePrice,
			&show.AvailableSeats,
			&show.CreatedAt,
			&show.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}

	return shows, rows.Err()
}

// DecrementAvailableSeats updates the denormalized availability counter.
// The counter is advisory display data; per-seat status stays the source of
// truth for availability decisions.
func (r *ShowRepository) DecrementAvailableSeats(ctx context.Context, showID int64, count int) error {
	query := `
		UPDATE shows
		SET available_seats = GREATEST(available_seats - $2, 0), updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, showID, count)
	return err
}

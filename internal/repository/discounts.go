package repository

import (
	"context"
	"database/sql"
	"strings"

	"stagedoor/internal/database"
	"stagedoor/internal/models"
)

type DiscountRepository struct {
	db *database.DB
}

func NewDiscountRepository(db *database.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	discount := &models.DiscountCode{}
	query := `
		SELECT id, code, percent_off, times_used
		FROM discount_codes
		WHERE code = $1`

	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&discount.ID,
		&discount.Code,
		&discount.PercentOff,
		&discount.TimesUsed,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return discount, err
}

// SetTimesUsed writes the usage counter read-modify-write style. Concurrent
// increments can lose updates; the counter is reporting data, not a limit.
func (r *DiscountRepository) SetTimesUsed(ctx context.Context, id int64, timesUsed int) error {
	query := `UPDATE discount_codes SET times_used = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, timesUsed, id)
	return err
}

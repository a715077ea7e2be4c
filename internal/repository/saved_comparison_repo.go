package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

// SavedComparisonRepository provides data access methods for saved_comparisons.
type SavedComparisonRepository struct {
	db *sqlx.DB
}

// NewSavedComparisonRepository creates a new SavedComparisonRepository.
func NewSavedComparisonRepository(db *sqlx.DB) *SavedComparisonRepository {
	return &SavedComparisonRepository{db: db}
}

const savedComparisonColumns = `id, user_id, name, credit_type, amount, duration, best_bank_id,
                                best_rate, savings, total_offers, result, created_at`

// Create stores a saved comparison. ID must be set by the caller.
func (r *SavedComparisonRepository) Create(ctx context.Context, sc *models.SavedComparison) error {
	query := `INSERT INTO saved_comparisons (id, user_id, name, credit_type, amount, duration,
                  best_bank_id, best_rate, savings, total_offers, result)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
              RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		sc.ID,
		sc.UserID,
		sc.Name,
		sc.CreditType,
		sc.Amount,
		sc.Duration,
		sc.BestBankID,
		sc.BestRate,
		sc.Savings,
		sc.TotalOffers,
		string(sc.Result),
	).Scan(&sc.CreatedAt)
}

// ListByUser returns the comparisons of a customer, newest first.
func (r *SavedComparisonRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.SavedComparison, error) {
	query := `SELECT ` + savedComparisonColumns + `
              FROM saved_comparisons
              WHERE user_id = $1
              ORDER BY created_at DESC
              LIMIT $2`

	list := []models.SavedComparison{}
	if err := r.db.SelectContext(ctx, &list, query, userID, limit); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns one comparison owned by userID.
func (r *SavedComparisonRepository) GetByID(ctx context.Context, userID, id string) (*models.SavedComparison, error) {
	query := `SELECT ` + savedComparisonColumns + `
              FROM saved_comparisons
              WHERE id = $1 AND user_id = $2`

	var sc models.SavedComparison
	if err := r.db.GetContext(ctx, &sc, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrComparisonNotFound
		}
		return nil, err
	}
	return &sc, nil
}

// Delete removes one comparison owned by userID.
func (r *SavedComparisonRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_comparisons WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrComparisonNotFound
	}
	return nil
}

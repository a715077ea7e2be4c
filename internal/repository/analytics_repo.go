package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bamboofin/bamboo_portal/internal/models"
)

// AnalyticsRepository provides data access methods for analytics_events.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Create stores an event.
func (r *AnalyticsRepository) Create(ctx context.Context, e *models.AnalyticsEvent) error {
	query := `INSERT INTO analytics_events (name, page, workspace_id, user_id, properties)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id, created_at`

	props := e.Properties
	if len(props) == 0 {
		props = []byte("{}")
	}
	return r.db.QueryRowxContext(ctx, query, e.Name, e.Page, e.WorkspaceID, e.UserID, string(props)).
		Scan(&e.ID, &e.CreatedAt)
}

// CountByName counts events per name since a point in time.
func (r *AnalyticsRepository) CountByName(ctx context.Context, since time.Time) ([]models.EventCount, error) {
	query := `SELECT name, COUNT(*) AS count
              FROM analytics_events
              WHERE created_at >= $1
              GROUP BY name
              ORDER BY count DESC, name`

	var counts []models.EventCount
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, err
	}
	return counts, nil
}

// List returns a page of events, newest first, optionally filtered by name.
func (r *AnalyticsRepository) List(ctx context.Context, name string, limit, offset int) ([]models.AnalyticsEvent, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM analytics_events WHERE ($1 = '' OR name = $1)`, name); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, page, workspace_id, user_id, properties, created_at
              FROM analytics_events
              WHERE ($1 = '' OR name = $1)
              ORDER BY created_at DESC
              LIMIT $2 OFFSET $3`

	var events []models.AnalyticsEvent
	if err := r.db.SelectContext(ctx, &events, query, name, limit, offset); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

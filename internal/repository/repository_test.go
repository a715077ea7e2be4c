package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestAnalyticsRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalyticsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO analytics_events`).
		WithArgs(models.EventSimulationDone, nil, "ws-1", nil, `{"offers_received":3}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	e := &models.AnalyticsEvent{
		Name:        models.EventSimulationDone,
		WorkspaceID: "ws-1",
		Properties:  json.RawMessage(`{"offers_received":3}`),
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, int64(7), e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_CreateDefaultsProperties(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalyticsRepository(db)
	page := "multi_bank_comparator"

	mock.ExpectQuery(`INSERT INTO analytics_events`).
		WithArgs(models.EventPageView, &page, "ws-1", nil, `{}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	require.NoError(t, repo.Create(context.Background(), &models.AnalyticsEvent{
		Name: models.EventPageView, Page: &page, WorkspaceID: "ws-1",
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_CountByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalyticsRepository(db)
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT name, COUNT\(\*\) AS count`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).
			AddRow(models.EventPageView, 12).
			AddRow(models.EventSimulationDone, 4))

	counts, err := repo.CountByName(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, []models.EventCount{
		{Name: models.EventPageView, Count: 12},
		{Name: models.EventSimulationDone, Count: 4},
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalyticsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM analytics_events`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`FROM analytics_events`).
		WithArgs("", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "page", "workspace_id", "user_id", "properties", "created_at"}).
			AddRow(1, models.EventApplicationStarted, nil, "ws-1", "u-1", []byte(`{"bank_id":"bgfi"}`), now))

	events, total, err := repo.List(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, events, 1)
	assert.Equal(t, "u-1", *events[0].UserID)
	assert.JSONEq(t, `{"bank_id":"bgfi"}`, string(events[0].Properties))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func savedRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "credit_type", "amount", "duration",
		"best_bank_id", "best_rate", "savings", "total_offers", "result", "created_at"})
}

func TestSavedComparisonRepository_CreateAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSavedComparisonRepository(db)
	now := time.Now()
	bank := "ugb"
	rate := 7.9

	sc := &models.SavedComparison{
		ID:          "3f1c",
		UserID:      "u-1",
		Name:        "Crédit auto 24 mois",
		CreditType:  "auto",
		Amount:      2_000_000,
		Duration:    24,
		BestBankID:  &bank,
		BestRate:    &rate,
		Savings:     decimal.NewFromInt(60_000),
		TotalOffers: 3,
		Result:      json.RawMessage(`{"offers":[]}`),
	}

	mock.ExpectQuery(`INSERT INTO saved_comparisons`).
		WithArgs("3f1c", "u-1", sc.Name, "auto", int64(2_000_000), 24, &bank, &rate, sc.Savings, 3, `{"offers":[]}`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, repo.Create(context.Background(), sc))
	assert.Equal(t, now, sc.CreatedAt)

	mock.ExpectQuery(`FROM saved_comparisons`).
		WithArgs("3f1c", "u-1").
		WillReturnRows(savedRows().AddRow("3f1c", "u-1", sc.Name, "auto", 2_000_000, 24, "ugb", 7.9, "60000", 3, []byte(`{"offers":[]}`), now))

	got, err := repo.GetByID(context.Background(), "u-1", "3f1c")
	require.NoError(t, err)
	assert.Equal(t, "ugb", *got.BestBankID)
	assert.True(t, decimal.NewFromInt(60_000).Equal(got.Savings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedComparisonRepository_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSavedComparisonRepository(db)

	mock.ExpectQuery(`FROM saved_comparisons`).
		WithArgs("nope", "u-1").
		WillReturnRows(savedRows())
	_, err := repo.GetByID(context.Background(), "u-1", "nope")
	assert.ErrorIs(t, err, utils.ErrComparisonNotFound)

	mock.ExpectExec(`DELETE FROM saved_comparisons`).
		WithArgs("nope", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u-1", "nope"), utils.ErrComparisonNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedComparisonRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSavedComparisonRepository(db)

	mock.ExpectQuery(`FROM saved_comparisons`).
		WithArgs("u-1", 50).
		WillReturnRows(savedRows())

	list, err := repo.ListByUser(context.Background(), "u-1", 50)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

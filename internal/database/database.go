package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	appconfig "github.com/bamboofin/bamboo_portal/internal/config"
)

const (
	maxAttempts = 5
	baseDelay   = 500 * time.Millisecond
)

// DSN builds the PostgreSQL connection string of cfg.
func DSN(cfg *appconfig.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
}

// Connect opens the analytics database, retrying while it boots.
// The returned *sqlx.DB has its pool configured and answered a ping.
func Connect(ctx context.Context, cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil database config")
	}
	dsn := DSN(cfg)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			lastErr = err
		} else {
			setPool(db.DB)
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			lastErr = db.PingContext(pingCtx)
			cancel()
			if lastErr == nil {
				return db, nil
			}
			_ = db.Close()
		}

		if attempt < maxAttempts {
			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, lastErr)
}

func setPool(db *sql.DB) {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// backoff is base * 2^(attempt-1), capped to 5s.
func backoff(attempt int) time.Duration {
	d := baseDelay << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

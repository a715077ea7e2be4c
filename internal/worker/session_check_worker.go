package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/session"
)

// SessionValidator re-checks stored sessions against the backend.
type SessionValidator interface {
	RevalidateAll(ctx context.Context) (session.Revalidation, error)
}

// SessionCheckWorker periodically drops sessions the backend no longer accepts.
type SessionCheckWorker struct {
	sessions SessionValidator
	interval time.Duration
}

// NewSessionCheckWorker constructs a SessionCheckWorker.
func NewSessionCheckWorker(sessions SessionValidator, interval time.Duration) *SessionCheckWorker {
	return &SessionCheckWorker{
		sessions: sessions,
		interval: interval,
	}
}

// Start runs the check loop until ctx is cancelled. The first check waits
// one interval since sessions were just opened or restored.
func (w *SessionCheckWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting session check worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Session check worker stopped")
			return
		}
	}
}

func (w *SessionCheckWorker) run(ctx context.Context) {
	res, err := w.sessions.RevalidateAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Session check failed")
		return
	}
	if res.Dropped > 0 {
		log.Info().Int("checked", res.Checked).Int("dropped", res.Dropped).Msg("Expired sessions dropped")
		return
	}
	log.Debug().Int("checked", res.Checked).Msg("Sessions checked")
}

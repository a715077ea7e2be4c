package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired workspaces as of now.
type Sweeper interface {
	Sweep(now time.Time) int
}

// WorkspaceSweepWorker periodically removes idle comparison workspaces.
type WorkspaceSweepWorker struct {
	registry Sweeper
	interval time.Duration
	now      func() time.Time
}

// NewWorkspaceSweepWorker constructs a WorkspaceSweepWorker.
func NewWorkspaceSweepWorker(registry Sweeper, interval time.Duration) *WorkspaceSweepWorker {
	return &WorkspaceSweepWorker{
		registry: registry,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *WorkspaceSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting workspace sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Workspace sweep worker stopped")
			return
		}
	}
}

func (w *WorkspaceSweepWorker) run() {
	if n := w.registry.Sweep(w.now()); n > 0 {
		log.Info().Int("dropped", n).Msg("Idle workspaces dropped")
	}
}

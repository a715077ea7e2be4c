package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// BankRefresher reloads the bank catalog and returns the number of banks.
type BankRefresher interface {
	RefreshBanks(ctx context.Context) (int, error)
}

// BankSyncWorker periodically reloads the bank catalog from the Bamboo API.
type BankSyncWorker struct {
	banks    BankRefresher
	interval time.Duration
}

// NewBankSyncWorker constructs a BankSyncWorker.
func NewBankSyncWorker(banks BankRefresher, interval time.Duration) *BankSyncWorker {
	return &BankSyncWorker{
		banks:    banks,
		interval: interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *BankSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting bank sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Bank sync worker stopped")
			return
		}
	}
}

func (w *BankSyncWorker) run(ctx context.Context) {
	start := time.Now()
	n, err := w.banks.RefreshBanks(ctx)
	if err != nil {
		// The previous catalog stays in use.
		log.Error().Err(err).Msg("Failed to sync bank catalog")
		return
	}

	log.Info().Int("banks", n).Dur("duration", time.Since(start)).Msg("Bank catalog sync completed")
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

const bankCatalogKey = "banks:catalog"

// BankSource is the upstream bank listing.
type BankSource interface {
	GetBanks(ctx context.Context) ([]bamboo.Bank, error)
}

// BankCache keeps the bank catalog in Redis.
type BankCache struct {
	redis  *RedisClient
	source BankSource
	ttl    time.Duration
}

// NewBankCache creates a BankCache. Entries live for ttl.
func NewBankCache(redis *RedisClient, source BankSource, ttl time.Duration) *BankCache {
	return &BankCache{redis: redis, source: source, ttl: ttl}
}

// Banks returns the cached catalog, loading it from the source on a miss.
func (c *BankCache) Banks(ctx context.Context) ([]bamboo.Bank, error) {
	data, err := c.redis.Get(ctx, bankCatalogKey)
	switch {
	case err == nil:
		var banks []bamboo.Bank
		if err := json.Unmarshal([]byte(data), &banks); err == nil {
			return banks, nil
		}
		log.Warn().Msg("Discarding unreadable bank catalog cache")
	case !errors.Is(err, ErrMiss):
		log.Warn().Err(err).Msg("Bank catalog cache unavailable")
	}
	return c.Refresh(ctx)
}

// Refresh loads the catalog from the source and stores it.
func (c *BankCache) Refresh(ctx context.Context) ([]bamboo.Bank, error) {
	banks, err := c.source.GetBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load banks: %w", err)
	}

	data, err := json.Marshal(banks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal banks: %w", err)
	}
	if err := c.redis.Set(ctx, bankCatalogKey, string(data), c.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache bank catalog")
	}
	return banks, nil
}

// BankIDs returns the bank ids in catalog order.
func BankIDs(banks []bamboo.Bank) []string {
	ids := make([]string, 0, len(banks))
	for _, b := range banks {
		ids = append(ids, b.ID)
	}
	return ids
}

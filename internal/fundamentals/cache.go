package fundamentals

import (
	"context"
	"time"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
	"github.com/octantlabs/octant/pkg/redis"
)

// CachedProvider wraps a provider with a Redis read-through cache.
// Fundamentals move on reporting cadence, so a day-long TTL loses nothing.
// Cache failures degrade to direct fetches.
type CachedProvider struct {
	inner  contracts.FundamentalsProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

var _ contracts.FundamentalsProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with a cache. A zero ttl falls back to the
// daily default.
func NewCachedProvider(inner contracts.FundamentalsProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Fetch returns the cached record when present, otherwise fetches from the
// inner provider and populates the cache. Fetch failures are never cached.
func (p *CachedProvider) Fetch(ctx context.Context, ticker string) (*contracts.FundamentalsRecord, error) {
	key := redis.FundamentalsKey(ticker)

	var cached contracts.FundamentalsRecord
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Cache read failed")
	}
	if hit {
		return &cached, nil
	}

	rec, err := p.inner.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, rec, p.ttl); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Cache write failed")
	}

	return rec, nil
}

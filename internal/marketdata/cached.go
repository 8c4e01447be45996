package marketdata

import (
	"context"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
	"github.com/wonny/stocktracker/pkg/redis"
)

// Cache is the subset of *redis.Cache used by CachedPort
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedPort caches daily windows and positive symbol validations.
// Intraday bars always go to the vendor. Cache failures degrade to a miss.
type CachedPort struct {
	next   contracts.MarketDataPort
	cache  Cache
	vendor string
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedPort wraps next; ttl <= 0 uses redis.TTLShort
func NewCachedPort(next contracts.MarketDataPort, cache Cache, vendor string, ttl time.Duration, log *logger.Logger) *CachedPort {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &CachedPort{
		next:   next,
		cache:  cache,
		vendor: vendor,
		ttl:    ttl,
		logger: log.WithComponent("marketdata_cache"),
	}
}

// FetchDaily implements contracts.MarketDataPort
func (p *CachedPort) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (contracts.Series, error) {
	key := redis.DailyBarsKey(p.vendor, symbol, start, end)

	var cached contracts.Series
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithSymbol(symbol).WithError(err).Warn("Daily cache read failed")
	}
	if hit {
		return cached, nil
	}

	s, err := p.next.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return s, err
	}

	if s.Len() > 0 {
		if err := p.cache.Set(ctx, key, s, p.ttl); err != nil {
			p.logger.WithSymbol(symbol).WithError(err).Warn("Daily cache write failed")
		}
	}
	return s, nil
}

// FetchIntraday implements contracts.MarketDataPort without caching
func (p *CachedPort) FetchIntraday(ctx context.Context, symbol string, start, end time.Time, includePrePost bool) (contracts.Series, error) {
	return p.next.FetchIntraday(ctx, symbol, start, end, includePrePost)
}

// ValidateSymbol implements contracts.MarketDataPort; only "valid" answers are cached
func (p *CachedPort) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	key := redis.SymbolKey(p.vendor, symbol)

	var valid bool
	if hit, err := p.cache.Get(ctx, key, &valid); err == nil && hit && valid {
		return true, nil
	}

	ok, err := p.next.ValidateSymbol(ctx, symbol)
	if err != nil || !ok {
		return ok, err
	}

	if err := p.cache.Set(ctx, key, true, redis.TTLMedium); err != nil {
		p.logger.WithSymbol(symbol).WithError(err).Warn("Symbol cache write failed")
	}
	return true, nil
}

package currency

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/domain"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

const (
	redisRatesKey     = "rates:try_per_unit"
	redisFetchedAtKey = "rates:fetched_at"

	refreshTimeout = 15 * time.Second
)

// Conversion is the result of a currency conversion. Stale marks amounts
// computed from a rate snapshot older than the cache TTL.
type Conversion struct {
	Amount decimal.Decimal
	Stale  bool
}

// RateSource supplies a fresh TRY-per-unit rate snapshot.
type RateSource interface {
	Fetch(ctx context.Context) (map[domain.Currency]decimal.Decimal, error)
}

// Converter normalizes amounts between supported currencies using a cached
// rate snapshot. The snapshot is held in memory and mirrored to Redis so
// restarts and sibling processes share the last known rates. Conversions
// never wait on the network: an expired snapshot is still used (flagged
// stale) while a background refresh runs.
type Converter struct {
	source RateSource
	redis  *redis.Client // optional shared cache, may be nil
	ttl    time.Duration

	mu        sync.RWMutex
	perBase   map[domain.Currency]decimal.Decimal
	fetchedAt time.Time

	refreshing int32
}

func NewConverter(source RateSource, redisClient *redis.Client, ttl time.Duration) *Converter {
	return &Converter{
		source: source,
		redis:  redisClient,
		ttl:    ttl,
	}
}

// Convert converts a positive amount between currencies, rounding the result
// to 2 decimal places half-up. Identity conversions return the amount
// untouched. When no rate snapshot has ever been obtained the call fails
// with RATE_UNAVAILABLE; an expired snapshot is used instead, with the
// result flagged stale and a non-blocking refresh triggered.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (Conversion, error) {
	if from == to {
		return Conversion{Amount: amount}, nil
	}

	rates, fetchedAt, ok := c.snapshot(ctx)
	if !ok {
		c.triggerRefresh()
		return Conversion{}, customError.WrapRateUnavailable(string(from), string(to))
	}

	fromRate, okFrom := rates[from]
	toRate, okTo := rates[to]
	if !okFrom || !okTo || toRate.IsZero() {
		return Conversion{}, customError.WrapRateUnavailable(string(from), string(to))
	}

	// Decimal Round is half away from zero, which is half-up for the
	// positive amounts handled here.
	converted := amount.Mul(fromRate.Div(toRate)).Round(2)

	stale := time.Since(fetchedAt) > c.ttl
	if stale {
		c.triggerRefresh()
	}

	return Conversion{Amount: converted, Stale: stale}, nil
}

// Refresh fetches a fresh snapshot from the rate source and stores it in
// memory and, when configured, in Redis. Safe for concurrent use.
func (c *Converter) Refresh(ctx context.Context) error {
	rates, err := c.source.Fetch(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	c.mu.Lock()
	c.perBase = rates
	c.fetchedAt = now
	c.mu.Unlock()

	if c.redis != nil {
		fields := make(map[string]interface{}, len(rates))
		for code, rate := range rates {
			fields[string(code)] = rate.String()
		}

		// Entries are written without expiry: staleness is judged against
		// the fetched_at marker so the last known rates survive the TTL.
		if err := c.redis.HSet(ctx, redisRatesKey, fields).Err(); err != nil {
			return customError.WrapCacheError(err)
		}
		if err := c.redis.Set(ctx, redisFetchedAtKey, now.Format(time.RFC3339Nano), 0).Err(); err != nil {
			return customError.WrapCacheError(err)
		}
	}

	return nil
}

// snapshot returns the in-memory rate table, falling back to the Redis
// mirror when this process has never fetched.
func (c *Converter) snapshot(ctx context.Context) (map[domain.Currency]decimal.Decimal, time.Time, bool) {
	c.mu.RLock()
	rates, fetchedAt := c.perBase, c.fetchedAt
	c.mu.RUnlock()

	if rates != nil {
		return rates, fetchedAt, true
	}

	if c.redis == nil {
		return nil, time.Time{}, false
	}

	stored, err := c.redis.HGetAll(ctx, redisRatesKey).Result()
	if err != nil || len(stored) == 0 {
		return nil, time.Time{}, false
	}

	rates = make(map[domain.Currency]decimal.Decimal, len(stored))
	for code, raw := range stored {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, time.Time{}, false
		}
		rates[domain.Currency(code)] = rate
	}

	if raw, err := c.redis.Get(ctx, redisFetchedAtKey).Result(); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			fetchedAt = t
		}
	}

	c.mu.Lock()
	c.perBase = rates
	c.fetchedAt = fetchedAt
	c.mu.Unlock()

	return rates, fetchedAt, true
}

// triggerRefresh starts at most one background refresh at a time.
func (c *Converter) triggerRefresh() {
	if !atomic.CompareAndSwapInt32(&c.refreshing, 0, 1) {
		return
	}

	go func() {
		defer atomic.StoreInt32(&c.refreshing, 0)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := c.Refresh(ctx); err != nil {
			log.Printf("background rate refresh failed: %v", err)
		}
	}()
}

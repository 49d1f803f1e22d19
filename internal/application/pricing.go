// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// DefaultPriceTTL is how long a fetched price stays valid in the resolver's
// cache.
const DefaultPriceTTL = 5 * time.Minute

// priceCacheEntry is one cached price, evicted by TTL comparison on lookup.
type priceCacheEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// PriceResolver resolves unit prices for symbols in a target currency,
// caching each (symbol, currency) pair for the configured TTL. A failed
// upstream fetch degrades to nil prices; this layer never retries and never
// returns an error to callers.
type PriceResolver struct {
	feed driven.PriceFeed
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	cache map[string]priceCacheEntry
}

// NewPriceResolver creates a resolver with the given cache TTL.
func NewPriceResolver(feed driven.PriceFeed, ttl time.Duration) *PriceResolver {
	return NewPriceResolverWithClock(feed, ttl, time.Now)
}

// NewPriceResolverWithClock creates a resolver with an injected clock,
// letting tests control TTL expiry.
func NewPriceResolverWithClock(feed driven.PriceFeed, ttl time.Duration, now func() time.Time) *PriceResolver {
	return &PriceResolver{
		feed:  feed,
		ttl:   ttl,
		now:   now,
		cache: make(map[string]priceCacheEntry),
	}
}

// Price resolves one symbol's unit price, or nil when it is unavailable.
func (r *PriceResolver) Price(ctx context.Context, symbol, currency string) *decimal.Decimal {
	prices := r.Prices(ctx, []string{symbol}, currency)
	return prices[strings.ToUpper(symbol)]
}

// Prices resolves unit prices for all symbols in one batched upstream call.
// Cache hits are served without a network round trip. On total upstream
// failure every uncached symbol resolves to nil; on partial data the missing
// symbols resolve to nil individually while the successes are still cached.
func (r *PriceResolver) Prices(ctx context.Context, symbols []string, currency string) map[string]*decimal.Decimal {
	results := make(map[string]*decimal.Decimal, len(symbols))

	var misses []string
	r.mu.RLock()
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		if entry, ok := r.cache[cacheKey(symbol, currency)]; ok && r.now().Sub(entry.fetchedAt) < r.ttl {
			price := entry.price
			results[symbol] = &price
			continue
		}
		misses = append(misses, symbol)
	}
	r.mu.RUnlock()

	if len(misses) == 0 {
		return results
	}

	fetched, err := r.feed.FetchPrices(ctx, misses, currency)
	if err != nil {
		for _, symbol := range misses {
			results[symbol] = nil
		}
		return results
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fetchedAt := r.now()
	for _, symbol := range misses {
		price, ok := fetched[symbol]
		if !ok {
			results[symbol] = nil
			continue
		}
		r.cache[cacheKey(symbol, currency)] = priceCacheEntry{price: price, fetchedAt: fetchedAt}
		p := price
		results[symbol] = &p
	}

	return results
}

func cacheKey(symbol, currency string) string {
	return fmt.Sprintf("%s:%s", symbol, strings.ToLower(currency))
}

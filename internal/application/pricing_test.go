package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/coinpanel/internal/application"
)

func TestPriceResolver_CachesWithinTTL(t *testing.T) {
	feed := &mockPriceFeed{prices: map[string]map[string]decimal.Decimal{
		"usd": {"BTC": d("68000")},
	}}

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	resolver := application.NewPriceResolverWithClock(feed, 5*time.Minute, func() time.Time { return now })

	ctx := context.Background()

	first := resolver.Price(ctx, "BTC", "usd")
	require.NotNil(t, first)
	assert.Equal(t, "68000", first.String())
	assert.Equal(t, 1, feed.callCount())

	// Within the TTL the cache answers without another upstream call.
	now = now.Add(4 * time.Minute)
	second := resolver.Price(ctx, "btc", "usd")
	require.NotNil(t, second)
	assert.Equal(t, "68000", second.String())
	assert.Equal(t, 1, feed.callCount())
}

func TestPriceResolver_ExpiresAfterTTL(t *testing.T) {
	feed := &mockPriceFeed{prices: map[string]map[string]decimal.Decimal{
		"usd": {"BTC": d("68000")},
	}}

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	resolver := application.NewPriceResolverWithClock(feed, 5*time.Minute, func() time.Time { return now })

	ctx := context.Background()

	require.NotNil(t, resolver.Price(ctx, "BTC", "usd"))
	assert.Equal(t, 1, feed.callCount())

	now = now.Add(5 * time.Minute)
	require.NotNil(t, resolver.Price(ctx, "BTC", "usd"))
	assert.Equal(t, 2, feed.callCount(), "expired entry must be refetched")
}

func TestPriceResolver_CurrenciesAreCachedSeparately(t *testing.T) {
	feed := &mockPriceFeed{prices: map[string]map[string]decimal.Decimal{
		"usd": {"BTC": d("68000")},
		"twd": {"BTC": d("2100000")},
	}}

	resolver := application.NewPriceResolver(feed, 5*time.Minute)
	ctx := context.Background()

	usd := resolver.Price(ctx, "BTC", "usd")
	twd := resolver.Price(ctx, "BTC", "twd")
	require.NotNil(t, usd)
	require.NotNil(t, twd)
	assert.Equal(t, "68000", usd.String())
	assert.Equal(t, "2100000", twd.String())
	assert.Equal(t, 2, feed.callCount())
}

func TestPriceResolver_TotalFailureResolvesNil(t *testing.T) {
	feed := &mockPriceFeed{err: errors.New("upstream down")}

	resolver := application.NewPriceResolver(feed, 5*time.Minute)

	prices := resolver.Prices(context.Background(), []string{"BTC", "ETH"}, "usd")
	require.Len(t, prices, 2)
	assert.Nil(t, prices["BTC"])
	assert.Nil(t, prices["ETH"])

	// Failures are not cached; the next call tries upstream again.
	resolver.Prices(context.Background(), []string{"BTC"}, "usd")
	assert.Equal(t, 2, feed.callCount())
}

func TestPriceResolver_PartialDataCachesSuccesses(t *testing.T) {
	feed := &mockPriceFeed{prices: map[string]map[string]decimal.Decimal{
		"usd": {"BTC": d("68000")},
	}}

	resolver := application.NewPriceResolver(feed, 5*time.Minute)
	ctx := context.Background()

	prices := resolver.Prices(ctx, []string{"BTC", "OBSCURE"}, "usd")
	require.NotNil(t, prices["BTC"])
	assert.Nil(t, prices["OBSCURE"], "unknown symbols resolve to nil individually")

	// BTC was cached even though OBSCURE failed.
	again := resolver.Prices(ctx, []string{"BTC"}, "usd")
	require.NotNil(t, again["BTC"])
	assert.Equal(t, 1, feed.callCount())
}

func TestPriceResolver_BatchMixesCacheHitsAndMisses(t *testing.T) {
	feed := &mockPriceFeed{prices: map[string]map[string]decimal.Decimal{
		"usd": {"BTC": d("68000"), "ETH": d("3200")},
	}}

	resolver := application.NewPriceResolver(feed, 5*time.Minute)
	ctx := context.Background()

	require.NotNil(t, resolver.Price(ctx, "BTC", "usd"))

	prices := resolver.Prices(ctx, []string{"BTC", "ETH"}, "usd")
	require.NotNil(t, prices["BTC"])
	require.NotNil(t, prices["ETH"])
	assert.Equal(t, 2, feed.callCount(), "only the miss goes upstream")
}

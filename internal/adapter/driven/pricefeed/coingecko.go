// Package pricefeed implements the PriceFeed port on the CoinGecko simple
// price endpoint.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PriceFeed = (*CoinGecko)(nil)

const coingeckoBaseURL = "https://api.coingecko.com"

// CoinGecko fetches batch prices from the free simple/price endpoint.
// Symbols are mapped to CoinGecko ids by lowercasing. No retries here: a
// failed price fetch degrades valuation upstream, it never fails a sync.
type CoinGecko struct {
	httpClient *http.Client
	baseURL    string
}

// NewCoinGecko creates a client against the production endpoint.
func NewCoinGecko() *CoinGecko {
	return &CoinGecko{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    coingeckoBaseURL,
	}
}

// NewCoinGeckoWithHTTPClient creates a client against a custom base URL.
// This constructor is intended for testing with an httptest server.
func NewCoinGeckoWithHTTPClient(httpClient *http.Client, baseURL string) *CoinGecko {
	return &CoinGecko{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchPrices issues one batched request for all symbols in the target
// currency. The returned map is keyed by the original (uppercase) symbols;
// symbols the provider does not know are simply absent.
func (c *CoinGecko) FetchPrices(ctx context.Context, symbols []string, currency string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ids := make([]string, len(symbols))
	for i, s := range symbols {
		ids[i] = strings.ToLower(s)
	}
	currency = strings.ToLower(currency)

	requestURL := fmt.Sprintf(
		"%s/api/v3/simple/price?ids=%s&vs_currencies=%s&include_market_cap=false&include_24hr_vol=false",
		c.baseURL, url.QueryEscape(strings.Join(ids, ",")), url.QueryEscape(currency),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("price feed HTTP %d: %s", resp.StatusCode, string(body))
	}

	// Response shape: {"btc": {"usd": 12345.67}, ...}. Decode into
	// json.Number so prices survive as exact decimals.
	var payload map[string]map[string]json.Number
	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(symbols))
	for i, symbol := range symbols {
		entry, ok := payload[ids[i]]
		if !ok {
			continue
		}
		raw, ok := entry[currency]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(raw.String())
		if err != nil {
			continue
		}
		prices[strings.ToUpper(symbol)] = price
	}

	return prices, nil
}

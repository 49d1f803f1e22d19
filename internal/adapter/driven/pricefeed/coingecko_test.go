package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGecko_FetchPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "btc,eth,nope", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		fmt.Fprint(w, `{"btc": {"usd": 68123.45}, "eth": {"usd": 3201.1}}`)
	}))
	defer server.Close()

	client := NewCoinGeckoWithHTTPClient(server.Client(), server.URL)

	prices, err := client.FetchPrices(context.Background(), []string{"BTC", "ETH", "NOPE"}, "USD")
	require.NoError(t, err)
	require.Len(t, prices, 2, "unknown symbols must be absent, not zero")

	assert.Equal(t, "68123.45", prices["BTC"].String())
	assert.Equal(t, "3201.1", prices["ETH"].String())
	_, ok := prices["NOPE"]
	assert.False(t, ok)
}

func TestCoinGecko_FetchPrices_ExactDecimals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A value that loses precision through float64.
		fmt.Fprint(w, `{"trx": {"usd": 0.12345678901234567890123}}`)
	}))
	defer server.Close()

	client := NewCoinGeckoWithHTTPClient(server.Client(), server.URL)

	prices, err := client.FetchPrices(context.Background(), []string{"TRX"}, "usd")
	require.NoError(t, err)
	assert.Equal(t, "0.12345678901234567890123", prices["TRX"].String())
}

func TestCoinGecko_FetchPrices_Empty(t *testing.T) {
	client := NewCoinGecko()

	prices, err := client.FetchPrices(context.Background(), nil, "usd")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCoinGecko_FetchPrices_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"status":{"error_code":429}}`)
	}))
	defer server.Close()

	client := NewCoinGeckoWithHTTPClient(server.Client(), server.URL)

	_, err := client.FetchPrices(context.Background(), []string{"BTC"}, "usd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

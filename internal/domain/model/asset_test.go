package model_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

func TestNewNormalizedAsset(t *testing.T) {
	asset := model.NewNormalizedAsset("btc", decimal.RequireFromString("1.5"), decimal.RequireFromString("0.25"), "binance")

	assert.Equal(t, "BTC", asset.Symbol, "symbol is uppercased")
	assert.Equal(t, "1.75", asset.Total.String(), "total is always free plus locked")
	assert.Equal(t, "binance", asset.Source)
	assert.False(t, asset.IsZero())

	zero := model.NewNormalizedAsset("ETH", decimal.Zero, decimal.Zero, "binance")
	assert.True(t, zero.IsZero())
}

func TestNormalizedAsset_JSONRoundTrip(t *testing.T) {
	original := model.NewNormalizedAsset("TRX", decimal.RequireFromString("123456789.123456789012345678"), decimal.Zero, "tron")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored model.NormalizedAsset
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.Free.String(), restored.Free.String())
	assert.Equal(t, original.Total.String(), restored.Total.String())
	assert.Equal(t, original.Symbol, restored.Symbol)
}

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "binance:BTC", model.SourceKey("binance", "btc"))
	assert.Equal(t, "ethereum:ETH", model.SourceKey("ethereum", "ETH"))
}

func TestAmountFromRaw(t *testing.T) {
	amount, err := model.AmountFromRaw("2500000000000000000", 18)
	require.NoError(t, err)
	assert.Equal(t, "2.5", amount.String())

	amount, err = model.AmountFromRaw("1500000", 6)
	require.NoError(t, err)
	assert.Equal(t, "1.5", amount.String())

	amount, err = model.AmountFromRaw("42", 0)
	require.NoError(t, err)
	assert.Equal(t, "42", amount.String())

	_, err = model.AmountFromRaw("not-a-number", 18)
	assert.Error(t, err)
}

func TestNormalizeEnums(t *testing.T) {
	assert.Equal(t, model.ExchangeBinance, model.NormalizeExchange("  Binance "))
	assert.Equal(t, model.NetworkTron, model.NormalizeNetwork("TRON"))
}

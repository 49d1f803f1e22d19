package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeBalance is a chain's native coin balance for one address. Balance is
// the raw integer string as returned by the explorer (wei for EVM chains).
type NativeBalance struct {
	Symbol   string
	Name     string
	Balance  string
	Decimals int32
}

// TokenBalance is one token holding discovered for an address. Balance is the
// raw integer string, not yet divided by decimals.
type TokenBalance struct {
	Symbol          string
	Name            string
	Balance         string
	Decimals        int32
	ContractAddress string
}

// WalletScan is the combined result of scanning one address on one network.
// Native is nil when the scanner ran in degraded mode (no explorer API key).
type WalletScan struct {
	Native *NativeBalance
	Tokens []TokenBalance
}

// AmountFromRaw converts a raw integer balance string into a decimal amount
// by shifting it down by the token's decimals.
func AmountFromRaw(raw string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse raw balance %q: %w", raw, err)
	}
	return d.Shift(-decimals), nil
}

// Package model contains the domain types shared across ports and adapters.
package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizedAsset is a balance expressed in the common schema regardless of
// which API shape it came from. Total is always Free + Locked.
type NormalizedAsset struct {
	Symbol string          `json:"symbol"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
	Total  decimal.Decimal `json:"total"`
	Source string          `json:"source"`
}

// NewNormalizedAsset builds a NormalizedAsset with an uppercased symbol and
// Total computed from Free + Locked.
func NewNormalizedAsset(symbol string, free, locked decimal.Decimal, source string) NormalizedAsset {
	return NormalizedAsset{
		Symbol: strings.ToUpper(symbol),
		Free:   free,
		Locked: locked,
		Total:  free.Add(locked),
		Source: source,
	}
}

// IsZero reports whether the asset's total balance is zero. Zero-total assets
// are excluded from adapter output and snapshot content.
func (a NormalizedAsset) IsZero() bool {
	return a.Total.IsZero()
}

// SourceKey builds the snapshot map key for an asset: "<sourceID>:<SYMBOL>".
// The source prefix keeps the same symbol from different sources from colliding.
func SourceKey(sourceID, symbol string) string {
	return fmt.Sprintf("%s:%s", sourceID, strings.ToUpper(symbol))
}

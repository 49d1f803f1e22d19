package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetSnapshot is an immutable point-in-time aggregate of a user's balances
// across all sources, plus the computed valuation. Snapshots are append-only;
// history is ordered by creation time.
type AssetSnapshot struct {
	ID            int64
	UserID        int64
	TotalValueUSD decimal.Decimal
	TotalValueTWD decimal.Decimal
	// Assets maps "<sourceID>:<SYMBOL>" to the normalized balance that was
	// observed for that source at snapshot time.
	Assets    map[string]NormalizedAsset
	Source    SnapshotSource
	CreatedAt time.Time
}

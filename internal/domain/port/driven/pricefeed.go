package driven

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceFeed defines the driven port for the upstream price API. One call
// covers a whole batch of symbols; the returned map may omit symbols the
// provider does not know. Caching and degradation to nil prices happen above
// this port, in the application-level resolver.
type PriceFeed interface {
	FetchPrices(ctx context.Context, symbols []string, currency string) (map[string]decimal.Decimal, error)
}

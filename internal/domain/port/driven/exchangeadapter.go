package driven

import (
	"context"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// ExchangeAdapter defines the driven port for one exchange's read-only
// balance API. Implementations own the exchange-specific request signing and
// never retry: retry policy belongs to the orchestrator layer.
type ExchangeAdapter interface {
	Name() model.Exchange
	// GetAssets fetches all non-zero balances for the account identified by
	// the given key material. passphrase is empty for exchanges that do not
	// use one.
	GetAssets(ctx context.Context, apiKey, apiSecret, passphrase string) ([]model.NormalizedAsset, error)
	// ValidateCredentials reuses the same signed request as GetAssets and
	// reports success purely on HTTP status, never parsing the body.
	ValidateCredentials(ctx context.Context, apiKey, apiSecret, passphrase string) bool
}

package driven

import (
	"context"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// ChainScanner defines the driven port for explorer-style balance lookups on
// public chain addresses. A missing provider API key is a degraded mode:
// implementations return nil/empty rather than an error.
type ChainScanner interface {
	// NativeBalance returns the chain's native coin balance, or nil in
	// degraded mode.
	NativeBalance(ctx context.Context, network model.Network, address string) (*model.NativeBalance, error)
	// TokenBalances discovers the tokens an address has ever touched and
	// returns their current non-zero balances.
	TokenBalances(ctx context.Context, network model.Network, address string) ([]model.TokenBalance, error)
	// ScanWallet combines NativeBalance and TokenBalances for one address.
	ScanWallet(ctx context.Context, network model.Network, address string) (*model.WalletScan, error)
	// SupportsNetwork reports whether the network is in the scanner's
	// registry. The link layer uses it to reject unknown networks early.
	SupportsNetwork(network model.Network) bool
}

package model

import "strings"

// Exchange identifies a supported centralized exchange.
type Exchange string

const (
	ExchangeBinance Exchange = "binance"
	ExchangeOKX     Exchange = "okx"
)

// Network identifies a blockchain network watched by the chain scanner.
type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkBSC      Network = "bsc"
	NetworkPolygon  Network = "polygon"
	NetworkArbitrum Network = "arbitrum"
	NetworkOptimism Network = "optimism"
	NetworkTron     Network = "tron"
)

// NormalizeExchange lowercases user input into an Exchange value.
// It does not validate membership; the adapter registry is the boundary
// that rejects unknown kinds.
func NormalizeExchange(s string) Exchange {
	return Exchange(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeNetwork lowercases user input into a Network value.
func NormalizeNetwork(s string) Network {
	return Network(strings.ToLower(strings.TrimSpace(s)))
}

// SnapshotSource records what triggered a snapshot.
type SnapshotSource string

const (
	SnapshotSourceAutoSync SnapshotSource = "auto_sync"
	SnapshotSourceManual   SnapshotSource = "manual"
)

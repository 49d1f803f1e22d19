package explorer

import "github.com/ericfisherdev/coinpanel/internal/domain/model"

// NetworkConfig describes one network's explorer endpoint and native coin.
// Every EVM-compatible entry speaks the etherscan module/action convention;
// TRON is the lone divergent API and is special-cased in the scanner.
type NetworkConfig struct {
	APIURL         string
	NativeSymbol   string
	NativeDecimals int32
}

// defaultNetworks is the production network registry.
var defaultNetworks = map[model.Network]NetworkConfig{
	model.NetworkEthereum: {
		APIURL:         "https://api.etherscan.io/api",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	},
	model.NetworkBSC: {
		APIURL:         "https://api.bscscan.com/api",
		NativeSymbol:   "BNB",
		NativeDecimals: 18,
	},
	model.NetworkPolygon: {
		APIURL:         "https://api.polygonscan.com/api",
		NativeSymbol:   "MATIC",
		NativeDecimals: 18,
	},
	model.NetworkArbitrum: {
		APIURL:         "https://api.arbiscan.io/api",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	},
	model.NetworkOptimism: {
		APIURL:         "https://api-optimistic.etherscan.io/api",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	},
	model.NetworkTron: {
		APIURL:         "https://api.tronscan.org/api",
		NativeSymbol:   "TRX",
		NativeDecimals: 6,
	},
}

// DefaultNetworks returns a copy of the production network registry.
func DefaultNetworks() map[model.Network]NetworkConfig {
	networks := make(map[model.Network]NetworkConfig, len(defaultNetworks))
	for k, v := range defaultNetworks {
		networks[k] = v
	}
	return networks
}

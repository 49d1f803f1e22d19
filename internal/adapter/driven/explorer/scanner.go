// Package explorer implements the ChainScanner port on block-explorer APIs:
// the etherscan module/action convention for EVM-compatible networks, plus
// the divergent TRON listing API.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ChainScanner = (*Scanner)(nil)

// Scanner implements the ChainScanner port. An empty API key puts the
// etherscan-family networks into degraded mode: native lookups return nil and
// token lookups return empty, without an error.
type Scanner struct {
	httpClient *http.Client
	apiKey     string
	networks   map[model.Network]NetworkConfig
	retryDelay time.Duration
}

// NewScanner creates a Scanner over the production network registry.
// apiKey is the etherscan-family API key; it may be empty. A non-positive
// retryDelay falls back to the default.
func NewScanner(apiKey string, retryDelay time.Duration) *Scanner {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &Scanner{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		apiKey:     apiKey,
		networks:   DefaultNetworks(),
		retryDelay: retryDelay,
	}
}

// NewScannerWithConfig creates a Scanner with a custom HTTP client, network
// registry, and retry delay. This constructor is intended for testing with
// httptest servers.
func NewScannerWithConfig(httpClient *http.Client, apiKey string, networks map[model.Network]NetworkConfig, retryDelay time.Duration) *Scanner {
	return &Scanner{
		httpClient: httpClient,
		apiKey:     apiKey,
		networks:   networks,
		retryDelay: retryDelay,
	}
}

// SupportsNetwork reports whether the network is in the registry.
func (s *Scanner) SupportsNetwork(network model.Network) bool {
	_, ok := s.networks[network]
	return ok
}

// config resolves the network entry or fails with UnsupportedNetworkError.
func (s *Scanner) config(network model.Network) (NetworkConfig, error) {
	cfg, ok := s.networks[network]
	if !ok {
		return NetworkConfig{}, &model.UnsupportedNetworkError{Network: network}
	}
	return cfg, nil
}

// NativeBalance fetches the native coin balance for the address. Returns nil
// without an error in degraded mode.
func (s *Scanner) NativeBalance(ctx context.Context, network model.Network, address string) (*model.NativeBalance, error) {
	cfg, err := s.config(network)
	if err != nil {
		return nil, err
	}

	if s.apiKey == "" {
		slog.Warn("explorer api key not configured, skipping native balance", "network", network)
		return nil, nil
	}

	url := fmt.Sprintf("%s?module=account&action=balance&address=%s&tag=latest&apikey=%s",
		cfg.APIURL, address, s.apiKey)

	envelope, err := fetchEtherscan(ctx, s.httpClient, s.retryDelay, url)
	if err != nil {
		return nil, fmt.Errorf("native balance for %s on %s: %w", address, network, err)
	}

	var balance string
	if err := json.Unmarshal(envelope.Result, &balance); err != nil {
		return nil, fmt.Errorf("decode native balance result: %w", err)
	}

	return &model.NativeBalance{
		Symbol:   cfg.NativeSymbol,
		Name:     cfg.NativeSymbol,
		Balance:  balance,
		Decimals: cfg.NativeDecimals,
	}, nil
}

// tokenTransfer is one row of the tokentx history listing.
type tokenTransfer struct {
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenName       string `json:"tokenName"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// TokenBalances discovers the distinct token contracts the address has ever
// touched via the transfer history endpoint, then queries each contract's
// current balance. Zero balances are dropped; a failed balance query only
// skips that token.
func (s *Scanner) TokenBalances(ctx context.Context, network model.Network, address string) ([]model.TokenBalance, error) {
	cfg, err := s.config(network)
	if err != nil {
		return nil, err
	}

	// TRON exposes one balance-listing endpoint instead of the
	// history-then-balance convention.
	if network == model.NetworkTron {
		return s.tronTokenBalances(ctx, cfg, address)
	}

	if s.apiKey == "" {
		slog.Warn("explorer api key not configured, skipping token balances", "network", network)
		return nil, nil
	}

	url := fmt.Sprintf("%s?module=account&action=tokentx&address=%s&startblock=0&endblock=99999999&sort=asc&apikey=%s",
		cfg.APIURL, address, s.apiKey)

	envelope, err := fetchEtherscan(ctx, s.httpClient, s.retryDelay, url)
	if err != nil {
		return nil, fmt.Errorf("token history for %s on %s: %w", address, network, err)
	}

	var transfers []tokenTransfer
	if err := json.Unmarshal(envelope.Result, &transfers); err != nil {
		return nil, fmt.Errorf("decode token history result: %w", err)
	}
	if len(transfers) == 0 {
		return nil, nil
	}

	// Order of discovery is preserved so scans are deterministic.
	seen := make(map[string]model.TokenBalance, len(transfers))
	var contracts []string
	for _, tx := range transfers {
		contract := strings.ToLower(tx.ContractAddress)
		if _, ok := seen[contract]; ok {
			continue
		}

		decimals := int32(18)
		if d, err := strconv.ParseInt(tx.TokenDecimal, 10, 32); err == nil {
			decimals = int32(d)
		}

		symbol := tx.TokenSymbol
		if symbol == "" {
			symbol = "UNKNOWN"
		}
		name := tx.TokenName
		if name == "" {
			name = "Unknown Token"
		}

		seen[contract] = model.TokenBalance{
			Symbol:          symbol,
			Name:            name,
			Balance:         "0",
			Decimals:        decimals,
			ContractAddress: tx.ContractAddress,
		}
		contracts = append(contracts, contract)
	}

	var tokens []model.TokenBalance
	for _, contract := range contracts {
		token := seen[contract]

		balanceURL := fmt.Sprintf("%s?module=account&action=tokenbalance&contractaddress=%s&address=%s&tag=latest&apikey=%s",
			cfg.APIURL, contract, address, s.apiKey)

		balEnvelope, err := fetchEtherscan(ctx, s.httpClient, s.retryDelay, balanceURL)
		if err != nil {
			slog.Warn("token balance query failed", "network", network, "contract", contract, "error", err)
			continue
		}

		var balance string
		if err := json.Unmarshal(balEnvelope.Result, &balance); err != nil {
			slog.Warn("token balance result malformed", "network", network, "contract", contract, "error", err)
			continue
		}
		if balance == "" || balance == "0" {
			continue
		}

		token.Balance = balance
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// ScanWallet combines the native balance and token balances for one address.
func (s *Scanner) ScanWallet(ctx context.Context, network model.Network, address string) (*model.WalletScan, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("invalid address")
	}

	native, err := s.NativeBalance(ctx, network, address)
	if err != nil {
		return nil, err
	}

	tokens, err := s.TokenBalances(ctx, network, address)
	if err != nil {
		return nil, err
	}

	return &model.WalletScan{Native: native, Tokens: tokens}, nil
}

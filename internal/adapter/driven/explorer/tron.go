package explorer

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// tronTokenList is the account/tokens listing response.
type tronTokenList struct {
	Data []struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Balance  string `json:"balance"`
		Decimals int32  `json:"decimals"`
		TokenID  string `json:"tokenID"`
	} `json:"data"`
}

// tronTokenBalances fetches TRC-20 holdings from the single account/tokens
// listing endpoint. No API key is required; decimals default to 6 when the
// listing omits them.
func (s *Scanner) tronTokenBalances(ctx context.Context, cfg NetworkConfig, address string) ([]model.TokenBalance, error) {
	url := fmt.Sprintf("%s/account/tokens?address=%s&limit=200", cfg.APIURL, address)

	var listing tronTokenList
	if err := fetchJSON(ctx, s.httpClient, s.retryDelay, url, &listing); err != nil {
		return nil, fmt.Errorf("tron token listing for %s: %w", address, err)
	}

	var tokens []model.TokenBalance
	for _, entry := range listing.Data {
		balance := entry.Balance
		if balance == "" || balance == "0" {
			continue
		}

		symbol := entry.Symbol
		if symbol == "" {
			symbol = "UNKNOWN"
		}
		name := entry.Name
		if name == "" {
			name = "Unknown Token"
		}
		decimals := entry.Decimals
		if decimals == 0 {
			decimals = 6
		}

		tokens = append(tokens, model.TokenBalance{
			Symbol:          symbol,
			Name:            name,
			Balance:         balance,
			Decimals:        decimals,
			ContractAddress: entry.TokenID,
		})
	}

	return tokens, nil
}

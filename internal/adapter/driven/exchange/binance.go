// Package exchange implements the ExchangeAdapter port for each supported
// centralized exchange, along with the registry that dispatches on exchange
// kind. Every adapter signs its own requests; none of them retry -- retry
// policy lives in the orchestrator.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ExchangeAdapter = (*Binance)(nil)

const binanceBaseURL = "https://api.binance.com"

// Binance implements the ExchangeAdapter port against the Binance account
// endpoint. Requests carry an epoch-millisecond timestamp in the query
// string, an HMAC-SHA256 hex signature over that query string appended as a
// signature parameter, and the API key in the X-MBX-APIKEY header.
type Binance struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewBinance creates a Binance adapter using the production API endpoint.
func NewBinance() *Binance {
	return &Binance{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    binanceBaseURL,
		now:        time.Now,
	}
}

// NewBinanceWithHTTPClient creates a Binance adapter against a custom base
// URL. This constructor is intended for testing with an httptest server.
func NewBinanceWithHTTPClient(httpClient *http.Client, baseURL string) *Binance {
	return &Binance{
		httpClient: httpClient,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Name returns the exchange kind this adapter serves.
func (b *Binance) Name() model.Exchange {
	return model.ExchangeBinance
}

// binanceAccount is the subset of the account endpoint response we read.
type binanceAccount struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// GetAssets fetches all balances for the account and returns the non-zero
// ones in the normalized schema. passphrase is unused by Binance.
func (b *Binance) GetAssets(ctx context.Context, apiKey, apiSecret, _ string) ([]model.NormalizedAsset, error) {
	resp, body, err := b.accountRequest(ctx, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.ExchangeAPIError{
			Exchange:   model.ExchangeBinance,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var account binanceAccount
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("decode binance account response: %w", err)
	}

	assets := make([]model.NormalizedAsset, 0, len(account.Balances))
	for _, bal := range account.Balances {
		free, err := decimal.NewFromString(bal.Free)
		if err != nil {
			return nil, fmt.Errorf("parse free balance for %s: %w", bal.Asset, err)
		}
		locked, err := decimal.NewFromString(bal.Locked)
		if err != nil {
			return nil, fmt.Errorf("parse locked balance for %s: %w", bal.Asset, err)
		}

		asset := model.NewNormalizedAsset(bal.Asset, free, locked, string(model.ExchangeBinance))
		if asset.IsZero() {
			continue
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

// ValidateCredentials reuses the signed account request and reports success
// purely on HTTP status. Transport errors count as invalid.
func (b *Binance) ValidateCredentials(ctx context.Context, apiKey, apiSecret, _ string) bool {
	resp, _, err := b.accountRequest(ctx, apiKey, apiSecret)
	if err != nil {
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// accountRequest issues the signed GET /api/v3/account request and returns
// the response along with its fully-read body.
func (b *Binance) accountRequest(ctx context.Context, apiKey, apiSecret string) (*http.Response, []byte, error) {
	queryString := fmt.Sprintf("timestamp=%d", b.now().UnixMilli())
	signature := sign(queryString, apiSecret)

	url := fmt.Sprintf("%s/api/v3/account?%s&signature=%s", b.baseURL, queryString, signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build binance request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("binance account request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read binance response: %w", err)
	}

	return resp, body, nil
}

// sign computes the hex-encoded HMAC-SHA256 of the query string.
func sign(queryString, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(queryString))
	return hex.EncodeToString(mac.Sum(nil))
}

package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
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
var _ driven.ExchangeAdapter = (*OKX)(nil)

const (
	okxBaseURL     = "https://www.okx.com"
	okxBalancePath = "/api/v5/account/balance"
)

// OKX implements the ExchangeAdapter port against the OKX balance endpoint.
// The signature is base64-encoded HMAC-SHA256 over timestamp+method+path with
// an ISO-8601 timestamp, carried in four OK-ACCESS-* headers including the
// account passphrase.
type OKX struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewOKX creates an OKX adapter using the production API endpoint.
func NewOKX() *OKX {
	return &OKX{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    okxBaseURL,
		now:        time.Now,
	}
}

// NewOKXWithHTTPClient creates an OKX adapter against a custom base URL.
// This constructor is intended for testing with an httptest server.
func NewOKXWithHTTPClient(httpClient *http.Client, baseURL string) *OKX {
	return &OKX{
		httpClient: httpClient,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Name returns the exchange kind this adapter serves.
func (o *OKX) Name() model.Exchange {
	return model.ExchangeOKX
}

// okxBalanceResponse is the subset of the balance endpoint response we read.
// Balances come grouped by account, each with per-currency details.
type okxBalanceResponse struct {
	Code string `json:"code"`
	Data []struct {
		Details []struct {
			Currency  string `json:"ccy"`
			Available string `json:"availBal"`
			Frozen    string `json:"frozenBal"`
		} `json:"details"`
	} `json:"data"`
}

// GetAssets fetches balances across all OKX account groups and returns the
// non-zero ones in the normalized schema.
func (o *OKX) GetAssets(ctx context.Context, apiKey, apiSecret, passphrase string) ([]model.NormalizedAsset, error) {
	resp, body, err := o.balanceRequest(ctx, apiKey, apiSecret, passphrase)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.ExchangeAPIError{
			Exchange:   model.ExchangeOKX,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var balance okxBalanceResponse
	if err := json.Unmarshal(body, &balance); err != nil {
		return nil, fmt.Errorf("decode okx balance response: %w", err)
	}

	// OKX reports provider errors inside a 200 response.
	if balance.Code != "0" {
		return nil, &model.ExchangeAPIError{
			Exchange:   model.ExchangeOKX,
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("error code %s", balance.Code),
		}
	}

	var assets []model.NormalizedAsset
	for _, account := range balance.Data {
		for _, detail := range account.Details {
			available, err := decimal.NewFromString(detail.Available)
			if err != nil {
				return nil, fmt.Errorf("parse available balance for %s: %w", detail.Currency, err)
			}
			frozen, err := decimal.NewFromString(detail.Frozen)
			if err != nil {
				return nil, fmt.Errorf("parse frozen balance for %s: %w", detail.Currency, err)
			}

			asset := model.NewNormalizedAsset(detail.Currency, available, frozen, string(model.ExchangeOKX))
			if asset.IsZero() {
				continue
			}
			assets = append(assets, asset)
		}
	}

	return assets, nil
}

// ValidateCredentials reuses the signed balance request and reports success
// purely on HTTP status. Transport errors count as invalid.
func (o *OKX) ValidateCredentials(ctx context.Context, apiKey, apiSecret, passphrase string) bool {
	resp, _, err := o.balanceRequest(ctx, apiKey, apiSecret, passphrase)
	if err != nil {
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// balanceRequest issues the signed GET /api/v5/account/balance request and
// returns the response along with its fully-read body.
func (o *OKX) balanceRequest(ctx context.Context, apiKey, apiSecret, passphrase string) (*http.Response, []byte, error) {
	timestamp := o.now().UTC().Format("2006-01-02T15:04:05.000Z")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+okxBalancePath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build okx request: %w", err)
	}

	// Prehash string is timestamp + method + request path.
	prehash := timestamp + http.MethodGet + okxBalancePath
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(prehash))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("OK-ACCESS-KEY", apiKey)
	req.Header.Set("OK-ACCESS-SIGN", signature)
	req.Header.Set("OK-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("OK-ACCESS-PASSPHRASE", passphrase)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("okx balance request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read okx response: %w", err)
	}

	return resp, body, nil
}

package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

const (
	maxFetchAttempts  = 3
	defaultRetryDelay = time.Second
	userAgent         = "coinpanel/1.0"
)

// linearBackOff waits delay * attempt between attempts: delay after the
// first failure, 2*delay after the second, and so on.
type linearBackOff struct {
	delay   time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.delay * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// fetchJSON GETs the URL and decodes the JSON response into out, retrying up
// to maxFetchAttempts times with linear backoff. An HTTP 429 becomes a
// RateLimitError and is retried like any other failure; it does not get a
// separate budget.
func fetchJSON(ctx context.Context, client *http.Client, delay time.Duration, url string, out any) error {
	operation := func() error {
		return getJSON(ctx, client, url, out)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{delay: delay}, maxFetchAttempts-1),
		ctx,
	)

	return backoff.Retry(operation, policy)
}

// getJSON performs a single GET attempt.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build explorer request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("explorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &model.RateLimitError{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read explorer response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode explorer response: %w", err)
	}

	return nil
}

// etherscanResponse is the etherscan-convention envelope. Result is raw
// because its shape depends on the action: a plain string for balance
// queries, an array for transaction listings.
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// fetchEtherscan fetches an etherscan-convention URL through the retry
// helper. A provider "NOTOK" status embedded in a 200 response is treated as
// a failed attempt and retried.
func fetchEtherscan(ctx context.Context, client *http.Client, delay time.Duration, url string) (*etherscanResponse, error) {
	var envelope etherscanResponse

	operation := func() error {
		envelope = etherscanResponse{}
		if err := getJSON(ctx, client, url, &envelope); err != nil {
			return err
		}
		if envelope.Status == "0" && envelope.Message == "NOTOK" {
			var detail string
			_ = json.Unmarshal(envelope.Result, &detail)
			if detail == "" {
				detail = "API error"
			}
			return fmt.Errorf("explorer error: %s", detail)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{delay: delay}, maxFetchAttempts-1),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return &envelope, nil
}

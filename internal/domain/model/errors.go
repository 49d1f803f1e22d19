package model

import "fmt"

// ExchangeAPIError is a non-2xx response or a provider error code embedded in
// a 200 from an exchange API. It is recorded as the source's sync error and
// never aborts the rest of a sync.
type ExchangeAPIError struct {
	Exchange   Exchange
	StatusCode int
	Body       string
}

func (e *ExchangeAPIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Exchange, e.StatusCode, e.Body)
}

// CredentialInvalidError means link-time validation of an exchange credential
// failed. It surfaces immediately, before anything is stored.
type CredentialInvalidError struct {
	Exchange Exchange
}

func (e *CredentialInvalidError) Error() string {
	return fmt.Sprintf("invalid credentials for exchange %q", e.Exchange)
}

// UnsupportedExchangeError is returned by the adapter registry for an exchange
// kind with no registered adapter. User input is the only place it can occur.
type UnsupportedExchangeError struct {
	Exchange Exchange
}

func (e *UnsupportedExchangeError) Error() string {
	return fmt.Sprintf("unsupported exchange: %s", e.Exchange)
}

// UnsupportedNetworkError is returned for a network identifier with no entry
// in the scanner's network registry. Fatal for that source's attempt only.
type UnsupportedNetworkError struct {
	Network Network
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network: %s", e.Network)
}

// RateLimitError is an HTTP 429 from an explorer endpoint. The scanner's
// retry helper retries it transparently within the attempt budget.
type RateLimitError struct {
	URL string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.URL)
}

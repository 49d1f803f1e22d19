package driven

import "github.com/ericfisherdev/coinpanel/internal/domain/model"

// ExchangeRegistry resolves an exchange kind to its adapter. Implementations
// are fixed at construction; an unknown kind is rejected here with
// UnsupportedExchangeError, making user input the only failure source.
type ExchangeRegistry interface {
	Adapter(kind model.Exchange) (ExchangeAdapter, error)
	Supported() []model.Exchange
}

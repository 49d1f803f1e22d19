package exchange

import (
	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Registry maps exchange kinds to their adapters. The map is fixed at
// construction, so an unknown kind can only come from user input and is
// rejected here, at the boundary.
type Registry struct {
	adapters map[model.Exchange]driven.ExchangeAdapter
}

// NewRegistry builds a registry from the given adapters, keyed by Name().
func NewRegistry(adapters ...driven.ExchangeAdapter) *Registry {
	m := make(map[model.Exchange]driven.ExchangeAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

// NewDefaultRegistry builds a registry with all production adapters.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewBinance(), NewOKX())
}

// Adapter returns the adapter for the given exchange kind, or an
// UnsupportedExchangeError when no adapter is registered for it.
func (r *Registry) Adapter(kind model.Exchange) (driven.ExchangeAdapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, &model.UnsupportedExchangeError{Exchange: kind}
	}
	return a, nil
}

// Supported returns the registered exchange kinds.
func (r *Registry) Supported() []model.Exchange {
	kinds := make([]model.Exchange, 0, len(r.adapters))
	for kind := range r.adapters {
		kinds = append(kinds, kind)
	}
	return kinds
}

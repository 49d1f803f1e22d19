package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// LinkService handles linking and revoking sources: exchange credentials and
// watched addresses. Credentials are validated against the live exchange
// before anything is stored, so a bad key is rejected immediately and never
// persisted.
type LinkService struct {
	credStore driven.CredentialStore
	addrStore driven.AddressStore
	exchanges driven.ExchangeRegistry
	scanner   driven.ChainScanner
}

// NewLinkService creates a LinkService with all required dependencies.
func NewLinkService(
	credStore driven.CredentialStore,
	addrStore driven.AddressStore,
	exchanges driven.ExchangeRegistry,
	scanner driven.ChainScanner,
) *LinkService {
	return &LinkService{
		credStore: credStore,
		addrStore: addrStore,
		exchanges: exchanges,
		scanner:   scanner,
	}
}

// LinkCredential validates the key material against the exchange and stores
// the credential as active. A failed validation returns
// CredentialInvalidError and stores nothing.
func (s *LinkService) LinkCredential(ctx context.Context, userID int64, kind model.Exchange, apiKey, apiSecret, passphrase, label string) (int64, error) {
	adapter, err := s.exchanges.Adapter(kind)
	if err != nil {
		return 0, err
	}

	if !adapter.ValidateCredentials(ctx, apiKey, apiSecret, passphrase) {
		return 0, &model.CredentialInvalidError{Exchange: kind}
	}

	return s.credStore.Create(ctx, model.Credential{
		UserID:     userID,
		Exchange:   kind,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		Passphrase: passphrase,
		Label:      label,
		Active:     true,
	})
}

// LinkAddress stores a watched address as active. The network must be in the
// scanner's registry and the address must be non-empty.
func (s *LinkService) LinkAddress(ctx context.Context, userID int64, network model.Network, address, label string) (int64, error) {
	if !s.scanner.SupportsNetwork(network) {
		return 0, &model.UnsupportedNetworkError{Network: network}
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return 0, fmt.Errorf("address must not be empty")
	}

	return s.addrStore.Create(ctx, model.WatchedAddress{
		UserID:  userID,
		Network: network,
		Address: address,
		Label:   label,
		Active:  true,
	})
}

// UnlinkCredential revokes a linked credential.
func (s *LinkService) UnlinkCredential(ctx context.Context, id int64) error {
	return s.credStore.Delete(ctx, id)
}

// UnlinkAddress stops watching an address.
func (s *LinkService) UnlinkAddress(ctx context.Context, id int64) error {
	return s.addrStore.Delete(ctx, id)
}

// SetCredentialActive toggles whether a credential participates in syncs.
func (s *LinkService) SetCredentialActive(ctx context.Context, id int64, active bool) error {
	return s.credStore.SetActive(ctx, id, active)
}

// SetAddressActive toggles whether an address participates in syncs.
func (s *LinkService) SetAddressActive(ctx context.Context, id int64, active bool) error {
	return s.addrStore.SetActive(ctx, id, active)
}

// SupportedExchanges lists the exchange kinds available for linking.
func (s *LinkService) SupportedExchanges() []model.Exchange {
	return s.exchanges.Supported()
}

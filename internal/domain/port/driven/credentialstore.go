// Package driven defines the driven-side port interfaces implemented by
// storage and external-API adapters.
package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// CredentialStore defines the driven port for exchange credential persistence.
// Records arrive with decrypted key material; encryption-at-rest is the
// store's concern, not the sync core's.
type CredentialStore interface {
	Create(ctx context.Context, cred model.Credential) (int64, error)
	// ListActive returns the user's credentials with the active flag set.
	// Inactive records are invisible to the sync core.
	ListActive(ctx context.Context, userID int64) ([]model.Credential, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Credential, error)
	// Owners returns the distinct user IDs that have at least one active
	// credential. The scheduler unions this with AddressStore.Owners.
	Owners(ctx context.Context) ([]int64, error)
	// MarkSynced records a successful sync: last_synced_at is set to the
	// given time and any previous sync error is cleared.
	MarkSynced(ctx context.Context, id int64, at time.Time) error
	// MarkSyncFailed records a failed sync: the error message is stored and
	// last_synced_at is left untouched.
	MarkSyncFailed(ctx context.Context, id int64, msg string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

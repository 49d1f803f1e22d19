package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// AddressStore defines the driven port for watched address persistence.
// It mirrors CredentialStore's lifecycle: created on link, sync status
// mutated on every attempt, deleted on revoke.
type AddressStore interface {
	Create(ctx context.Context, addr model.WatchedAddress) (int64, error)
	ListActive(ctx context.Context, userID int64) ([]model.WatchedAddress, error)
	ListByUser(ctx context.Context, userID int64) ([]model.WatchedAddress, error)
	Owners(ctx context.Context) ([]int64, error)
	MarkSynced(ctx context.Context, id int64, at time.Time) error
	MarkSyncFailed(ctx context.Context, id int64, msg string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

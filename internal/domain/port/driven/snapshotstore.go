package driven

import (
	"context"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

// SnapshotStore defines the driven port for asset snapshot persistence.
// Snapshots are append-only; there is no update or delete.
type SnapshotStore interface {
	Append(ctx context.Context, snap model.AssetSnapshot) (int64, error)
	// Latest returns the most recent snapshot for the user, or nil when the
	// user has none.
	Latest(ctx context.Context, userID int64) (*model.AssetSnapshot, error)
	// History returns up to limit snapshots ordered newest first.
	History(ctx context.Context, userID int64, limit int) ([]model.AssetSnapshot, error)
}

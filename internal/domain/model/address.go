package model

import "time"

// WatchedAddress is a public chain address tracked for balances. Only public
// addresses are stored, never private keys.
type WatchedAddress struct {
	ID            int64
	UserID        int64
	Network       Network
	Address       string
	Label         string
	Active        bool
	LastSyncedAt  *time.Time
	LastSyncError *string
	CreatedAt     time.Time
}

package model

import "time"

// Credential is one linked exchange account. Key material is plaintext here:
// decryption happens at the storage boundary before records reach the sync
// core, and the core never sees ciphertext.
type Credential struct {
	ID            int64
	UserID        int64
	Exchange      Exchange
	APIKey        string
	APISecret     string
	Passphrase    string // Required by some exchanges (OKX); empty otherwise.
	Label         string
	Active        bool
	LastSyncedAt  *time.Time
	LastSyncError *string
	CreatedAt     time.Time
}

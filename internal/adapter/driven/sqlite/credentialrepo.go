package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port
// interface. Key material is stored as provided; encrypting the columns at
// rest is a deployment concern layered outside this repo.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

const credentialColumns = `id, user_id, exchange, api_key, api_secret, passphrase,
	label, is_active, last_synced_at, last_sync_error, created_at`

// Create inserts a new credential and returns its ID.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) (int64, error) {
	const query = `
		INSERT INTO credentials (user_id, exchange, api_key, api_secret, passphrase, label, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	active := 0
	if cred.Active {
		active = 1
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.UserID, string(cred.Exchange), cred.APIKey, cred.APISecret,
		cred.Passphrase, cred.Label, active,
	)
	if err != nil {
		return 0, fmt.Errorf("create credential for user %d: %w", cred.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("credential insert id: %w", err)
	}

	return id, nil
}

// ListActive returns the user's credentials with the active flag set,
// ordered by id.
func (r *CredentialRepo) ListActive(ctx context.Context, userID int64) ([]model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = ? AND is_active = 1 ORDER BY id`
	return r.queryCredentials(ctx, query, userID)
}

// ListByUser returns all of the user's credentials, active or not.
func (r *CredentialRepo) ListByUser(ctx context.Context, userID int64) ([]model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = ? ORDER BY id`
	return r.queryCredentials(ctx, query, userID)
}

// Owners returns the distinct user IDs holding at least one active credential.
func (r *CredentialRepo) Owners(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT user_id FROM credentials WHERE is_active = 1 ORDER BY user_id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credential owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan credential owner: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential owners: %w", err)
	}

	return owners, nil
}

// MarkSynced records a successful sync at the given time and clears any
// previous sync error.
func (r *CredentialRepo) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE credentials SET last_synced_at = ?, last_sync_error = NULL WHERE id = ?`

	return r.exec(ctx, "mark credential synced", id, query, at.UTC().Format(time.RFC3339), id)
}

// MarkSyncFailed stores the sync error message, leaving last_synced_at
// untouched.
func (r *CredentialRepo) MarkSyncFailed(ctx context.Context, id int64, msg string) error {
	const query = `UPDATE credentials SET last_sync_error = ? WHERE id = ?`

	return r.exec(ctx, "mark credential sync failed", id, query, msg, id)
}

// SetActive toggles the credential's active flag.
func (r *CredentialRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE credentials SET is_active = ? WHERE id = ?`

	flag := 0
	if active {
		flag = 1
	}
	return r.exec(ctx, "set credential active", id, query, flag, id)
}

// Delete removes a credential. Returns an error if it does not exist.
func (r *CredentialRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM credentials WHERE id = ?`

	return r.exec(ctx, "delete credential", id, query, id)
}

// exec runs a write statement that must affect exactly one row.
func (r *CredentialRepo) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("credential %d not found", id)
	}

	return nil
}

func (r *CredentialRepo) queryCredentials(ctx context.Context, query string, args ...any) ([]model.Credential, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

func scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var exchange string
	var active int
	var lastSyncedAt, lastSyncError sql.NullString
	var createdAt string

	err := s.Scan(
		&cred.ID, &cred.UserID, &exchange, &cred.APIKey, &cred.APISecret,
		&cred.Passphrase, &cred.Label, &active, &lastSyncedAt, &lastSyncError,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Exchange = model.Exchange(exchange)
	cred.Active = active != 0

	cred.LastSyncedAt, err = parseNullTime(lastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_synced_at: %w", err)
	}

	if lastSyncError.Valid {
		msg := lastSyncError.String
		cred.LastSyncError = &msg
	}

	cred.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &cred, nil
}

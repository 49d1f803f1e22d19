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
var _ driven.AddressStore = (*AddressRepo)(nil)

// AddressRepo is the SQLite implementation of the AddressStore port interface.
type AddressRepo struct {
	db *DB
}

// NewAddressRepo creates a new AddressRepo backed by the given DB.
func NewAddressRepo(db *DB) *AddressRepo {
	return &AddressRepo{db: db}
}

const addressColumns = `id, user_id, network, address, label, is_active,
	last_synced_at, last_sync_error, created_at`

// Create inserts a new watched address and returns its ID. The same address
// on the same network cannot be watched twice by one user.
func (r *AddressRepo) Create(ctx context.Context, addr model.WatchedAddress) (int64, error) {
	const query = `
		INSERT INTO watched_addresses (user_id, network, address, label, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	active := 0
	if addr.Active {
		active = 1
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		addr.UserID, string(addr.Network), addr.Address, addr.Label, active,
	)
	if err != nil {
		return 0, fmt.Errorf("create watched address for user %d: %w", addr.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("watched address insert id: %w", err)
	}

	return id, nil
}

// ListActive returns the user's watched addresses with the active flag set,
// ordered by id.
func (r *AddressRepo) ListActive(ctx context.Context, userID int64) ([]model.WatchedAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM watched_addresses WHERE user_id = ? AND is_active = 1 ORDER BY id`
	return r.queryAddresses(ctx, query, userID)
}

// ListByUser returns all of the user's watched addresses, active or not.
func (r *AddressRepo) ListByUser(ctx context.Context, userID int64) ([]model.WatchedAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM watched_addresses WHERE user_id = ? ORDER BY id`
	return r.queryAddresses(ctx, query, userID)
}

// Owners returns the distinct user IDs holding at least one active watched
// address.
func (r *AddressRepo) Owners(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT user_id FROM watched_addresses WHERE is_active = 1 ORDER BY user_id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query address owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan address owner: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address owners: %w", err)
	}

	return owners, nil
}

// MarkSynced records a successful sync at the given time and clears any
// previous sync error.
func (r *AddressRepo) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE watched_addresses SET last_synced_at = ?, last_sync_error = NULL WHERE id = ?`

	return r.exec(ctx, "mark address synced", id, query, at.UTC().Format(time.RFC3339), id)
}

// MarkSyncFailed stores the sync error message, leaving last_synced_at
// untouched.
func (r *AddressRepo) MarkSyncFailed(ctx context.Context, id int64, msg string) error {
	const query = `UPDATE watched_addresses SET last_sync_error = ? WHERE id = ?`

	return r.exec(ctx, "mark address sync failed", id, query, msg, id)
}

// SetActive toggles the watched address's active flag.
func (r *AddressRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE watched_addresses SET is_active = ? WHERE id = ?`

	flag := 0
	if active {
		flag = 1
	}
	return r.exec(ctx, "set address active", id, query, flag, id)
}

// Delete removes a watched address. Returns an error if it does not exist.
func (r *AddressRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM watched_addresses WHERE id = ?`

	return r.exec(ctx, "delete watched address", id, query, id)
}

// exec runs a write statement that must affect exactly one row.
func (r *AddressRepo) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("watched address %d not found", id)
	}

	return nil
}

func (r *AddressRepo) queryAddresses(ctx context.Context, query string, args ...any) ([]model.WatchedAddress, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query watched addresses: %w", err)
	}
	defer rows.Close()

	var addrs []model.WatchedAddress
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watched address: %w", err)
		}
		addrs = append(addrs, *addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched addresses: %w", err)
	}

	return addrs, nil
}

func scanAddress(s scanner) (*model.WatchedAddress, error) {
	var addr model.WatchedAddress
	var network string
	var active int
	var lastSyncedAt, lastSyncError sql.NullString
	var createdAt string

	err := s.Scan(
		&addr.ID, &addr.UserID, &network, &addr.Address, &addr.Label,
		&active, &lastSyncedAt, &lastSyncError, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	addr.Network = model.Network(network)
	addr.Active = active != 0

	addr.LastSyncedAt, err = parseNullTime(lastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_synced_at: %w", err)
	}

	if lastSyncError.Valid {
		msg := lastSyncError.String
		addr.LastSyncError = &msg
	}

	addr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &addr, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo is the SQLite implementation of the SnapshotStore port
// interface. Snapshots are append-only; no update or delete statements exist
// in this repo. Valuation totals are stored as TEXT and the asset map as a
// JSON document, so a read round-trips to the exact values that were written.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Append inserts a new snapshot and returns its ID.
func (r *SnapshotRepo) Append(ctx context.Context, snap model.AssetSnapshot) (int64, error) {
	const query = `
		INSERT INTO asset_snapshots (user_id, total_value_usd, total_value_twd, assets_data, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	assets := snap.Assets
	if assets == nil {
		assets = map[string]model.NormalizedAsset{}
	}
	assetsJSON, err := json.Marshal(assets)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot assets: %w", err)
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		snap.UserID, snap.TotalValueUSD.String(), snap.TotalValueTWD.String(),
		string(assetsJSON), string(snap.Source), createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("append snapshot for user %d: %w", snap.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot insert id: %w", err)
	}

	return id, nil
}

// Latest returns the most recent snapshot for the user, or nil when the user
// has none.
func (r *SnapshotRepo) Latest(ctx context.Context, userID int64) (*model.AssetSnapshot, error) {
	const query = `
		SELECT id, user_id, total_value_usd, total_value_twd, assets_data, source, created_at
		FROM asset_snapshots
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	snap, err := scanSnapshot(r.db.Reader.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot for user %d: %w", userID, err)
	}

	return snap, nil
}

// History returns up to limit snapshots for the user, newest first.
func (r *SnapshotRepo) History(ctx context.Context, userID int64, limit int) ([]model.AssetSnapshot, error) {
	const query = `
		SELECT id, user_id, total_value_usd, total_value_twd, assets_data, source, created_at
		FROM asset_snapshots
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	var snaps []model.AssetSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snaps, nil
}

func scanSnapshot(s scanner) (*model.AssetSnapshot, error) {
	var snap model.AssetSnapshot
	var totalUSD, totalTWD, assetsJSON, source, createdAt string

	err := s.Scan(&snap.ID, &snap.UserID, &totalUSD, &totalTWD, &assetsJSON, &source, &createdAt)
	if err != nil {
		return nil, err
	}

	snap.TotalValueUSD, err = decimal.NewFromString(totalUSD)
	if err != nil {
		return nil, fmt.Errorf("parse total_value_usd: %w", err)
	}

	snap.TotalValueTWD, err = decimal.NewFromString(totalTWD)
	if err != nil {
		return nil, fmt.Errorf("parse total_value_twd: %w", err)
	}

	if err := json.Unmarshal([]byte(assetsJSON), &snap.Assets); err != nil {
		return nil, fmt.Errorf("unmarshal assets_data: %w", err)
	}

	snap.Source = model.SnapshotSource(source)

	snap.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &snap, nil
}

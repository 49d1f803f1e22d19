package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"

	"github.com/ericfisherdev/coinpanel/internal/domain/model"
	"github.com/ericfisherdev/coinpanel/internal/domain/port/driven"
)

const (
	currencyUSD = "usd"
	currencyTWD = "twd"
)

// SyncResult is the outcome of one sync invocation. Success is false only
// when every source failed or when a failure happened outside the per-source
// boundary (loading the records, persisting the snapshot); partial failure
// still reports success.
type SyncResult struct {
	Success     bool
	AssetsCount int
	Err         error
}

// sourceKind tags which store a source record came from.
type sourceKind int

const (
	sourceExchange sourceKind = iota
	sourceAddress
)

// sourceResult is the tagged per-source outcome of a fan-out task. Exactly
// one of assets or err is meaningful; the orchestrator matches on err
// instead of inspecting error shapes downstream.
type sourceResult struct {
	kind     sourceKind
	recordID int64
	sourceID string
	assets   []model.NormalizedAsset
	err      error
}

// SyncService orchestrates balance aggregation: it loads a user's active
// sources, fans out to the exchange adapters and chain scanner concurrently,
// merges the normalized balances, values them, and appends exactly one
// snapshot per invocation. One source's failure never aborts the others.
type SyncService struct {
	credStore driven.CredentialStore
	addrStore driven.AddressStore
	snapStore driven.SnapshotStore
	exchanges driven.ExchangeRegistry
	scanner   driven.ChainScanner
	prices    *PriceResolver
	interval  time.Duration
	now       func() time.Time

	// locks serializes syncs per user so concurrent triggers cannot produce
	// duplicate snapshots or double-spend upstream rate limits.
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	credStore driven.CredentialStore,
	addrStore driven.AddressStore,
	snapStore driven.SnapshotStore,
	exchanges driven.ExchangeRegistry,
	scanner driven.ChainScanner,
	prices *PriceResolver,
	interval time.Duration,
) *SyncService {
	return &SyncService{
		credStore: credStore,
		addrStore: addrStore,
		snapStore: snapStore,
		exchanges: exchanges,
		scanner:   scanner,
		prices:    prices,
		interval:  interval,
		now:       time.Now,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Start begins the periodic sync loop. It runs an immediate full pass, then
// syncs every user with active sources on the configured interval. Start
// blocks until the context is canceled.
func (s *SyncService) Start(ctx context.Context) {
	s.syncAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync service stopped")
			return
		case <-ticker.C:
			s.syncAll(ctx)
		}
	}
}

// syncAll syncs every user that has at least one active source. Per-user
// failures are logged and never abort the cycle.
func (s *SyncService) syncAll(ctx context.Context) {
	start := s.now()

	users, err := s.owners(ctx)
	if err != nil {
		slog.Error("list sync owners failed", "error", err)
		return
	}

	var failures int
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}

		result := s.SyncUser(ctx, userID, model.SnapshotSourceAutoSync)
		switch {
		case result.Err != nil:
			failures++
			slog.Error("user sync failed", "user", userID, "error", result.Err)
		case !result.Success:
			failures++
			slog.Warn("user sync completed with every source failing", "user", userID)
		}
	}

	slog.Info("sync cycle complete",
		"users", len(users),
		"failures", failures,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// owners returns the union of user IDs with active credentials and active
// watched addresses.
func (s *SyncService) owners(ctx context.Context) ([]int64, error) {
	credOwners, err := s.credStore.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("credential owners: %w", err)
	}

	addrOwners, err := s.addrStore.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("address owners: %w", err)
	}

	union := append(credOwners, addrOwners...)
	slices.Sort(union)
	return slices.Compact(union), nil
}

// SyncUser aggregates one user's balances into a single snapshot. At most
// one sync per user runs at a time; a concurrent trigger waits its turn.
func (s *SyncService) SyncUser(ctx context.Context, userID int64, trigger model.SnapshotSource) SyncResult {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	creds, err := s.credStore.ListActive(ctx, userID)
	if err != nil {
		return SyncResult{Err: fmt.Errorf("list active credentials: %w", err)}
	}
	addrs, err := s.addrStore.ListActive(ctx, userID)
	if err != nil {
		return SyncResult{Err: fmt.Errorf("list active addresses: %w", err)}
	}

	// Fan out one task per source; each lands in its own result slot, so no
	// ordering between sources matters.
	results := make([]sourceResult, len(creds)+len(addrs))
	var wg conc.WaitGroup
	for i, cred := range creds {
		wg.Go(func() {
			results[i] = s.syncCredential(ctx, cred)
		})
	}
	for i, addr := range addrs {
		wg.Go(func() {
			results[len(creds)+i] = s.syncAddress(ctx, addr)
		})
	}
	wg.Wait()

	merged := make(map[string]model.NormalizedAsset)
	var failed int
	syncedAt := s.now()

	for _, result := range results {
		if result.err != nil {
			failed++
			slog.Warn("source sync failed",
				"user", userID,
				"source", result.sourceID,
				"record", result.recordID,
				"error", result.err,
			)
			s.recordFailure(ctx, result)
			continue
		}

		for _, asset := range result.assets {
			merged[model.SourceKey(result.sourceID, asset.Symbol)] = asset
		}
		s.recordSuccess(ctx, result, syncedAt)
	}

	totalUSD, totalTWD := s.value(ctx, merged)

	snapshot := model.AssetSnapshot{
		UserID:        userID,
		TotalValueUSD: totalUSD,
		TotalValueTWD: totalTWD,
		Assets:        merged,
		Source:        trigger,
		CreatedAt:     s.now(),
	}
	if _, err := s.snapStore.Append(ctx, snapshot); err != nil {
		return SyncResult{Err: fmt.Errorf("append snapshot: %w", err)}
	}

	total := len(creds) + len(addrs)
	slog.Info("user synced",
		"user", userID,
		"sources", total,
		"failed", failed,
		"assets", len(merged),
		"trigger", string(trigger),
	)

	return SyncResult{
		Success:     total == 0 || failed < total,
		AssetsCount: len(merged),
	}
}

// syncCredential fetches one exchange credential's balances.
func (s *SyncService) syncCredential(ctx context.Context, cred model.Credential) sourceResult {
	result := sourceResult{
		kind:     sourceExchange,
		recordID: cred.ID,
		sourceID: string(cred.Exchange),
	}

	adapter, err := s.exchanges.Adapter(cred.Exchange)
	if err != nil {
		result.err = err
		return result
	}

	result.assets, result.err = adapter.GetAssets(ctx, cred.APIKey, cred.APISecret, cred.Passphrase)
	return result
}

// syncAddress scans one watched address and normalizes the native and token
// balances into the common schema. Chain balances carry no locked portion.
func (s *SyncService) syncAddress(ctx context.Context, addr model.WatchedAddress) sourceResult {
	result := sourceResult{
		kind:     sourceAddress,
		recordID: addr.ID,
		sourceID: string(addr.Network),
	}

	scan, err := s.scanner.ScanWallet(ctx, addr.Network, addr.Address)
	if err != nil {
		result.err = err
		return result
	}

	bySymbol := make(map[string]model.NormalizedAsset)
	add := func(symbol, raw string, decimals int32) {
		amount, err := model.AmountFromRaw(raw, decimals)
		if err != nil {
			slog.Warn("skipping malformed chain balance",
				"network", addr.Network,
				"address", addr.Address,
				"symbol", symbol,
				"error", err,
			)
			return
		}
		if amount.IsZero() {
			return
		}

		sym := strings.ToUpper(symbol)
		free := amount
		if existing, ok := bySymbol[sym]; ok {
			free = existing.Free.Add(amount)
		}
		bySymbol[sym] = model.NewNormalizedAsset(sym, free, decimal.Zero, result.sourceID)
	}

	if scan.Native != nil {
		add(scan.Native.Symbol, scan.Native.Balance, scan.Native.Decimals)
	}
	for _, token := range scan.Tokens {
		add(token.Symbol, token.Balance, token.Decimals)
	}

	result.assets = make([]model.NormalizedAsset, 0, len(bySymbol))
	for _, asset := range bySymbol {
		result.assets = append(result.assets, asset)
	}
	return result
}

// recordSuccess updates the source record's sync status: last synced time
// set, error cleared. A status-write failure is logged, not propagated, so
// it cannot turn a successful fetch into a failed sync.
func (s *SyncService) recordSuccess(ctx context.Context, result sourceResult, at time.Time) {
	var err error
	switch result.kind {
	case sourceExchange:
		err = s.credStore.MarkSynced(ctx, result.recordID, at)
	case sourceAddress:
		err = s.addrStore.MarkSynced(ctx, result.recordID, at)
	}
	if err != nil {
		slog.Error("mark synced failed", "record", result.recordID, "error", err)
	}
}

// recordFailure persists the source's error string, leaving the last synced
// time untouched.
func (s *SyncService) recordFailure(ctx context.Context, result sourceResult) {
	var err error
	switch result.kind {
	case sourceExchange:
		err = s.credStore.MarkSyncFailed(ctx, result.recordID, result.err.Error())
	case sourceAddress:
		err = s.addrStore.MarkSyncFailed(ctx, result.recordID, result.err.Error())
	}
	if err != nil {
		slog.Error("mark sync failed failed", "record", result.recordID, "error", err)
	}
}

// value computes the merged assets' total worth in both target currencies.
// An unresolvable price contributes zero instead of failing the snapshot.
func (s *SyncService) value(ctx context.Context, merged map[string]model.NormalizedAsset) (usd, twd decimal.Decimal) {
	if len(merged) == 0 {
		return decimal.Zero, decimal.Zero
	}

	symbolSet := make(map[string]struct{}, len(merged))
	for _, asset := range merged {
		symbolSet[asset.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)

	usdPrices := s.prices.Prices(ctx, symbols, currencyUSD)
	twdPrices := s.prices.Prices(ctx, symbols, currencyTWD)

	for _, asset := range merged {
		if price := usdPrices[asset.Symbol]; price != nil {
			usd = usd.Add(asset.Total.Mul(*price))
		}
		if price := twdPrices[asset.Symbol]; price != nil {
			twd = twd.Add(asset.Total.Mul(*price))
		}
	}

	return usd, twd
}

// userLock returns the mutex guarding syncs for one user, creating it on
// first use.
func (s *SyncService) userLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

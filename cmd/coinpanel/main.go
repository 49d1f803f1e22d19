package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/coinpanel/internal/adapter/driven/exchange"
	"github.com/ericfisherdev/coinpanel/internal/adapter/driven/explorer"
	"github.com/ericfisherdev/coinpanel/internal/adapter/driven/pricefeed"
	sqliteadapter "github.com/ericfisherdev/coinpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/coinpanel/internal/application"
	"github.com/ericfisherdev/coinpanel/internal/config"
	"github.com/ericfisherdev/coinpanel/internal/domain/model"
)

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "link-exchange":
		err = runLinkExchange(args)
	case "link-address":
		err = runLinkAddress(args)
	case "sync":
		err = runSync(args)
	case "latest":
		err = runLatest(args)
	default:
		err = fmt.Errorf("unknown command %q (expected serve, link-exchange, link-address, sync, or latest)", cmd)
	}
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// app holds the wired adapters and services shared by every command.
type app struct {
	cfg       *config.Config
	db        *sqliteadapter.DB
	snapStore *sqliteadapter.SnapshotRepo
	links     *application.LinkService
	sync      *application.SyncService
	exchanges *exchange.Registry
}

// bootstrap loads configuration, opens and migrates the database, and wires
// the adapters and services. The caller owns a.close().
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	credStore := sqliteadapter.NewCredentialRepo(db)
	addrStore := sqliteadapter.NewAddressRepo(db)
	snapStore := sqliteadapter.NewSnapshotRepo(db)

	registry := exchange.NewDefaultRegistry()
	scanner := explorer.NewScanner(cfg.ExplorerAPIKey, cfg.RetryDelay)
	prices := application.NewPriceResolver(pricefeed.NewCoinGecko(), cfg.PriceTTL)

	return &app{
		cfg:       cfg,
		db:        db,
		snapStore: snapStore,
		links:     application.NewLinkService(credStore, addrStore, registry, scanner),
		sync: application.NewSyncService(
			credStore,
			addrStore,
			snapStore,
			registry,
			scanner,
			prices,
			cfg.SyncInterval,
		),
		exchanges: registry,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// runServe starts the background sync loop and blocks until SIGINT/SIGTERM.
func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.ExplorerAPIKey == "" {
		slog.Warn("no explorer api key configured, chain scans will report empty balances")
	}

	go a.sync.Start(ctx)

	slog.Info("coinpanel started",
		"db_path", a.cfg.DBPath,
		"sync_interval", a.cfg.SyncInterval,
		"exchanges", a.exchanges.Supported(),
	)

	<-ctx.Done()
	slog.Info("shutting down")
	slog.Info("shutdown complete")
	return nil
}

// runLinkExchange validates and stores an exchange API credential.
func runLinkExchange(args []string) error {
	fs := flag.NewFlagSet("link-exchange", flag.ExitOnError)
	userID := fs.Int64("user", 1, "owner user ID")
	exchangeName := fs.String("exchange", "", "exchange name (binance, okx)")
	apiKey := fs.String("key", "", "API key")
	apiSecret := fs.String("secret", "", "API secret")
	passphrase := fs.String("passphrase", "", "API passphrase (okx only)")
	label := fs.String("label", "", "display label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	kind := model.NormalizeExchange(*exchangeName)
	id, err := a.links.LinkCredential(ctx, *userID, kind, *apiKey, *apiSecret, *passphrase, *label)
	if err != nil {
		return err
	}

	slog.Info("credential linked", "id", id, "exchange", kind, "user", *userID)
	return nil
}

// runLinkAddress stores a watched wallet address.
func runLinkAddress(args []string) error {
	fs := flag.NewFlagSet("link-address", flag.ExitOnError)
	userID := fs.Int64("user", 1, "owner user ID")
	network := fs.String("network", "", "network name (ethereum, bsc, polygon, arbitrum, optimism, tron)")
	address := fs.String("address", "", "wallet address")
	label := fs.String("label", "", "display label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	net := model.NormalizeNetwork(*network)
	id, err := a.links.LinkAddress(ctx, *userID, net, *address, *label)
	if err != nil {
		return err
	}

	slog.Info("address linked", "id", id, "network", net, "user", *userID)
	return nil
}

// runSync performs one manual sync for a user and reports the outcome.
func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	userID := fs.Int64("user", 1, "user ID to sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	result := a.sync.SyncUser(ctx, *userID, model.SnapshotSourceManual)
	if result.Err != nil {
		return result.Err
	}
	if !result.Success {
		return fmt.Errorf("sync completed but every source failed for user %d", *userID)
	}

	slog.Info("sync complete", "user", *userID, "assets", result.AssetsCount)
	return nil
}

// runLatest prints the most recent snapshot for a user.
func runLatest(args []string) error {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	userID := fs.Int64("user", 1, "user ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.snapStore.Latest(ctx, *userID)
	if err != nil {
		return err
	}
	if snap == nil {
		fmt.Printf("no snapshots for user %d\n", *userID)
		return nil
	}

	fmt.Printf("snapshot %d (%s) at %s\n", snap.ID, snap.Source, snap.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("total: %s USD / %s TWD\n", snap.TotalValueUSD.StringFixed(2), snap.TotalValueTWD.StringFixed(2))
	for key, asset := range snap.Assets {
		fmt.Printf("  %-24s %s\n", key, asset.Total.String())
	}
	return nil
}

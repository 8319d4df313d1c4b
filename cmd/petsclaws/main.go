// Package main implements the petsclaws command, a pet supply storefront.
//
// `petsclaws serve` runs the JSON API for remote shoppers. Every other
// command works directly on the same record store for a single local
// shopper, who is either signed in (the current-user pointer) or the local
// guest.
//
// Architecture:
//
//	┌──────────────────────────────────────────────┐
//	│                  petsclaws                    │
//	├──────────────────────────────────────────────┤
//	│  serve       - HTTP API (httpapi.Server)      │
//	│  ping        - health check of a server       │
//	│  products    - browse the catalog             │
//	│  cart        - the local cart                 │
//	│  register, login, logout, whoami, profile     │
//	│  favorites, checkout, orders, reviews, theme  │
//	├──────────────────────────────────────────────┤
//	│  storefront.Storefront over storage.Store     │
//	│  (memory | sqlite | postgres)                 │
//	└──────────────────────────────────────────────┘
//
// Configuration is read from --config (YAML), a .env file and the
// environment; see package config.
//
// Example usage:
//
//	JWT_SECRET=change-me petsclaws serve --listen :8080
//
//	petsclaws products list --pet-type cat --sort price_asc
//	petsclaws cart add 2 --quantity 2
//	petsclaws login --email a@x.com --password secret1
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/config"
	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/storage"
	"github.com/dreamware/petsclaws/internal/storefront"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

var defaultConfigPath = filepath.Join(".petsclaws", "config.yaml")

// app is the state shared by every command of one invocation.
type app struct {
	cfgPath  string
	verbose  bool
	cfg      *config.Config
	logger   *zap.Logger
	shopOpts []identity.Option
}

func newRootCmd(opts ...identity.Option) *cobra.Command {
	a := &app{shopOpts: opts}

	root := &cobra.Command{
		Use:           "petsclaws",
		Short:         "Pet supply storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", defaultConfigPath, "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.serveCmd(),
		a.pingCmd(),
		a.productsCmd(),
		a.cartCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
		a.favoritesCmd(),
		a.checkoutCmd(),
		a.ordersCmd(),
		a.reviewsCmd(),
		a.themeCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	zc := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.Log.Level); err == nil {
		zc.Level = lvl
	}
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// openShop opens the configured store and builds the storefront over it.
// The caller closes the returned store.
func (a *app) openShop(ctx context.Context) (*storefront.Storefront, *storage.MeteredStore, error) {
	backend, err := storage.Open(a.cfg.Store.Driver, a.cfg.Store.Path, a.cfg.Store.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	store := storage.NewMeteredStore(backend)

	cat, err := a.loadCatalog()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	shop := storefront.New(store, cat, a.logger, a.shopOpts...)
	if err := shop.Seed(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("seed store: %w", err)
	}
	a.logger.Debug("store opened",
		zap.String("driver", a.cfg.Store.Driver),
		zap.Int("products", cat.Len()))
	return shop, store, nil
}

func (a *app) loadCatalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(a.cfg.Catalog.Path)
}

// withShop adapts a command body that needs the storefront.
func (a *app) withShop(run func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		shop, store, err := a.openShop(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		return run(cmd, args, shop)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

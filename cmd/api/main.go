package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/safar/minimarket/internal/api"
	"github.com/safar/minimarket/internal/config"
	"github.com/safar/minimarket/internal/logging"
	"github.com/safar/minimarket/internal/seed"
	"github.com/safar/minimarket/internal/store"
)

type rootOptions struct {
	port     string
	seedFile string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "minimarket",
		Short:        "In-memory store backend for products, customers and sales",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.port, "port", "p", "", "listen port (overrides SERVER_PORT)")
	cmd.PersistentFlags().StringVar(&opts.seedFile, "seed", "", "YAML seed file (overrides SEED_FILE)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Print the startup data as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSeed(cmd, opts)
		},
	})

	return cmd
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.seedFile != "" {
		cfg.Seed.Path = opts.seedFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type stores struct {
	catalog   *store.Catalog
	customers *store.CustomerStore
	ledger    *store.Ledger
	engine    *store.SaleEngine
}

func newStores(seedPath string) (*stores, error) {
	data, err := seed.Load(seedPath)
	if err != nil {
		return nil, err
	}

	s := &stores{
		catalog:   store.NewCatalog(nil),
		customers: store.NewCustomerStore(nil),
		ledger:    store.NewLedger(),
	}
	if err := data.Apply(s.catalog, s.customers); err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	s.engine = store.NewSaleEngine(s.catalog, s.customers, s.ledger)
	return s, nil
}

func runServe(opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	s, err := newStores(cfg.Seed.Path)
	if err != nil {
		return err
	}
	logger.Info("stores seeded",
		"products", s.catalog.Len(),
		"customers", len(s.customers.List()),
		"seed_file", cfg.Seed.Path,
	)

	handler := api.New(api.Deps{
		Catalog:        s.catalog,
		Customers:      s.customers,
		Ledger:         s.ledger,
		Engine:         s.engine,
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("shutting down; in-memory data will be discarded")
				return server.Shutdown(ctx)
			},
		},
	)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case code := <-wait:
		if code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}
		return nil
	}
}

func printSeed(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	s, err := newStores(cfg.Seed.Path)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(map[string]any{
		"products":  s.catalog.List(),
		"customers": s.customers.List(),
	})
}

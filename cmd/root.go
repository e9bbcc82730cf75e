package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/config"
	"github.com/gresik-digital/expansion-cli/internal/store"
	"github.com/gresik-digital/expansion-cli/pkg/portal"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "expansion-cli",
	Short: "Expansion analysis for cement distribution networks",
	Long:  "Scores candidate distributor locations against demand, logistics, and overlap with the existing network, and finds uncovered demand hotspots.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == "sqlite" {
		return store.NewSQLite(cfg.Store.SQLitePath)
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
}

// portalClient builds a portal client from configuration.
func portalClient() (portal.Client, error) {
	if err := cfg.Validate("portal"); err != nil {
		return nil, err
	}
	return portal.NewClient(cfg.Portal.BaseURL, cfg.Portal.APIKey,
		portal.WithTimeout(time.Duration(cfg.Portal.TimeoutSecs)*time.Second),
		portal.WithRateLimit(cfg.Portal.RatePerSec, int(cfg.Portal.RatePerSec)+1),
		portal.WithMaxRetries(cfg.Portal.MaxRetries),
	), nil
}

// printJSON writes an indented JSON document to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

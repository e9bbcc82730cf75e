package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/model"
	"github.com/gresik-digital/expansion-cli/internal/portalsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull demand grid and logistics data from the portal",
	Long:  "Fetches the logistics snapshot (distributors, warehouses) and the demand grid for the configured region, and replaces the local copies.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		client, err := portalClient()
		if err != nil {
			return err
		}

		syncer := &portalsync.Syncer{
			Store:   st,
			Client:  client,
			Workers: cfg.Sync.SiteProfileWorkers,
		}

		bbox := model.BBox{
			MinLat: cfg.Sync.MinLat,
			MinLng: cfg.Sync.MinLng,
			MaxLat: cfg.Sync.MaxLat,
			MaxLng: cfg.Sync.MaxLng,
		}
		res, err := syncer.Run(ctx, cfg.Sync.Region, bbox)
		if err != nil {
			return eris.Wrap(err, "sync")
		}

		zap.L().Info("sync finished",
			zap.String("region", cfg.Sync.Region),
			zap.Int64("distributors", res.Distributors),
			zap.Int64("warehouses", res.Warehouses),
			zap.Int64("demand_cells", res.DemandCells),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/grid"
	"github.com/gresik-digital/expansion-cli/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import master data from XLSX workbooks",
}

var importDistributorsCmd = &cobra.Command{
	Use:   "distributors <file.xlsx>",
	Short: "Import distributor master data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sheet, _ := cmd.Flags().GetString("sheet")
		distributors, err := importer.ReadDistributors(args[0], importer.XLSXOptions{SheetName: sheet})
		if err != nil {
			return err
		}
		if len(distributors) == 0 {
			return eris.Errorf("import: no usable distributor rows in %s", args[0])
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertDistributors(ctx, distributors)
		if err != nil {
			return eris.Wrap(err, "import distributors")
		}

		zap.L().Info("imported distributors",
			zap.String("file", args[0]),
			zap.Int64("count", n),
		)
		return nil
	},
}

var importWarehousesCmd = &cobra.Command{
	Use:   "warehouses <file.xlsx>",
	Short: "Import warehouse master data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sheet, _ := cmd.Flags().GetString("sheet")
		warehouses, err := importer.ReadWarehouses(args[0], importer.XLSXOptions{SheetName: sheet})
		if err != nil {
			return err
		}
		if len(warehouses) == 0 {
			return eris.Errorf("import: no usable warehouse rows in %s", args[0])
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertWarehouses(ctx, warehouses)
		if err != nil {
			return eris.Wrap(err, "import warehouses")
		}

		zap.L().Info("imported warehouses",
			zap.String("file", args[0]),
			zap.Int64("count", n),
		)
		return nil
	},
}

var importBoundaryCmd = &cobra.Command{
	Use:   "boundary <file.shp>",
	Short: "Import a region boundary shapefile",
	Long:  "Loads the region's service-area polygon from a shapefile and stores it for grid clipping.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		region, _ := cmd.Flags().GetString("region")
		region = regionOrDefault(region)
		if region == "" {
			return eris.New("import boundary: --region or sync.region is required")
		}

		boundary, err := grid.LoadBoundary(args[0])
		if err != nil {
			return err
		}
		geom, err := boundary.EWKB()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveBoundary(ctx, region, geom); err != nil {
			return eris.Wrap(err, "import boundary")
		}

		bbox := boundary.BBox()
		zap.L().Info("imported boundary",
			zap.String("region", region),
			zap.Float64("min_lat", bbox.MinLat),
			zap.Float64("min_lng", bbox.MinLng),
			zap.Float64("max_lat", bbox.MaxLat),
			zap.Float64("max_lng", bbox.MaxLng),
		)
		return nil
	},
}

func init() {
	importDistributorsCmd.Flags().String("sheet", "", "sheet name (defaults to the first sheet)")
	importWarehousesCmd.Flags().String("sheet", "", "sheet name (defaults to the first sheet)")
	importBoundaryCmd.Flags().String("region", "", "region key (defaults to sync.region)")
	importCmd.AddCommand(importDistributorsCmd)
	importCmd.AddCommand(importWarehousesCmd)
	importCmd.AddCommand(importBoundaryCmd)
	rootCmd.AddCommand(importCmd)
}

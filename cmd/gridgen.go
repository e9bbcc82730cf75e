package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/grid"
	"github.com/gresik-digital/expansion-cli/internal/model"
)

var gridGenCmd = &cobra.Command{
	Use:   "grid-gen",
	Short: "Generate candidate analysis cells",
	Long:  "Enumerates cell centers over the configured bounding box (or a boundary shapefile) at the configured spacing. The output feeds batch scoring.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "grid-gen"))

		cellKM, _ := cmd.Flags().GetFloat64("cell-km")
		boundaryPath, _ := cmd.Flags().GetString("boundary")
		region, _ := cmd.Flags().GetString("region")
		if cellKM == 0 {
			cellKM = cfg.Sync.CellKM
		}

		var (
			centers []model.GeoPoint
			err     error
		)
		switch {
		case boundaryPath != "":
			boundary, loadErr := grid.LoadBoundary(boundaryPath)
			if loadErr != nil {
				return loadErr
			}
			centers, err = grid.CellsWithin(boundary, cellKM)

		case region != "":
			ctx := cmd.Context()
			st, openErr := openStore(ctx)
			if openErr != nil {
				return openErr
			}
			defer st.Close() //nolint:errcheck

			geomBytes, getErr := st.GetBoundary(ctx, region)
			if getErr != nil {
				return getErr
			}
			if geomBytes == nil {
				return eris.Errorf("grid-gen: no boundary stored for region %q (run import boundary first)", region)
			}
			boundary, decErr := grid.BoundaryFromEWKB(geomBytes)
			if decErr != nil {
				return decErr
			}
			centers, err = grid.CellsWithin(boundary, cellKM)

		default:
			bbox := model.BBox{
				MinLat: cfg.Sync.MinLat,
				MinLng: cfg.Sync.MinLng,
				MaxLat: cfg.Sync.MaxLat,
				MaxLng: cfg.Sync.MaxLng,
			}
			if bbox.MinLat == 0 && bbox.MaxLat == 0 && bbox.MinLng == 0 && bbox.MaxLng == 0 {
				return eris.New("grid-gen: configure sync.min_lat/min_lng/max_lat/max_lng, or pass --boundary or --region")
			}
			centers, err = grid.Cells(bbox, cellKM)
		}
		if err != nil {
			return eris.Wrap(err, "grid-gen")
		}

		log.Info("generated cells",
			zap.Int("count", len(centers)),
			zap.Float64("cell_km", cellKM),
		)
		return printJSON(centers)
	},
}

func init() {
	gridGenCmd.Flags().Float64("cell-km", 0, "cell spacing in km (defaults to sync.cell_km)")
	gridGenCmd.Flags().String("boundary", "", "polygon shapefile to clip the grid to")
	gridGenCmd.Flags().String("region", "", "clip to the boundary stored for this region")
	rootCmd.AddCommand(gridGenCmd)
}

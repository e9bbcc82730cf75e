package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/expansion"
	"github.com/gresik-digital/expansion-cli/internal/model"
	"github.com/gresik-digital/expansion-cli/internal/portalsync"
	"github.com/gresik-digital/expansion-cli/pkg/portal"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Find uncovered demand hotspots",
	Long:  "Filters the demand grid to cells outside every distributor catchment, ranks the strongest, and summarizes which direction the opportunity lies in.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "hotspots"))

		region, _ := cmd.Flags().GetString("region")
		enrich, _ := cmd.Flags().GetBool("enrich")

		var ref *model.GeoPoint
		if cmd.Flags().Changed("ref-lat") || cmd.Flags().Changed("ref-lng") {
			refLat, _ := cmd.Flags().GetFloat64("ref-lat")
			refLng, _ := cmd.Flags().GetFloat64("ref-lng")
			ref = &model.GeoPoint{Lat: refLat, Lng: refLng}
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cells, err := st.ListDemandCells(ctx, regionOrDefault(region))
		if err != nil {
			return eris.Wrap(err, "hotspots: list demand cells")
		}
		distributors, err := st.ListDistributors(ctx)
		if err != nil {
			return eris.Wrap(err, "hotspots: list distributors")
		}

		uncovered := expansion.Whitespace(cells, distributors)
		hotspots := expansion.ComputeHotspots(uncovered, ref)

		out := struct {
			Hotspots   []expansion.Hotspot   `json:"hotspots"`
			Direction  string                `json:"direction"`
			RoadWidths []*portal.SiteProfile `json:"road_widths,omitempty"`
		}{
			Hotspots:  hotspots,
			Direction: expansion.DirectionSummary(hotspots),
		}

		// Optionally pull road attributes for each hotspot from the portal.
		if enrich && len(hotspots) > 0 {
			client, err := portalClient()
			if err != nil {
				return err
			}
			syncer := &portalsync.Syncer{Store: st, Client: client, Workers: cfg.Sync.SiteProfileWorkers}
			points := make([]model.GeoPoint, len(hotspots))
			for i, h := range hotspots {
				points[i] = h.Center
			}
			profiles, err := syncer.SiteProfiles(ctx, points)
			if err != nil {
				log.Warn("site profile enrichment failed", zap.Error(err))
			} else {
				out.RoadWidths = profiles
			}
		}

		var center model.GeoPoint
		if ref != nil {
			center = *ref
		}
		if err := saveRun(ctx, st, "hotspots", regionOrDefault(region), center, 0, out); err != nil {
			log.Warn("failed to persist analysis run", zap.Error(err))
		}

		log.Info("computed hotspots",
			zap.Int("uncovered_cells", len(uncovered)),
			zap.Int("hotspots", len(hotspots)),
		)
		return printJSON(out)
	},
}

func init() {
	hotspotsCmd.Flags().String("region", "", "demand grid region (defaults to sync.region)")
	hotspotsCmd.Flags().Float64("ref-lat", 0, "reference latitude for quadrant labels")
	hotspotsCmd.Flags().Float64("ref-lng", 0, "reference longitude for quadrant labels")
	hotspotsCmd.Flags().Bool("enrich", false, "fetch road attributes for each hotspot from the portal")
	rootCmd.AddCommand(hotspotsCmd)
}

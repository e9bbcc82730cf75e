package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/expansion"
	"github.com/gresik-digital/expansion-cli/internal/model"
	"github.com/gresik-digital/expansion-cli/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate distributor location",
	Long:  "Computes the opportunity score for a coordinate: demand, cannibalization, road access, and warehouse proximity, with guardrails and a go/no-go checklist.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "score"))

		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		radius, _ := cmd.Flags().GetFloat64("radius")
		selectedID, _ := cmd.Flags().GetInt64("selected-id")
		region, _ := cmd.Flags().GetString("region")

		var roadWidth *float64
		if cmd.Flags().Changed("road-width") {
			w, _ := cmd.Flags().GetFloat64("road-width")
			roadWidth = &w
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		distributors, err := st.ListDistributors(ctx)
		if err != nil {
			return eris.Wrap(err, "score: list distributors")
		}
		warehouses, err := st.ListWarehouses(ctx)
		if err != nil {
			return eris.Wrap(err, "score: list warehouses")
		}
		cells, err := st.ListDemandCells(ctx, regionOrDefault(region))
		if err != nil {
			return eris.Wrap(err, "score: list demand cells")
		}

		center := model.GeoPoint{Lat: lat, Lng: lng}

		// Ask the portal for road width when the caller did not supply one.
		if roadWidth == nil && cfg.Portal.BaseURL != "" {
			client, err := portalClient()
			if err != nil {
				return err
			}
			profile, err := client.SiteProfile(ctx, center)
			if err != nil {
				log.Warn("site profile lookup failed, scoring without road width", zap.Error(err))
			} else {
				roadWidth = profile.RoadWidthM
			}
		}

		result := expansion.ComputeOpportunityScore(expansion.ScoreInput{
			Center:       center,
			RadiusKm:     radius,
			SelectedID:   selectedID,
			Distributors: distributors,
			Warehouses:   warehouses,
			Cells:        cells,
			RoadWidthM:   roadWidth,
		})

		if err := saveRun(ctx, st, "score", regionOrDefault(region), center, radius, result); err != nil {
			log.Warn("failed to persist analysis run", zap.Error(err))
		}

		log.Info("scored candidate location",
			zap.Float64("score", result.Score),
			zap.String("risk", string(result.Risk)),
		)
		return printJSON(result)
	},
}

func regionOrDefault(region string) string {
	if region != "" {
		return region
	}
	return cfg.Sync.Region
}

// saveRun persists an analysis result for the status and runs listings.
func saveRun(ctx context.Context, st store.Store, kind, region string, center model.GeoPoint, radiusKm float64, result any) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "marshal analysis result")
	}
	return st.SaveAnalysis(ctx, &store.AnalysisRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Region:    region,
		Center:    center,
		RadiusKm:  radiusKm,
		Result:    payload,
		CreatedAt: time.Now().UTC(),
	})
}

func init() {
	scoreCmd.Flags().Float64("lat", 0, "candidate latitude (required)")
	scoreCmd.Flags().Float64("lng", 0, "candidate longitude (required)")
	scoreCmd.Flags().Float64("radius", model.DefaultServiceRadiusKm, "service radius in km")
	scoreCmd.Flags().Int64("selected-id", 0, "distributor id to exclude from overlap checks")
	scoreCmd.Flags().Float64("road-width", 0, "road width in meters at the candidate site")
	scoreCmd.Flags().String("region", "", "demand grid region (defaults to sync.region)")
	_ = scoreCmd.MarkFlagRequired("lat")
	_ = scoreCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(scoreCmd)
}

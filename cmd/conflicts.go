package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/expansion"
	"github.com/gresik-digital/expansion-cli/internal/model"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List catchment overlaps with existing distributors",
	Long:  "Computes pairwise catchment overlaps between a candidate location and every existing distributor, with severity labels and the aggregate cannibalization percentage.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "conflicts"))

		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		radius, _ := cmd.Flags().GetFloat64("radius")
		selectedID, _ := cmd.Flags().GetInt64("selected-id")
		region, _ := cmd.Flags().GetString("region")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		distributors, err := st.ListDistributors(ctx)
		if err != nil {
			return eris.Wrap(err, "conflicts: list distributors")
		}

		center := model.GeoPoint{Lat: lat, Lng: lng}
		conflicts := expansion.ComputeConflicts(selectedID, center, radius, distributors)

		out := struct {
			Conflicts          []expansion.Conflict `json:"conflicts"`
			CannibalizationPct float64              `json:"cannibalization_pct"`
		}{
			Conflicts:          conflicts,
			CannibalizationPct: expansion.CannibalizationPct(conflicts),
		}

		if err := saveRun(ctx, st, "conflicts", regionOrDefault(region), center, radius, out); err != nil {
			log.Warn("failed to persist analysis run", zap.Error(err))
		}

		log.Info("computed conflicts",
			zap.Int("count", len(conflicts)),
			zap.Float64("cannibalization_pct", out.CannibalizationPct),
		)
		return printJSON(out)
	},
}

func init() {
	conflictsCmd.Flags().Float64("lat", 0, "candidate latitude (required)")
	conflictsCmd.Flags().Float64("lng", 0, "candidate longitude (required)")
	conflictsCmd.Flags().Float64("radius", model.DefaultServiceRadiusKm, "service radius in km")
	conflictsCmd.Flags().Int64("selected-id", 0, "distributor id to exclude from overlap checks")
	conflictsCmd.Flags().String("region", "", "region recorded on the analysis run")
	_ = conflictsCmd.MarkFlagRequired("lat")
	_ = conflictsCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(conflictsCmd)
}

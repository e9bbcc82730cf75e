package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gresik-digital/expansion-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local data coverage and recent analysis runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		region, _ := cmd.Flags().GetString("region")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		distributors, err := st.ListDistributors(ctx)
		if err != nil {
			return eris.Wrap(err, "status: list distributors")
		}
		warehouses, err := st.ListWarehouses(ctx)
		if err != nil {
			return eris.Wrap(err, "status: list warehouses")
		}
		cells, err := st.ListDemandCells(ctx, regionOrDefault(region))
		if err != nil {
			return eris.Wrap(err, "status: list demand cells")
		}
		runs, err := st.ListAnalyses(ctx, 5)
		if err != nil {
			return eris.Wrap(err, "status: list analysis runs")
		}

		out := struct {
			Region       string              `json:"region"`
			Distributors int                 `json:"distributors"`
			Warehouses   int                 `json:"warehouses"`
			DemandCells  int                 `json:"demand_cells"`
			RecentRuns   []store.AnalysisRun `json:"recent_runs"`
		}{
			Region:       regionOrDefault(region),
			Distributors: len(distributors),
			Warehouses:   len(warehouses),
			DemandCells:  len(cells),
			RecentRuns:   runs,
		}
		return printJSON(out)
	},
}

func init() {
	statusCmd.Flags().String("region", "", "demand grid region (defaults to sync.region)")
	rootCmd.AddCommand(statusCmd)
}

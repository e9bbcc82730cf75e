package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	Long:  "Applies all pending schema migrations for the configured store backend.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		zap.L().Info("all migrations applied successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

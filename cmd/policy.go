package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gresik-digital/expansion-cli/internal/expansion"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the scoring policy",
	Long:  "Emits the road and warehouse breakpoint tables, component weights, risk bands, and guardrail thresholds as YAML for review.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck

		if err := enc.Encode(expansion.CurrentPolicy()); err != nil {
			return eris.Wrap(err, "policy: encode")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}

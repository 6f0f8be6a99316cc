package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffSchema string

// diffCmd prints the diff between the database and a configuration document.
var diffCmd = &cobra.Command{
	Use:       "diff validators|subnets",
	Short:     "Print the diff between the database and a configuration document",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"validators", "subnets"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var diff string
		switch args[0] {
		case "validators":
			plan, err := a.validatorsFeature().Service().Plan(ctx, diffSchema)
			if err != nil {
				return fmt.Errorf("failed to diff validators: %w", err)
			}
			diff = plan.Diff
		case "subnets":
			plan, err := a.subnetsFeature().Service().Diff(ctx)
			if err != nil {
				return fmt.Errorf("failed to diff subnets: %w", err)
			}
			diff = plan.Diff
		}
		printDiff(cmd.OutOrStdout(), diff)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffSchema, "schema", "", "core or validator_manager (validators only)")
	RootCmd.AddCommand(diffCmd)
}

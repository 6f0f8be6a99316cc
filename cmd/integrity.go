package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonOutput bool

// integrityCmd runs the schema and document checks.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the database schema and the configuration documents",
	Long: `Compares the tables of both schemas with their models and validates the
validators and subnets documents. Exits non-zero when a problem is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.integrityFeature().Service().CheckAll(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, s := range report.Schemas {
				a.logger.Info("Schema", zap.String("schema", s.Schema), zap.Bool("matched", s.Matched),
					zap.Strings("errors", s.Errors), zap.Any("rows", s.Rows))
				for table, t := range s.Tables {
					if t.Status != "ok" {
						a.logger.Warn("Table problem", zap.String("table", table), zap.Bool("missing_table", t.MissingTable),
							zap.Strings("missing_columns", t.MissingColumns), zap.Strings("type_mismatches", t.TypeMismatches))
					}
				}
			}
			for _, d := range report.Documents {
				a.logger.Info("Document", zap.String("location", d.Location), zap.String("status", d.Status),
					zap.Int("entries", d.Entries), zap.Strings("problems", d.Problems))
			}
		}

		if !report.Healthy {
			return fmt.Errorf("integrity problems found")
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")
	RootCmd.AddCommand(integrityCmd)
}

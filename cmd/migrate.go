package cmd

import (
	"fmt"

	"auto-validator/core/database"
	"auto-validator/feature/validators/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkOnly bool

// migrateCmd creates or updates the tables of both schemas.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long: `Runs the automatic migration for the core and validator_manager schemas.
With --check nothing is changed and missing tables or columns are reported instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !checkOnly {
			if err := models.Migrate(a.db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			a.logger.Info("Migration completed")
		}

		expected := map[string][]string{}
		for _, schema := range models.Schemas() {
			for table, columns := range schema.ExpectedColumns() {
				expected[table] = columns
			}
		}
		issues, err := database.VerifyTables(a.db, expected)
		if err != nil {
			return fmt.Errorf("failed to inspect schema: %w", err)
		}
		for _, issue := range issues {
			a.logger.Warn("Schema issue", zap.String("issue", issue.String()))
		}
		if len(issues) > 0 {
			return fmt.Errorf("%d tables need migration", len(issues))
		}
		a.logger.Info("Schema verified", zap.Int("tables", len(expected)))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only report missing tables and columns")
	RootCmd.AddCommand(migrateCmd)
}

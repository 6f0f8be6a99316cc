package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncSchema string
	syncDryRun bool
	yesConfirm bool
)

// syncCmd is the parent command for sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the database with the configuration documents",
	Long: `Compares the database with the configuration documents, prints the diff
and applies it after confirmation.

Examples:
  # Preview only
  sync validators --dry-run

  # Sync the validator_manager schema without prompting
  sync validators --schema validator_manager --yes

  # Sync subnets
  sync subnets`,
}

var syncValidatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "Sync validators, hotkeys and subnet membership",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		svc := a.validatorsFeature().Service()

		preview, err := svc.Sync(ctx, syncSchema, true)
		if err != nil {
			return fmt.Errorf("failed to plan validator sync: %w", err)
		}
		printDiff(cmd.OutOrStdout(), preview.Diff)
		a.logger.Info("Validator sync plan",
			zap.String("schema", preview.Schema),
			zap.Int("external", preview.Summary.TotalExternal),
			zap.Int("persisted", preview.Summary.TotalPersisted),
			zap.Int("new", preview.Summary.New),
			zap.Int("changed", preview.Summary.Changed),
			zap.Int("untracked", preview.Summary.Untracked),
		)

		if syncDryRun {
			a.logger.Info("Dry-run mode: No changes were made.")
			return nil
		}
		if preview.Summary.InSync() {
			a.logger.Info("Already in sync.")
			return nil
		}
		if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout()) {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		report, err := svc.Sync(ctx, syncSchema, false)
		if err != nil {
			return fmt.Errorf("failed to sync validators: %w", err)
		}
		r := report.Result
		a.logger.Info("Validators synced",
			zap.String("schema", report.Schema),
			zap.Int("validators", r.Validators),
			zap.Int("subnets_created", r.SubnetsCreated),
			zap.Int("subnets_skipped", r.SubnetsSkipped),
			zap.Int("hotkeys_created", r.HotkeysCreated),
			zap.Int("hotkeys_deleted", r.HotkeysDeleted),
		)
		return nil
	},
}

var syncSubnetsCmd = &cobra.Command{
	Use:   "subnets",
	Short: "Upsert subnets by codename",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		svc := a.subnetsFeature().Service()

		preview, err := svc.Sync(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to plan subnet sync: %w", err)
		}
		printDiff(cmd.OutOrStdout(), preview.Diff)

		if syncDryRun {
			a.logger.Info("Dry-run mode: No changes were made.")
			return nil
		}
		if preview.Diff == "" {
			a.logger.Info("Already in sync.")
			return nil
		}
		if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout()) {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		report, err := svc.Sync(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to sync subnets: %w", err)
		}
		a.logger.Info("Subnets synced", zap.Int("created", report.Created), zap.Int("updated", report.Updated))
		return nil
	},
}

func init() {
	syncCmd.PersistentFlags().BoolVar(&syncDryRun, "dry-run", false, "Only print the diff")
	syncCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm (non-interactive)")
	syncValidatorsCmd.Flags().StringVar(&syncSchema, "schema", "", "core or validator_manager (default from server.default_schema)")

	syncCmd.AddCommand(syncValidatorsCmd, syncSubnetsCmd)
	RootCmd.AddCommand(syncCmd)
}

func printDiff(w io.Writer, diff string) {
	if diff == "" {
		fmt.Fprintln(w, "No differences.")
		return
	}
	fmt.Fprintln(w, diff)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to apply these changes: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

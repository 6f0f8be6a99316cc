package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dumperCmd prints the dumper commands of a subnet.
var dumperCmd = &cobra.Command{
	Use:   "dumper-commands <identifier>",
	Short: "Print the dumper commands of a subnet",
	Long: `Looks the subnet up in the subnets document by codename, mainnet netuid
(with or without an "sn" prefix) or testnet netuid and prints one command per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		commands, err := a.subnetsFeature().Service().DumperCommands(ctx, args[0])
		if err != nil {
			return err
		}
		for _, c := range commands {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dumperCmd)
}

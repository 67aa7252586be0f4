package main

import (
	"os"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command
type options struct {
	configFile string
	inventory  []string
	dryRun     bool
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "netans",
		Short:        "Ansible switch reconciler",
		Long:         `Maps network and port lifecycle events to Ansible switch tasks`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Environment file to load (default .env if present)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.inventory, "inventory", nil, "Inventory ini file, repeatable (adds to NETANS_CONFIG_FILES)")
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "Log switch tasks without running ansible-playbook")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newNetworkCmd(opts),
		newPortCmd(opts),
		newInventoryCmd(opts),
		newRenderCmd(),
	)

	return rootCmd
}

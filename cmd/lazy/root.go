package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Plugin commands are added to it by
// the registry.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lazy",
		Short: "🚀 Life Automation CLI - Automate boring digital chores with ease!",
		Long: `lazy: Life Automation CLI

Automate boring digital chores with simple, powerful commands.
Each command is a plugin that you can use or extend: drop a Go script into
~/.lazy-cli/plugins (or $LAZY_PLUGIN_DIR) and it shows up here.

Run 'lazy plugins new <name>' to start a plugin from the template.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// No Run or RunE function here - default behavior should be to show help
	}

	rootCmd.SetVersionTemplate("lazy version {{.Version}}\n")
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.lazy-cli/config.yaml, or $LAZY_CONFIG)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	return rootCmd
}

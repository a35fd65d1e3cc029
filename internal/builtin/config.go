package builtin

import (
	"fmt"

	"lazy/internal/config"
	apperrors "lazy/internal/errors"
	"lazy/internal/plugin"
	"lazy/internal/report"

	"github.com/spf13/cobra"
)

func configModule(d Deps) plugin.Module {
	return plugin.Module{
		Name: "config",
		Help: "Show and change lazy settings",
		Commands: func() []*cobra.Command {
			return []*cobra.Command{
				newConfigShowCmd(d),
				newConfigGetCmd(d),
				newConfigSetCmd(d),
				newConfigPathCmd(d),
			}
		},
	}
}

func requireStore(d Deps) (*config.Store, error) {
	if d.Store == nil {
		return nil, apperrors.NewConfigError("no config file available", "", apperrors.InvalidConfig, nil)
	}
	return d.Store, nil
}

// load reads the store, downgrading load problems to a warning
func load(d Deps, store *config.Store) *config.Config {
	cfg, err := store.Load()
	if err != nil {
		d.Reporter.Warning(fmt.Sprintf("Could not load config: %v", err))
	}
	return cfg
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func newConfigShowCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireStore(d)
			if err != nil {
				return err
			}
			cfg := load(d, store)

			var rows [][]string
			for _, key := range config.Keys() {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				if value == "" {
					value = "-"
				}
				rows = append(rows, []string{key, value, config.Help(key)})
			}
			d.Reporter.Table("Configuration", []string{"Key", "Value", "Description"}, rows,
				[]report.Align{report.AlignLeft, report.AlignLeft, report.AlignLeft})
			d.Reporter.Println(fmt.Sprintf("File: %s", store.Path))
			return nil
		},
	}
}

func newConfigGetCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Print one setting",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireStore(d)
			if err != nil {
				return err
			}
			value, err := load(d, store).Get(args[0])
			if err != nil {
				return err
			}
			d.Reporter.Println(value)
			return nil
		},
	}
}

func newConfigSetCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting and save the config file. An empty value resets the
key. stock_watchlist takes a comma-separated list.

The file is read and written again without locking: when two invocations
set values at the same time, the last one to write wins.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireStore(d)
			if err != nil {
				return err
			}
			key, value := args[0], args[1]

			cfg := load(d, store)
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := store.Save(cfg); err != nil {
				return err
			}

			stored, _ := cfg.Get(key)
			d.Reporter.Success(fmt.Sprintf("Set %s = %s", key, stored))
			return nil
		},
	}
}

func newConfigPathCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireStore(d)
			if err != nil {
				return err
			}
			d.Reporter.Println(store.Path)
			return nil
		},
	}
}

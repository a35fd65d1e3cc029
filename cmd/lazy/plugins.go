package main

import (
	"fmt"

	"lazy/internal/plugin"
	"lazy/internal/report"

	"github.com/spf13/cobra"
)

// NewPluginsCmd creates the plugins command
func NewPluginsCmd(registry *plugin.Registry, rep report.Reporter, dir string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List available plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := registry.ListInfo()
			if len(infos) == 0 {
				rep.Warning("No plugins found.")
			} else {
				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					rows = append(rows, []string{info.Name, info.Help, info.Source})
				}
				rep.Table("Available Plugins", []string{"Name", "Description", "Source"}, rows, nil)
			}
			rep.Println(fmt.Sprintf("Plugin directory: %s", dir))
			return nil
		},
	}

	cmd.AddCommand(newPluginsNewCmd(rep, dir))
	return cmd
}

func newPluginsNewCmd(rep report.Reporter, dir string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a script plugin from the template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := plugin.NewScript(dir, args[0], description)
			if err != nil {
				return err
			}
			rep.Success(fmt.Sprintf("Created %s", path))
			rep.Info(fmt.Sprintf("Try it with: lazy %s --help", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "help text of the new plugin")
	return cmd
}

// Package plugin assembles the command set of lazy at startup. Candidates
// come from a static list of compiled-in modules and from Go scripts in the
// plugin directory; each one is loaded in isolation, checked against the
// plugin contract and, when it qualifies, registered on the root command.
package plugin

import (
	"fmt"
	"strings"

	apperrors "lazy/internal/errors"

	"github.com/spf13/cobra"
)

// DefaultHelp is used for modules that do not describe themselves
const DefaultHelp = "No description available"

// Kind tells how a plugin contributes commands
type Kind int

const (
	// KindGroup plugins contribute a parent command with named subcommands
	KindGroup Kind = iota
	// KindSingle plugins contribute one leaf command
	KindSingle
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindSingle:
		return "single"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Module is what a loaded candidate exposes. Name is required; at least one
// of Commands or Command must be set. When both are set the group wins.
type Module struct {
	Name string
	Help string

	// Commands builds the subcommands of a group plugin
	Commands func() []*cobra.Command
	// Command builds the leaf command of a single-command plugin
	Command func() *cobra.Command
}

// Builtin is a compiled-in candidate
type Builtin struct {
	Source string
	Load   func() (Module, error)
}

// Descriptor is a validated plugin ready to be registered
type Descriptor struct {
	Name   string
	Help   string
	Source string
	Kind   Kind

	group  func() []*cobra.Command
	single func() *cobra.Command
}

// Info is the listing view of a descriptor
type Info struct {
	Name   string
	Help   string
	Source string
}

// Info returns the listing view of d
func (d Descriptor) Info() Info {
	return Info{Name: d.Name, Help: d.Help, Source: d.Source}
}

// adapt checks m against the plugin contract. A violation is returned as a
// PluginContract error whose message is the skip reason.
func adapt(source string, m Module) (Descriptor, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return Descriptor{}, apperrors.NewPluginError("Missing Name", source, apperrors.PluginContract, nil)
	}
	if strings.ContainsAny(name, " \t\r\n") || strings.HasPrefix(name, "-") {
		return Descriptor{}, apperrors.NewPluginError(fmt.Sprintf("Invalid Name %q", name), source, apperrors.PluginContract, nil)
	}

	help := strings.TrimSpace(m.Help)
	if help == "" {
		help = DefaultHelp
	}

	d := Descriptor{Name: name, Help: help, Source: source}
	switch {
	case m.Commands != nil:
		d.Kind = KindGroup
		d.group = m.Commands
	case m.Command != nil:
		d.Kind = KindSingle
		d.single = m.Command
	default:
		return Descriptor{}, apperrors.NewPluginError("No commands or command found", source, apperrors.PluginContract, nil)
	}
	return d, nil
}

// build creates the cobra command bound to d's name and help
func (d Descriptor) build() (*cobra.Command, error) {
	switch d.Kind {
	case KindGroup:
		parent := &cobra.Command{
			Use:   d.Name,
			Short: d.Help,
		}
		for _, child := range d.group() {
			if child != nil {
				parent.AddCommand(child)
			}
		}
		if !parent.HasSubCommands() {
			return nil, apperrors.NewPluginError("group has no commands", d.Source, apperrors.PluginContract, nil)
		}
		return parent, nil

	case KindSingle:
		cmd := d.single()
		if cmd == nil {
			return nil, apperrors.NewPluginError("command factory returned nil", d.Source, apperrors.PluginContract, nil)
		}
		cmd.Use = d.Name + strings.TrimPrefix(cmd.Use, cmd.Name())
		cmd.Short = d.Help
		return cmd, nil
	}
	return nil, apperrors.NewPluginError(fmt.Sprintf("unknown plugin kind %s", d.Kind), d.Source, apperrors.PluginContract, nil)
}

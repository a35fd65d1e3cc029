// Package builtin holds the plugins compiled into lazy.
package builtin

import (
	"lazy/internal/config"
	"lazy/internal/organize"
	"lazy/internal/plugin"
	"lazy/internal/report"
)

// Deps are the collaborators handed to every built-in plugin
type Deps struct {
	Reporter   report.Reporter
	Prompter   report.Prompter
	Store      *config.Store
	Config     *config.Config
	Organizers organize.OrganizerFactory
}

func (d Deps) withDefaults() Deps {
	if d.Reporter == nil {
		d.Reporter = report.Discard
	}
	if d.Prompter == nil {
		d.Prompter = report.NewTerminalPrompter()
	}
	if d.Config == nil {
		d.Config = config.New()
	}
	if d.Organizers == nil {
		d.Organizers = organize.DefaultOrganizerFactory
	}
	return d
}

// List returns the compiled-in plugins in registration order
func List(d Deps) []plugin.Builtin {
	d = d.withDefaults()
	return []plugin.Builtin{
		{Source: "builtin:organize", Load: func() (plugin.Module, error) { return organizeModule(d), nil }},
		{Source: "builtin:config", Load: func() (plugin.Module, error) { return configModule(d), nil }},
	}
}

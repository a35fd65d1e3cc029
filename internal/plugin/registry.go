package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"
	"lazy/internal/report"

	"github.com/spf13/cobra"
)

// EnvDir overrides the default plugin directory
const EnvDir = "LAZY_PLUGIN_DIR"

// ReservedNames cannot be taken by plugins
var ReservedNames = []string{"help", "completion", "plugins"}

// DefaultDir returns $LAZY_PLUGIN_DIR when set, else ~/.lazy-cli/plugins.
func DefaultDir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lazy-cli", "plugins")
	}
	return filepath.Join(home, ".lazy-cli", "plugins")
}

// Options configure a Registry
type Options struct {
	// Dir holds script plugins; empty disables scripts
	Dir string
	// Builtins are discovered before any script, in order
	Builtins []Builtin
	// Reporter receives the outcome lines of LoadAll
	Reporter report.Reporter
	// Scripts evaluates files of Dir
	Scripts ScriptLoader
}

type status int

const (
	loaded status = iota
	skipped
	failed
)

// outcome is the discovery result for one candidate
type outcome struct {
	source     string
	status     status
	reason     string
	descriptor Descriptor
}

// Registry discovers plugins and registers them on a root command
type Registry struct {
	opts     Options
	outcomes []outcome
	scanned  bool
}

// New creates a registry
func New(opts Options) *Registry {
	if opts.Reporter == nil {
		opts.Reporter = report.Discard
	}
	return &Registry{opts: opts}
}

// Discover returns the descriptor of every candidate that satisfies the
// plugin contract, built-ins first, then scripts in directory order.
// Candidates are loaded once; later calls return the same result.
func (r *Registry) Discover() []Descriptor {
	var descriptors []Descriptor
	for _, o := range r.discover() {
		if o.status == loaded {
			descriptors = append(descriptors, o.descriptor)
		}
	}
	return descriptors
}

// ListInfo returns name, help and source of every discovered plugin
func (r *Registry) ListInfo() []Info {
	descriptors := r.Discover()
	infos := make([]Info, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, d.Info())
	}
	return infos
}

func (r *Registry) discover() []outcome {
	if r.scanned {
		return r.outcomes
	}
	r.scanned = true

	for _, b := range r.opts.Builtins {
		r.outcomes = append(r.outcomes, r.evaluate(b.Source, b.Load))
	}
	r.scanScripts()

	seen := make(map[string]bool)
	for i, o := range r.outcomes {
		if o.status != loaded {
			continue
		}
		if err := claimName(seen, o.descriptor); err != nil {
			r.outcomes[i] = outcome{source: o.source, status: failed, reason: reason(err)}
		}
	}
	return r.outcomes
}

// claimName rejects reserved names and names already in seen, first come
// first served.
func claimName(seen map[string]bool, d Descriptor) error {
	for _, reserved := range ReservedNames {
		if d.Name == reserved {
			return apperrors.NewPluginError(fmt.Sprintf("%q is a reserved command name", d.Name), d.Source, apperrors.DuplicatePlugin, nil)
		}
	}
	if seen[d.Name] {
		return apperrors.NewPluginError(fmt.Sprintf("duplicate plugin name %q", d.Name), d.Source, apperrors.DuplicatePlugin, nil)
	}
	seen[d.Name] = true
	return nil
}

func (r *Registry) scanScripts() {
	if r.opts.Dir == "" {
		return
	}

	files, err := scriptCandidates(r.opts.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WithFields(log.F("dir", r.opts.Dir)).Debug("Plugin directory not found")
			r.opts.Reporter.Warning(fmt.Sprintf("Plugin directory not found: %s", r.opts.Dir))
		} else {
			r.opts.Reporter.Warning(fmt.Sprintf("Cannot read plugin directory %s: %v", r.opts.Dir, err))
		}
		return
	}

	for _, path := range files {
		path := path
		r.outcomes = append(r.outcomes, r.evaluate(filepath.Base(path), func() (Module, error) {
			return r.opts.Scripts.Load(path)
		}))
	}
}

// evaluate loads one candidate inside a recover boundary and adapts it
func (r *Registry) evaluate(source string, load func() (Module, error)) outcome {
	m, err := safeLoad(source, load)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.PluginContract {
			return outcome{source: source, status: skipped, reason: reason(err)}
		}
		return outcome{source: source, status: failed, reason: reason(err)}
	}

	d, err := adapt(source, m)
	if err != nil {
		return outcome{source: source, status: skipped, reason: reason(err)}
	}
	return outcome{source: source, status: loaded, descriptor: d}
}

func safeLoad(source string, load func() (Module, error)) (m Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewPluginError("panic during load", source, apperrors.PluginLoadFailed, fmt.Errorf("%v", r))
		}
	}()
	return load()
}

// reason renders err without the module identifier, which the caller prints
func reason(err error) string {
	var pe *apperrors.PluginError
	if errors.As(err, &pe) {
		if cause := pe.Unwrap(); cause != nil {
			return fmt.Sprintf("%s: %v", pe.Message(), cause)
		}
		return pe.Message()
	}
	return err.Error()
}

// Register binds d on root under its name and help. A reserved name or a
// name already used by a root command is rejected.
func (r *Registry) Register(root *cobra.Command, d Descriptor) error {
	seen := make(map[string]bool)
	for _, existing := range root.Commands() {
		seen[existing.Name()] = true
		for _, alias := range existing.Aliases {
			seen[alias] = true
		}
	}
	if err := claimName(seen, d); err != nil {
		return err
	}

	cmd, err := d.build()
	if err != nil {
		return err
	}
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["plugin.source"] = d.Source
	root.AddCommand(cmd)
	return nil
}

// LoadAll discovers and registers every plugin, reports each outcome and a
// final count. It returns the number of registered plugins.
func (r *Registry) LoadAll(root *cobra.Command) int {
	rep := r.opts.Reporter
	count := 0

	for _, o := range r.discover() {
		fields := log.Fields{"source": o.source}
		switch o.status {
		case skipped:
			log.WithFields(fields).Debugf("Skipped plugin: %s", o.reason)
			rep.Warning(fmt.Sprintf("Skipping %s: %s", o.source, o.reason))
			continue
		case failed:
			log.WithFields(fields).Debugf("Plugin failed to load: %s", o.reason)
			rep.Error(fmt.Sprintf("Failed to load %s: %s", o.source, o.reason))
			continue
		}

		if err := r.Register(root, o.descriptor); err != nil {
			log.WithFields(fields).Debugf("Plugin rejected: %v", err)
			rep.Error(fmt.Sprintf("Failed to load %s: %s", o.source, reason(err)))
			continue
		}

		count++
		fields["name"] = o.descriptor.Name
		fields["kind"] = o.descriptor.Kind.String()
		log.WithFields(fields).Debug("Loaded plugin")
		rep.Success(fmt.Sprintf("Loaded plugin: %s", o.descriptor.Name))
	}

	if count == 0 {
		rep.Warning("No plugins loaded. Add some plugins to get started!")
	} else {
		rep.Success(fmt.Sprintf("Successfully loaded %d plugin(s)", count))
	}
	return count
}

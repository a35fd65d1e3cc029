package plugin

import (
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var (
	// scriptGlob selects plugin scripts in the plugin directory
	scriptGlob = glob.MustCompile("*.go")
	// reservedGlob marks templates and helpers that are never loaded
	reservedGlob = glob.MustCompile("{_*,*_test.go}")
)

// IsScriptCandidate reports whether a file name in the plugin directory is
// loaded as a script plugin
func IsScriptCandidate(name string) bool {
	return scriptGlob.Match(name) && !reservedGlob.Match(name)
}

// scriptCandidates lists the script files of dir in directory order
func scriptCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsScriptCandidate(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// ScriptLoader evaluates plugin scripts with the yaegi interpreter.
// A script is a main package declaring:
//
//	var Name = "hello"                 // required
//	var Help = "Say hello"             // optional
//	var Commands = map[string]string{} // group: command name -> help
//	func Dispatch(command string, args []string) error
//	func Main(args []string) error     // single command
type ScriptLoader struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Load evaluates the script at path and returns the module it exposes.
func (l ScriptLoader) Load(path string) (Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Module{}, apperrors.NewPluginError("cannot read script", filepath.Base(path), apperrors.PluginLoadFailed, err)
	}
	source := filepath.Base(path)

	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return Module{}, apperrors.NewPluginError("invalid script", source, apperrors.PluginLoadFailed, err)
	}
	if file.Name.Name != "main" {
		return Module{}, apperrors.NewPluginError(
			fmt.Sprintf("script must be package main, not %s", file.Name.Name), source, apperrors.PluginLoadFailed, nil)
	}

	i := interp.New(interp.Options{
		Stdin:  l.Stdin,
		Stdout: l.Stdout,
		Stderr: l.Stderr,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return Module{}, apperrors.NewPluginError("failed to load stdlib", source, apperrors.PluginLoadFailed, err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return Module{}, apperrors.NewPluginError("script evaluation failed", source, apperrors.PluginLoadFailed, err)
	}

	m := Module{
		Name: lookupString(i, "main.Name"),
		Help: lookupString(i, "main.Help"),
	}

	dispatch, hasDispatch := lookup(i, "main.Dispatch")
	if v, ok := lookup(i, "main.Commands"); ok && hasDispatch {
		commands, ok := v.Interface().(map[string]string)
		if !ok {
			return Module{}, apperrors.NewPluginError("Commands must be map[string]string", source, apperrors.PluginContract, nil)
		}
		fn, ok := dispatch.Interface().(func(string, []string) error)
		if !ok {
			return Module{}, apperrors.NewPluginError(
				"Dispatch must be func(command string, args []string) error", source, apperrors.PluginContract, nil)
		}
		if len(commands) > 0 {
			m.Commands = groupFactory(source, commands, fn)
		}
	}

	if v, ok := lookup(i, "main.Main"); ok && m.Commands == nil {
		fn, ok := v.Interface().(func([]string) error)
		if !ok {
			return Module{}, apperrors.NewPluginError("Main must be func(args []string) error", source, apperrors.PluginContract, nil)
		}
		m.Command = singleFactory(source, m.Name, fn)
	}

	log.WithFields(log.Fields{"script": source, "name": m.Name}).Debug("Evaluated script plugin")
	return m, nil
}

func lookup(i *interp.Interpreter, symbol string) (reflect.Value, bool) {
	v, err := i.Eval(symbol)
	if err != nil || !v.IsValid() {
		return reflect.Value{}, false
	}
	return v, true
}

func lookupString(i *interp.Interpreter, symbol string) string {
	v, ok := lookup(i, symbol)
	if !ok || v.Kind() != reflect.String {
		return ""
	}
	return v.String()
}

func groupFactory(source string, commands map[string]string, dispatch func(string, []string) error) func() []*cobra.Command {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	return func() []*cobra.Command {
		cmds := make([]*cobra.Command, 0, len(names))
		for _, name := range names {
			name := name
			cmds = append(cmds, scriptCommand(source, name, commands[name], func(args []string) error {
				return dispatch(name, args)
			}))
		}
		return cmds
	}
}

func singleFactory(source, name string, main func([]string) error) func() *cobra.Command {
	return func() *cobra.Command {
		return scriptCommand(source, name, "", main)
	}
}

// scriptCommand hands every argument to the script untouched, except a
// lone help flag.
func scriptCommand(source, name, help string, run func([]string) error) *cobra.Command {
	return &cobra.Command{
		Use:                name + " [args...]",
		Short:              help,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			return guard(source, func() error { return run(args) })
		},
	}
}

// guard turns a panic inside plugin code into an error
func guard(source string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.F("plugin", source)).Errorf("Plugin panicked: %v", r)
			err = apperrors.NewPluginError("plugin panicked", source, apperrors.PluginLoadFailed, fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

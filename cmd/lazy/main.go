package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"lazy/internal/builtin"
	"lazy/internal/config"
	"lazy/internal/log"
	"lazy/internal/plugin"
	"lazy/internal/report"

	"github.com/spf13/pflag"
)

var version = "dev"

// EnvDebug turns on debug logging and verbose plugin loading when set to 1
const EnvDebug = "LAZY_DEBUG"

// Entry point for the application
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute builds the command tree for one invocation, runs it and returns
// the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	out := report.NewConsole(stdout)
	errOut := report.NewConsole(stderr)
	log.SetOutput(stderr)

	store, err := config.NewStore(configFlag(args))
	cfg := config.New()
	if err != nil {
		errOut.Warning(err.Error())
	} else {
		loaded, err := store.Load()
		if err != nil {
			errOut.Warning("Could not load config: " + err.Error())
		}
		cfg = loaded
	}

	verbose := cfg.Verbose || os.Getenv(EnvDebug) == "1"
	log.SetDebug(verbose)

	deps := builtin.Deps{
		Reporter: out,
		Prompter: &report.TerminalPrompter{In: stdin, Out: stdout},
		Store:    store,
		Config:   cfg,
	}

	pluginDir := plugin.DefaultDir()
	registry := plugin.New(plugin.Options{
		Dir:      pluginDir,
		Builtins: builtin.List(deps),
		Reporter: errOut,
		Scripts:  plugin.ScriptLoader{Stdin: stdin, Stdout: stdout, Stderr: stderr},
	})

	root := NewRootCmd()
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(NewPluginsCmd(registry, out, pluginDir))
	registry.LoadAll(root)

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			errOut.Warning("Interrupted.")
			return 130
		}
		errOut.Error(err.Error())
		return 1
	}
	return 0
}

// configFlag finds --config before cobra parses the command line; plugins
// are registered from the config before the command tree exists.
func configFlag(args []string) string {
	fs := pflag.NewFlagSet("lazy", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

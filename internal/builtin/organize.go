package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lazy/internal/config"
	apperrors "lazy/internal/errors"
	"lazy/internal/log"
	"lazy/internal/organize"
	"lazy/internal/plugin"
	"lazy/internal/report"
	"lazy/internal/watch"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func organizeModule(d Deps) plugin.Module {
	return plugin.Module{
		Name:    "organize",
		Help:    "Organize files into folders by their extension",
		Command: func() *cobra.Command { return NewOrganizeCmd(d) },
	}
}

type organizeOptions struct {
	dryRun        bool
	includeHidden bool
	yes           bool
	watch         bool
}

// NewOrganizeCmd creates the organize command
func NewOrganizeCmd(d Deps) *cobra.Command {
	d = d.withDefaults()
	var opts organizeOptions

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Organize files into folders by their extension",
		Long: `Organize the files of a directory by moving them into subfolders named
after their category (Images, Documents, Videos, Audio, Archives, Code, Web,
Executables, Others). Files already present in a category folder are never
replaced. Without a directory, the configured default_downloads_folder or
~/Downloads is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch && opts.dryRun {
				return fmt.Errorf("--watch cannot be combined with --dry-run")
			}

			dir, err := resolveDirectory(args, d.Config)
			if err != nil {
				return err
			}
			return runOrganize(cmd.Context(), d, dir, opts)
		},
	}

	// -h belongs to --include-hidden, so help is long-form only
	cmd.Flags().Bool("help", false, "help for organize")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Preview changes without moving files")
	cmd.Flags().BoolVarP(&opts.includeHidden, "include-hidden", "h", false, "Include hidden files (starting with .)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep running and organize new files as they arrive")

	return cmd
}

// resolveDirectory picks the directory to organize and checks that it is one
func resolveDirectory(args []string, cfg *config.Config) (string, error) {
	var dir string
	switch {
	case len(args) > 0:
		dir = config.ExpandHome(args[0])
	case cfg != nil && cfg.DefaultDownloadsFolder != "":
		dir = cfg.DefaultDownloadsFolder
	default:
		dir = downloadsFolder()
		if dir == "" {
			return "", apperrors.NewFileError("no directory given and no Downloads folder found", "", apperrors.FileNotFound, nil)
		}
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", apperrors.NewFileError("directory does not exist", dir, apperrors.FileNotFound, err)
	}
	if !info.IsDir() {
		return "", apperrors.NewFileError("not a directory", dir, apperrors.NotADirectory, nil)
	}
	return dir, nil
}

// downloadsFolder returns ~/Downloads or ~/downloads, whichever exists first
func downloadsFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"Downloads", "downloads"} {
		path := filepath.Join(home, name)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

func runOrganize(ctx context.Context, d Deps, dir string, opts organizeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rep := d.Reporter

	rep.Heading(fmt.Sprintf("📂 Organizing files in: %s", dir))
	if opts.dryRun {
		rep.Warning("DRY RUN MODE - No files will be moved")
	}

	result, err := organize.Scan(dir, opts.includeHidden)
	if err != nil {
		return err
	}

	total := result.Total()
	if total == 0 {
		rep.Warning("No files found to organize.")
	} else {
		printSummary(rep, result)

		if !opts.dryRun && !opts.yes {
			ok, err := d.Prompter.Confirm("Proceed with organizing files?", true)
			if err != nil {
				return err
			}
			if !ok {
				rep.Println("Cancelled.")
				return nil
			}
		}

		if err := organizePass(ctx, d, dir, result, opts.dryRun); err != nil {
			return err
		}
	}

	if !opts.watch {
		return nil
	}
	return watchDirectory(ctx, d, dir, opts)
}

func organizePass(ctx context.Context, d Deps, dir string, result organize.ScanResult, dryRun bool) error {
	stats, err := d.Organizers(d.Reporter).Execute(ctx, dir, result, dryRun)
	printResults(d.Reporter, stats, dryRun)
	log.WithFields(log.Fields{
		"dir":     dir,
		"moved":   stats.Moved,
		"skipped": stats.Skipped,
		"errors":  stats.Errors,
		"dry_run": dryRun,
	}).Debug("Organize pass finished")
	return err
}

func printSummary(rep report.Reporter, result organize.ScanResult) {
	var rows [][]string
	for _, s := range organize.Summarize(result) {
		rows = append(rows, []string{s.Category, strconv.Itoa(s.Count), humanize.IBytes(uint64(s.Size))})
	}
	rep.Table("Files to Organize",
		[]string{"Category", "Count", "Total Size"},
		rows,
		[]report.Align{report.AlignLeft, report.AlignRight, report.AlignRight})
	rep.Println(fmt.Sprintf("Total files: %d", result.Total()))
}

func printResults(rep report.Reporter, stats organize.MoveStats, dryRun bool) {
	if dryRun {
		rep.Info(fmt.Sprintf("Would organize %d file(s)", stats.Moved))
	} else {
		rep.Success(fmt.Sprintf("Organized %d file(s)", stats.Moved))
	}
	if stats.Skipped > 0 {
		rep.Warning(fmt.Sprintf("Skipped %d file(s)", stats.Skipped))
	}
	if stats.Errors > 0 {
		rep.Error(fmt.Sprintf("Failed to move %d file(s)", stats.Errors))
	}
}

// watchDirectory organizes new files until ctx is cancelled. Passes are
// confirmed implicitly.
func watchDirectory(ctx context.Context, d Deps, dir string, opts organizeOptions) error {
	d.Reporter.Info(fmt.Sprintf("Watching %s for new files (Ctrl+C to stop)", dir))

	daemon := watch.NewDaemon(dir, func(ctx context.Context) error {
		result, err := organize.Scan(dir, opts.includeHidden)
		if err != nil {
			return err
		}
		if result.Total() == 0 {
			return nil
		}
		return organizePass(ctx, d, dir, result, false)
	})
	if !opts.includeHidden {
		daemon.SetFilter(func(e watch.Event) bool { return !strings.HasPrefix(e.Name, ".") })
	}

	if err := daemon.Run(ctx); err != nil {
		return err
	}
	d.Reporter.Info(fmt.Sprintf("Stopped watching after %d pass(es)", daemon.Status().Passes))
	return nil
}

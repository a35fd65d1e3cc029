package builtin_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lazy/internal/builtin"
	"lazy/internal/config"
	apperrors "lazy/internal/errors"
	"lazy/internal/organize"
	"lazy/internal/report"
	"lazy/pkg/testutils"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns its error
func execute(cmd *cobra.Command, args ...string) error {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

// countingOrganizer records calls and delegates to the real engine
type countingOrganizer struct {
	organize.Organizer
	calls int
}

func (c *countingOrganizer) Execute(ctx context.Context, dir string, result organize.ScanResult, dryRun bool) (organize.MoveStats, error) {
	c.calls++
	return c.Organizer.Execute(ctx, dir, result, dryRun)
}

func TestOrganizeMovesFiles(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{
		"a.jpg": "12345",
		"b.pdf": "1",
		"c.mp4": "",
	})

	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec, Prompter: report.Answer(true)})
	require.NoError(t, execute(cmd, dir))

	assert.Equal(t, []string{"Documents/", "Images/", "Videos/"}, testutils.ListDir(t, dir))
	assert.True(t, rec.Contains("heading", "Organizing files in: "+dir), rec.String())
	assert.True(t, rec.Contains("table", "Files to Organize"), rec.String())
	assert.True(t, rec.Contains("table", "Images | 1 | 5 B"), rec.String())
	assert.True(t, rec.Contains("plain", "Total files: 3"), rec.String())
	assert.True(t, rec.Contains("success", "Organized 3 file(s)"), rec.String())
	assert.Empty(t, rec.Messages("error"))
}

func TestOrganizeDryRun(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "a.jpg", "b.pdf")
	before := testutils.ListDir(t, dir)

	rec := &testutils.Recorder{}
	// A prompter that would refuse shows that dry runs never ask
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec, Prompter: report.Answer(false)})
	require.NoError(t, execute(cmd, "--dry-run", dir))

	assert.Equal(t, before, testutils.ListDir(t, dir))
	assert.True(t, rec.Contains("warning", "DRY RUN MODE"), rec.String())
	assert.True(t, rec.Contains("step", "Would move: a.jpg to Images/"), rec.String())
	assert.True(t, rec.Contains("info", "Would organize 2 file(s)"), rec.String())
}

func TestOrganizeDeclined(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "a.jpg")

	org := &countingOrganizer{Organizer: organize.New(nil)}
	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{
		Reporter:   rec,
		Prompter:   report.Answer(false),
		Organizers: func(report.Reporter) organize.Organizer { return org },
	})
	require.NoError(t, execute(cmd, dir))

	assert.Equal(t, 0, org.calls)
	assert.Equal(t, []string{"a.jpg"}, testutils.ListDir(t, dir))
	assert.True(t, rec.Contains("plain", "Cancelled."), rec.String())
}

func TestOrganizeYesSkipsPrompt(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "a.jpg", "Images/a.jpg", "song.mp3")

	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec, Prompter: report.Answer(false)})
	require.NoError(t, execute(cmd, "-y", dir))

	assert.True(t, rec.Contains("success", "Organized 1 file(s)"), rec.String())
	assert.True(t, rec.Contains("warning", "Skipped 1 file(s)"), rec.String())
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	assert.FileExists(t, filepath.Join(dir, "Audio", "song.mp3"))
}

func TestOrganizeHiddenFlag(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, ".env", "photo.png")

	cmd := builtin.NewOrganizeCmd(builtin.Deps{Prompter: report.Answer(true)})
	require.NoError(t, execute(cmd, dir))
	assert.FileExists(t, filepath.Join(dir, ".env"))

	cmd = builtin.NewOrganizeCmd(builtin.Deps{Prompter: report.Answer(true)})
	require.NoError(t, execute(cmd, "-h", dir))
	assert.FileExists(t, filepath.Join(dir, "Others", ".env"))
}

func TestOrganizeHelpIsLongFormOnly(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "photo.png")

	cmd := builtin.NewOrganizeCmd(builtin.Deps{Prompter: report.Answer(true)})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "--include-hidden")
	assert.Contains(t, out.String(), "--help")
	assert.Equal(t, []string{"photo.png"}, testutils.ListDir(t, dir), "help does not organize")

	flag := cmd.Flags().Lookup("help")
	require.NotNil(t, flag)
	assert.Empty(t, flag.Shorthand)
	assert.Equal(t, "include-hidden", cmd.Flags().ShorthandLookup("h").Name)
}

func TestOrganizeEmptyDirectory(t *testing.T) {
	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec})
	require.NoError(t, execute(cmd, t.TempDir()))
	assert.Equal(t, []string{"No files found to organize."}, rec.Messages("warning"))
	assert.Empty(t, rec.Messages("table"))
}

func TestOrganizeReportsFailuresWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "a.jpg", "b.pdf")
	// A plain file named like the category folder blocks every Images move
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Images"), nil, 0o644))

	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec, Prompter: report.Answer(true)})
	require.NoError(t, execute(cmd, dir))

	assert.True(t, rec.Contains("error", "Failed to move a.jpg"), rec.String())
	assert.True(t, rec.Contains("error", "Failed to move 1 file(s)"), rec.String())
	assert.True(t, rec.Contains("success", "Organized 1 file(s)"), rec.String())
}

func TestOrganizeDirectoryPreconditions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := execute(builtin.NewOrganizeCmd(builtin.Deps{}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsFileNotFound(err))

	err = execute(builtin.NewOrganizeCmd(builtin.Deps{}), file)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotADirectory(err))

	err = execute(builtin.NewOrganizeCmd(builtin.Deps{}), "--watch", "--dry-run", t.TempDir())
	assert.Error(t, err)
}

func TestOrganizeDefaultDirectory(t *testing.T) {
	t.Run("configured folder", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateEmptyFiles(t, dir, "a.zip")
		cfg := config.New()
		cfg.DefaultDownloadsFolder = dir

		cmd := builtin.NewOrganizeCmd(builtin.Deps{Config: cfg, Prompter: report.Answer(true)})
		require.NoError(t, execute(cmd))
		assert.FileExists(t, filepath.Join(dir, "Archives", "a.zip"))
	})

	t.Run("home Downloads", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		testutils.CreateEmptyFiles(t, home, "downloads/a.deb")

		cmd := builtin.NewOrganizeCmd(builtin.Deps{Prompter: report.Answer(true)})
		require.NoError(t, execute(cmd))
		assert.FileExists(t, filepath.Join(home, "downloads", "Executables", "a.deb"))
	})

	t.Run("nothing to fall back to", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		err := execute(builtin.NewOrganizeCmd(builtin.Deps{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no directory given")
	})
}

func TestOrganizeWatch(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateEmptyFiles(t, dir, "first.jpg")

	rec := &testutils.Recorder{}
	cmd := builtin.NewOrganizeCmd(builtin.Deps{Reporter: rec})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- execute(cmd, "--yes", "--watch", dir) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "Images", "first.jpg"))
		return err == nil && rec.Contains("info", "Watching")
	}, 3*time.Second, 20*time.Millisecond, "first pass runs before watching")

	// Give fsnotify a moment to register the watch
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "later.pdf"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "Documents", "later.pdf"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "new file is organized while watching")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.True(t, rec.Contains("info", "Stopped watching"), rec.String())
}

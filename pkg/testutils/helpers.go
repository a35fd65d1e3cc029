package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lazy/internal/report"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// CreateEmptyFiles touches each name inside dir
func CreateEmptyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	files := make(map[string]string, len(names))
	for _, name := range names {
		files[name] = ""
	}
	CreateTestFilesWithContent(t, dir, files)
}

// ListDir returns the sorted entry names of dir, directories suffixed with "/"
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name()+"/")
		} else {
			names = append(names, e.Name())
		}
	}
	return names
}

// Line is one message captured by Recorder
type Line struct {
	Kind string
	Text string
}

// Recorder is a report.Reporter that keeps every message for assertions
type Recorder struct {
	mu    sync.Mutex
	Lines []Line
}

var _ report.Reporter = (*Recorder)(nil)

func (r *Recorder) add(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, Line{Kind: kind, Text: text})
}

func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Error(msg string)   { r.add("error", msg) }
func (r *Recorder) Warning(msg string) { r.add("warning", msg) }
func (r *Recorder) Info(msg string)    { r.add("info", msg) }
func (r *Recorder) Step(msg string)    { r.add("step", msg) }
func (r *Recorder) Heading(msg string) { r.add("heading", msg) }
func (r *Recorder) Println(msg string) { r.add("plain", msg) }

func (r *Recorder) Table(title string, headers []string, rows [][]string, _ []report.Align) {
	var sb strings.Builder
	sb.WriteString(title)
	for _, row := range rows {
		sb.WriteString("\n" + strings.Join(row, " | "))
	}
	r.add("table", sb.String())
}

// Messages returns the texts recorded with the given kind
func (r *Recorder) Messages(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.Lines {
		if l.Kind == kind {
			out = append(out, l.Text)
		}
	}
	return out
}

// Contains reports whether any message of kind contains substr
func (r *Recorder) Contains(kind, substr string) bool {
	for _, m := range r.Messages(kind) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// String renders all lines, useful in failure messages
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sb strings.Builder
	for _, l := range r.Lines {
		fmt.Fprintf(&sb, "[%s] %s\n", l.Kind, l.Text)
	}
	return sb.String()
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}

package organize

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"
)

// FileEntry is one file found by Scan
type FileEntry struct {
	Path      string
	Name      string
	Extension string
	Category  string
}

// ScanResult groups scanned files by category name. Scan fills a key for
// every table category, even when no file landed in it.
type ScanResult map[string][]FileEntry

// Total returns the number of files across all categories
func (r ScanResult) Total() int {
	total := 0
	for _, files := range r {
		total += len(files)
	}
	return total
}

// Ordered returns the category names of r in table order, followed by any
// names the table does not know about, sorted.
func (r ScanResult) Ordered() []string {
	names := make([]string, 0, len(r))
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		known[c.Name] = true
		if _, ok := r[c.Name]; ok {
			names = append(names, c.Name)
		}
	}

	var extra []string
	for name := range r {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// Extension returns the lowercased text after the last dot of name. Names
// without a dot, dotfiles such as ".bashrc" and names ending in a dot have
// no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Scan categorizes the direct children of dir. Directories are never
// included; names starting with "." are skipped unless includeHidden is set.
func Scan(dir string, includeHidden bool) (ScanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewFileError("cannot read directory", dir, apperrors.FileAccessDenied, err)
	}

	result := make(ScanResult, len(Categories))
	for _, c := range Categories {
		result[c.Name] = []FileEntry{}
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if isDir(path, entry) {
			continue
		}
		if !includeHidden && strings.HasPrefix(name, ".") {
			log.Debugf("Skipping hidden file %s", name)
			continue
		}

		ext := Extension(name)
		category := Categorize(ext)
		result[category] = append(result[category], FileEntry{
			Path:      path,
			Name:      name,
			Extension: ext,
			Category:  category,
		})
	}

	log.Debugf("Scanned %s: %d files", dir, result.Total())
	return result, nil
}

// isDir follows symlinks so a link to a directory counts as a directory
func isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

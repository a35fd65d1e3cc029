package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"
	"lazy/internal/report"
)

// ErrDestinationExists is returned by MoveFile when something already occupies the destination
var ErrDestinationExists = errors.New("destination already exists")

// MoveStats counts the outcome of every file handed to Execute
type MoveStats struct {
	Moved   int
	Skipped int
	Errors  int
}

// Total returns the number of files accounted for
func (s MoveStats) Total() int {
	return s.Moved + s.Skipped + s.Errors
}

// Engine moves scanned files into category folders next to them
type Engine struct {
	reporter report.Reporter
}

// New creates an engine that reports each file outcome to r
func New(r report.Reporter) *Engine {
	if r == nil {
		r = report.Discard
	}
	return &Engine{reporter: r}
}

// Execute moves every file of result into dir/<category>/, or only reports
// what it would do when dryRun is set. Files are handled one at a time: a
// collision is a skip, a failed move is counted and the batch continues.
// A cancelled ctx stops the batch between two files and returns the partial
// stats together with ctx.Err().
func (e *Engine) Execute(ctx context.Context, dir string, result ScanResult, dryRun bool) (MoveStats, error) {
	var stats MoveStats

	for _, category := range result.Ordered() {
		files := result[category]
		if len(files) == 0 {
			continue
		}

		destDir := filepath.Join(dir, category)
		var mkdirErr error
		if !dryRun {
			mkdirErr = os.MkdirAll(destDir, 0o755)
			if mkdirErr != nil {
				log.WithFields(log.F("folder", destDir)).Errorf("Cannot create category folder: %v", mkdirErr)
			}
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			name := file.Name
			if name == "" {
				name = filepath.Base(file.Path)
			}
			dest := filepath.Join(destDir, name)

			exists, err := pathExists(dest)
			if err != nil {
				e.reporter.Error(fmt.Sprintf("Failed to move %s: %v", name, err))
				stats.Errors++
				continue
			}
			if exists {
				e.reporter.Warning(fmt.Sprintf("Skipping %s (already exists in %s)", name, category))
				stats.Skipped++
				continue
			}

			if dryRun {
				e.reporter.Step(fmt.Sprintf("Would move: %s to %s/", name, category))
				stats.Moved++
				continue
			}

			if mkdirErr != nil {
				e.reporter.Error(fmt.Sprintf("Failed to move %s: %v", name, mkdirErr))
				stats.Errors++
				continue
			}

			if err := e.MoveFile(file.Path, dest); err != nil {
				e.reporter.Error(fmt.Sprintf("Failed to move %s: %v", name, errors.Unwrap(err)))
				stats.Errors++
				continue
			}

			e.reporter.Success(fmt.Sprintf("Moved: %s to %s/", name, category))
			stats.Moved++
		}
	}

	log.Debugf("Move pass finished: moved=%d skipped=%d errors=%d", stats.Moved, stats.Skipped, stats.Errors)
	return stats, nil
}

// MoveFile moves src to dest without ever replacing an existing entry.
// The name is kept verbatim; the destination folder must already exist.
func (e *Engine) MoveFile(src, dest string) error {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	if cleanSrc == cleanDest {
		log.Debugf("Source and destination are the same, skipping: %s", src)
		return nil
	}

	srcInfo, err := os.Lstat(cleanSrc)
	if err != nil {
		return apperrors.NewFileError("source file error", src, apperrors.FileNotFound, err)
	}
	if srcInfo.IsDir() {
		return apperrors.NewFileError("cannot move directory as file", src, apperrors.FileOperationFailed,
			fmt.Errorf("%s is a directory", srcInfo.Name()))
	}

	exists, err := pathExists(cleanDest)
	if err != nil {
		return apperrors.NewFileError("error checking destination", dest, apperrors.FileAccessDenied, err)
	}
	if exists {
		return apperrors.NewFileError("cannot move file", dest, apperrors.FileOperationFailed, ErrDestinationExists)
	}

	log.Debugf("Moving %s to %s", cleanSrc, cleanDest)
	if err := os.Rename(cleanSrc, cleanDest); err != nil {
		if !isCrossDevice(err) {
			return apperrors.NewFileError("failed to move file", src, apperrors.FileOperationFailed, err)
		}
		log.Debugf("Rename across devices, copying %s instead", cleanSrc)
		if err := copyThenRemove(cleanSrc, cleanDest, srcInfo); err != nil {
			return apperrors.NewFileError("failed to move file", src, apperrors.FileOperationFailed, err)
		}
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}

// copyThenRemove is the rename fallback across filesystems. The copy is
// removed again if the source cannot be deleted, so the file never ends up
// in both places.
func copyThenRemove(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	_ = os.Chtimes(dest, info.ModTime(), info.ModTime())

	in.Close()
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

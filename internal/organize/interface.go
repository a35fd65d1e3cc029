package organize

import "context"

// Organizer defines the move pass used by the organize command.
// This allows for dependency injection in tests.
type Organizer interface {
	// Execute moves (or previews moving) every scanned file into its category folder
	Execute(ctx context.Context, dir string, result ScanResult, dryRun bool) (MoveStats, error)

	// MoveFile moves a single file without replacing an existing destination
	MoveFile(src, dest string) error
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)

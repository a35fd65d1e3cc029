package organize

import (
	"os"

	"lazy/internal/log"
)

// CategorySummary is one row of the pre-move overview
type CategorySummary struct {
	Category string
	Count    int
	Size     int64
}

// Summarize returns one row per non-empty category in processing order.
// Files that can no longer be stat'ed count with size zero.
func Summarize(result ScanResult) []CategorySummary {
	var rows []CategorySummary
	for _, category := range result.Ordered() {
		files := result[category]
		if len(files) == 0 {
			continue
		}

		row := CategorySummary{Category: category, Count: len(files)}
		for _, f := range files {
			info, err := os.Stat(f.Path)
			if err != nil {
				log.Debugf("Cannot stat %s: %v", f.Path, err)
				continue
			}
			row.Size += info.Size()
		}
		rows = append(rows, row)
	}
	return rows
}

package main

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/database"
)

// copyRuns copies every run of from into to, oldest first. Runs already in
// to are skipped. A nil to only counts.
func copyRuns(from, to *database.Database) (copied, skipped int, err error) {
	runs, err := from.ListRuns(0)
	if err != nil {
		return 0, 0, err
	}

	for i := len(runs) - 1; i >= 0; i-- {
		full, err := from.GetRun(runs[i].RunID)
		if err != nil {
			return copied, skipped, fmt.Errorf("run %s: %w", runs[i].RunID, err)
		}
		if to == nil {
			copied++
			continue
		}
		switch err := to.SaveRun(full); {
		case errors.Is(err, database.ErrRunExists):
			skipped++
		case err != nil:
			return copied, skipped, fmt.Errorf("run %s: %w", full.RunID, err)
		default:
			copied++
		}
	}
	return copied, skipped, nil
}

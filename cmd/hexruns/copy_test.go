package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/hexwfc/internal/database"
)

func openDB(t *testing.T, name string) *database.Database {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCopyRuns(t *testing.T) {
	from := openDB(t, "from.db")
	to := openDB(t, "to.db")

	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, from.SaveRun(&database.Run{
			RunID:       id,
			Seed:        int64(i),
			Cells:       2,
			CreatedAt:   time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
			Assignments: []database.CellRecord{{Q: i, Tile: "field"}},
			Failures:    []database.CellRecord{{Q: i, R: 1, Status: "ground"}},
		}))
	}
	require.NoError(t, to.SaveRun(&database.Run{RunID: "second"}))

	copied, skipped, err := copyRuns(from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, copied)
	assert.Equal(t, 1, skipped)

	runs, err := to.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Oldest is copied first, so the newest keeps the highest number.
	assert.Equal(t, "third", runs[0].RunID)

	got, err := to.GetRun("first")
	require.NoError(t, err)
	assert.Equal(t, []database.CellRecord{{Q: 0, Tile: "field"}}, got.Assignments)
	assert.Len(t, got.Failures, 1)
}

func TestCopyRuns_DryRun(t *testing.T) {
	from := openDB(t, "from.db")
	require.NoError(t, from.SaveRun(&database.Run{RunID: "only"}))

	copied, skipped, err := copyRuns(from, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	assert.Zero(t, skipped)
}

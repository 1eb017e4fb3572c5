package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/hexwfc/internal/report"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// ErrRunNotFound is returned when a run lookup fails.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned when a run ID is saved twice.
var ErrRunExists = errors.New("run already exists")

// Run is one recorded solve.
type Run struct {
	Number      int64 // database row id, set by SaveRun
	RunID       string
	Seed        int64
	Attempt     int
	Catalog     string
	Propagation string
	Radius      int
	Layers      int
	Underground int
	Cells       int
	Assigned    int
	Failed      int
	Duration    time.Duration
	CreatedAt   time.Time

	Assignments []CellRecord
	Failures    []CellRecord
}

// CellRecord is a stored cell. Assignments carry the tile fields, failures
// carry the status.
type CellRecord struct {
	Q        int
	R        int
	Layer    int
	Tile     string
	Rotation int
	Inverted bool
	Status   string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// FromReport converts a solve report into a Run ready to save. A report
// without a run ID gets a new one.
func FromReport(r *report.Report, elapsed time.Duration) *Run {
	run := &Run{
		RunID:       r.RunID,
		Seed:        r.Seed,
		Attempt:     r.Attempt,
		Catalog:     r.Catalog,
		Propagation: r.Propagation,
		Radius:      r.Grid.Radius,
		Layers:      r.Grid.Layers,
		Underground: r.Grid.Underground,
		Cells:       len(r.Cells),
		Duration:    elapsed,
		CreatedAt:   r.SavedAt,
	}
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	for _, c := range r.Cells {
		switch c.State {
		case wfc.Assigned.String():
			run.Assignments = append(run.Assignments, CellRecord{
				Q: c.Q, R: c.R, Layer: c.Layer,
				Tile: c.Tile, Rotation: c.Rotation, Inverted: c.Inverted,
			})
		case wfc.Failed.String():
			run.Failures = append(run.Failures, CellRecord{Q: c.Q, R: c.R, Layer: c.Layer, Status: c.Status})
		}
	}
	run.Assigned = len(run.Assignments)
	run.Failed = len(run.Failures)
	return run
}

// SaveRun stores a run with its assignments and failures in one transaction
// and sets run.Number.
func (d *Database) SaveRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := insertSQL("solve_runs", runInsertColumns)
	args := []any{
		run.RunID, run.Seed, run.Attempt, run.Catalog, run.Propagation,
		run.Radius, run.Layers, run.Underground,
		run.Cells, len(run.Assignments), len(run.Failures),
		run.Duration.Milliseconds(), run.CreatedAt,
	}

	var number int64
	if d.dialect.SupportsLastInsertID() {
		result, err := tx.Exec(d.qb.Build(insert), args...)
		if err != nil {
			return d.insertError(err)
		}
		if number, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get run number: %w", err)
		}
	} else {
		if err := tx.QueryRow(d.qb.BuildWithReturning(insert, "id"), args...).Scan(&number); err != nil {
			return d.insertError(err)
		}
	}

	assignStmt, err := tx.Prepare(d.qb.Insert("run_assignments",
		"run_id", "q", "r", "layer", "tile", "rotation", "inverted"))
	if err != nil {
		return err
	}
	defer assignStmt.Close()
	for _, a := range run.Assignments {
		if _, err := assignStmt.Exec(run.RunID, a.Q, a.R, a.Layer, a.Tile, a.Rotation, boolToInt(a.Inverted)); err != nil {
			return fmt.Errorf("failed to save assignment at (%d,%d,%d): %w", a.Q, a.R, a.Layer, err)
		}
	}

	failStmt, err := tx.Prepare(d.qb.Insert("run_failures", "run_id", "q", "r", "layer", "status"))
	if err != nil {
		return err
	}
	defer failStmt.Close()
	for _, f := range run.Failures {
		if _, err := failStmt.Exec(run.RunID, f.Q, f.R, f.Layer, f.Status); err != nil {
			return fmt.Errorf("failed to save failure at (%d,%d,%d): %w", f.Q, f.R, f.Layer, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.Number = number
	run.Assigned = len(run.Assignments)
	run.Failed = len(run.Failures)
	return nil
}

func (d *Database) insertError(err error) error {
	if d.dialect.IsDuplicateKeyError(err) {
		return ErrRunExists
	}
	return fmt.Errorf("failed to save run: %w", err)
}

var runInsertColumns = []string{
	"run_id", "seed", "attempt", "catalog", "propagation", "radius", "layers", "underground",
	"cells", "assigned", "failed", "duration_ms", "created_at",
}

var runColumns = "id, " + strings.Join(runInsertColumns, ", ")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var durationMS int64
	err := row.Scan(
		&run.Number, &run.RunID, &run.Seed, &run.Attempt, &run.Catalog, &run.Propagation,
		&run.Radius, &run.Layers, &run.Underground,
		&run.Cells, &run.Assigned, &run.Failed, &durationMS, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

// GetRun loads a run with its assignments and failures.
func (d *Database) GetRun(runID string) (*Run, error) {
	row := d.db.QueryRow(d.qb.Build(`SELECT `+runColumns+` FROM solve_runs WHERE run_id = ?`), runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Assignments, err = d.GetAssignments(runID); err != nil {
		return nil, err
	}
	if run.Failures, err = d.GetFailures(runID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without their cells. A limit
// of zero or less returns every run.
func (d *Database) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM solve_runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetAssignments returns the assigned cells of a run ordered by layer, then
// coordinate.
func (d *Database) GetAssignments(runID string) ([]CellRecord, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT q, r, layer, tile, rotation, inverted
		FROM run_assignments
		WHERE run_id = ?
		ORDER BY layer, r, q
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer rows.Close()

	var out []CellRecord
	for rows.Next() {
		var c CellRecord
		var inverted int
		if err := rows.Scan(&c.Q, &c.R, &c.Layer, &c.Tile, &c.Rotation, &inverted); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		c.Inverted = inverted != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetFailures returns the failed cells of a run ordered by layer, then
// coordinate.
func (d *Database) GetFailures(runID string) ([]CellRecord, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT q, r, layer, status
		FROM run_failures
		WHERE run_id = ?
		ORDER BY layer, r, q
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get failures: %w", err)
	}
	defer rows.Close()

	var out []CellRecord
	for rows.Next() {
		var c CellRecord
		if err := rows.Scan(&c.Q, &c.R, &c.Layer, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its cells.
func (d *Database) DeleteRun(runID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first; cascade is not assumed.
	for _, table := range []string{"run_assignments", "run_failures"} {
		if _, err := tx.Exec(d.qb.Build(`DELETE FROM `+table+` WHERE run_id = ?`), runID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	result, err := tx.Exec(d.qb.Build(`DELETE FROM solve_runs WHERE run_id = ?`), runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

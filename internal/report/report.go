package report

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

var (
	ErrUnknownTile   = errors.New("report: tile not in catalog")
	ErrUnknownCell   = errors.New("report: cell not in grid")
	ErrCatalogChange = errors.New("report: catalog fingerprint differs")
)

// Report is the serialized outcome of a solve
type Report struct {
	RunID       string          `yaml:"run_id"`
	Seed        int64           `yaml:"seed"`
	Attempt     int             `yaml:"attempt"`
	Catalog     string          `yaml:"catalog"`
	Propagation string          `yaml:"propagation"`
	SavedAt     time.Time       `yaml:"saved_at"`
	Grid        hexgrid.Options `yaml:"grid"`
	Cells       []CellData      `yaml:"cells"`
}

// CellData is one cell of a report. Tile fields are empty unless the cell
// is assigned.
type CellData struct {
	Q        int    `yaml:"q"`
	R        int    `yaml:"r"`
	Layer    int    `yaml:"layer"`
	Status   string `yaml:"status"`
	State    string `yaml:"state"`
	Tile     string `yaml:"tile,omitempty"`
	Rotation int    `yaml:"rotation,omitempty"`
	Inverted bool   `yaml:"inverted,omitempty"`
}

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID       string
	Seed        int64
	Attempt     int
	Catalog     string
	Propagation wfc.PropagationMode
}

// FromGrid captures the state of every cell of a solved grid.
func FromGrid(grid *hexgrid.Grid, meta Meta) *Report {
	r := &Report{
		RunID:       meta.RunID,
		Seed:        meta.Seed,
		Attempt:     meta.Attempt,
		Catalog:     meta.Catalog,
		Propagation: meta.Propagation.String(),
		Grid:        grid.Options(),
		Cells:       make([]CellData, 0, grid.Graph.Len()),
	}
	for _, c := range grid.Graph.Cells() {
		coord, _ := grid.Coord(c.ID)
		cd := CellData{
			Q:      coord.Q,
			R:      coord.R,
			Layer:  coord.Layer,
			Status: c.Status.String(),
			State:  c.State.String(),
		}
		if c.State == wfc.Assigned && c.Assignment != nil {
			cd.Tile = c.Assignment.Tile.Name
			cd.Rotation = c.Assignment.Orientation.Rotation
			cd.Inverted = c.Assignment.Orientation.Inverted
		}
		r.Cells = append(r.Cells, cd)
	}
	return r
}

// Counts returns the number of assigned, failed and unassigned cells.
func (r *Report) Counts() (assigned, failed, unassigned int) {
	for _, c := range r.Cells {
		switch c.State {
		case wfc.Assigned.String():
			assigned++
		case wfc.Failed.String():
			failed++
		default:
			unassigned++
		}
	}
	return assigned, failed, unassigned
}

// Apply writes the report's assignments onto a freshly built grid so that a
// later solve treats them as fixed. Failed cells are left unassigned.
func (r *Report) Apply(grid *hexgrid.Grid, set *catalog.Set) error {
	if r.Catalog != "" && r.Catalog != set.Fingerprint {
		return fmt.Errorf("%w: report %s, catalog %s", ErrCatalogChange, short(r.Catalog), short(set.Fingerprint))
	}
	for _, cd := range r.Cells {
		if cd.Tile == "" {
			continue
		}
		coord := hexgrid.Coord{Axial: hexgrid.Axial{Q: cd.Q, R: cd.R}, Layer: cd.Layer}
		id, ok := grid.CellAt(coord)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCell, coord)
		}
		tile, ok := set.Tile(cd.Tile)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTile, cd.Tile)
		}
		a := wfc.Assignment{Tile: tile, Orientation: wfc.Orientation{Rotation: cd.Rotation, Inverted: cd.Inverted}}
		if err := grid.Graph.Assign(id, a); err != nil {
			return fmt.Errorf("cell %s: %w", coord, err)
		}
	}
	return nil
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// Save writes a report to a YAML file
func Save(r *Report, filename string) error {
	r.SavedAt = time.Now().UTC()
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Load reads a report from a YAML file
func Load(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report YAML: %w", err)
	}
	return &r, nil
}

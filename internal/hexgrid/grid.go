package hexgrid

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

var (
	ErrInvalidRadius = errors.New("hexgrid: radius must not be negative")
	ErrInvalidLayers = errors.New("hexgrid: layer counts must not be negative")
	ErrOutsideGrid   = errors.New("hexgrid: coordinate outside the grid")
)

// Edge types assigned to outer-ring cells. Corners are solved first.
const (
	EdgeCorner = 0
	EdgeSide   = 1
)

// Options describes a hexagonal disk of prism columns. Layers and
// Underground count the layers above and below the ground layer.
type Options struct {
	Center      Axial   `yaml:"center"`
	Radius      int     `yaml:"radius"`
	Layers      int     `yaml:"layers"`
	Underground int     `yaml:"underground,omitempty"`
	Entries     []Axial `yaml:"entries,omitempty"`
	Paths       []Axial `yaml:"paths,omitempty"`
	Holes       []Axial `yaml:"holes,omitempty"`
	Water       []Axial `yaml:"water,omitempty"`
}

// DefaultOptions returns a radius 3 disk with one upper layer.
func DefaultOptions() Options {
	return Options{Radius: 3, Layers: 1}
}

// Grid is a built CellGraph plus the coordinate of every cell.
type Grid struct {
	Graph   *wfc.CellGraph
	opts    Options
	columns []Axial
	coords  []Coord
	index   map[Coord]wfc.CellID
}

// Build creates and links every cell of the disk. Entries, paths, holes and
// water mark ground-layer cells; holes get status remove.
func Build(opts Options) (*Grid, error) {
	if opts.Radius < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, opts.Radius)
	}
	if opts.Layers < 0 || opts.Underground < 0 {
		return nil, fmt.Errorf("%w: layers=%d underground=%d", ErrInvalidLayers, opts.Layers, opts.Underground)
	}

	columns := Disk(opts.Center, opts.Radius)
	total := len(columns) * (opts.Layers + opts.Underground + 1)
	g := &Grid{
		Graph:   wfc.NewCellGraph(total),
		opts:    opts,
		columns: columns,
		coords:  make([]Coord, 0, total),
		index:   make(map[Coord]wfc.CellID, total),
	}

	marks, err := g.groundMarks()
	if err != nil {
		return nil, err
	}

	for layer := -opts.Underground; layer <= opts.Layers; layer++ {
		for _, a := range columns {
			cell := wfc.Cell{Status: layerStatus(layer)}
			if d := Distance(opts.Center, a); d == opts.Radius {
				cell.IsEdge = true
				cell.EdgeType = g.edgeType(a)
			}
			if layer == 0 {
				marks.apply(a, &cell)
			}
			coord := Coord{Axial: a, Layer: layer}
			id := g.Graph.AddCell(cell)
			g.coords = append(g.coords, coord)
			g.index[coord] = id
		}
	}

	if err := g.link(); err != nil {
		return nil, err
	}
	return g, nil
}

func layerStatus(layer int) wfc.CellStatus {
	switch {
	case layer < 0:
		return wfc.StatusUnderGround
	case layer > 0:
		return wfc.StatusAboveGround
	default:
		return wfc.StatusGround
	}
}

// edgeType classifies an outer-ring column as a corner or a side cell.
func (g *Grid) edgeType(a Axial) int {
	for _, d := range Directions {
		if g.opts.Center.Add(d.Mul(g.opts.Radius)) == a {
			return EdgeCorner
		}
	}
	return EdgeSide
}

type groundMarks struct {
	entries, paths, holes, water map[Axial]bool
}

func (g *Grid) groundMarks() (*groundMarks, error) {
	m := &groundMarks{}
	var err error
	if m.entries, err = g.markSet("entry", g.opts.Entries); err != nil {
		return nil, err
	}
	if m.paths, err = g.markSet("path", g.opts.Paths); err != nil {
		return nil, err
	}
	if m.holes, err = g.markSet("hole", g.opts.Holes); err != nil {
		return nil, err
	}
	if m.water, err = g.markSet("water", g.opts.Water); err != nil {
		return nil, err
	}
	return m, nil
}

func (g *Grid) markSet(kind string, coords []Axial) (map[Axial]bool, error) {
	set := make(map[Axial]bool, len(coords))
	for _, a := range coords {
		if Distance(g.opts.Center, a) > g.opts.Radius {
			return nil, fmt.Errorf("%w: %s %s", ErrOutsideGrid, kind, a)
		}
		set[a] = true
	}
	return set, nil
}

func (m *groundMarks) apply(a Axial, cell *wfc.Cell) {
	cell.IsEntry = m.entries[a]
	cell.IsPath = m.paths[a]
	switch {
	case m.holes[a]:
		cell.Status = wfc.StatusRemove
	case m.water[a]:
		cell.Status = wfc.StatusWater
	}
}

func (g *Grid) link() error {
	for i, coord := range g.coords {
		id := wfc.CellID(i)
		for _, s := range wfc.AllSides() {
			n, ok := g.index[Coord{Axial: coord.Neighbor(s), Layer: coord.Layer}]
			if !ok || n < id {
				continue
			}
			if err := g.Graph.LinkSides(id, s, n); err != nil {
				return err
			}
		}
		if below, ok := g.index[Coord{Axial: coord.Axial, Layer: coord.Layer - 1}]; ok {
			if err := g.Graph.LinkLayers(below, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Options returns the options the grid was built from.
func (g *Grid) Options() Options { return g.opts }

// Columns returns the axial coordinates of the disk in build order.
func (g *Grid) Columns() []Axial { return g.columns }

// LayerRange returns the lowest and highest layer index.
func (g *Grid) LayerRange() (lo, hi int) {
	return -g.opts.Underground, g.opts.Layers
}

// Coord returns the coordinate of a cell.
func (g *Grid) Coord(id wfc.CellID) (Coord, bool) {
	if id < 0 || int(id) >= len(g.coords) {
		return Coord{}, false
	}
	return g.coords[id], true
}

// CellAt returns the cell at a coordinate.
func (g *Grid) CellAt(c Coord) (wfc.CellID, bool) {
	id, ok := g.index[c]
	return id, ok
}

// Start returns the ground cell of the center column.
func (g *Grid) Start() wfc.CellID {
	return g.index[Coord{Axial: g.opts.Center}]
}

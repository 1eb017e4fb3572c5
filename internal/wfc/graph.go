package wfc

import (
	"fmt"
	"strings"
)

// CellID is a stable handle into a CellGraph.
type CellID int

// NoCell marks an absent neighbor.
const NoCell CellID = -1

// Layer neighbor slots
const (
	LayerBelow = 0
	LayerAbove = 1
)

// CellStatus is the terrain classification assigned by the grid builder
type CellStatus int

const (
	StatusGround CellStatus = iota
	StatusUnderGround
	StatusAboveGround
	StatusRemove
	StatusWater
)

// String returns the string representation of a CellStatus
func (s CellStatus) String() string {
	switch s {
	case StatusGround:
		return "ground"
	case StatusUnderGround:
		return "underground"
	case StatusAboveGround:
		return "above_ground"
	case StatusRemove:
		return "remove"
	case StatusWater:
		return "water"
	default:
		return "unknown"
	}
}

// ParseCellStatus converts a status name to a CellStatus
func ParseCellStatus(name string) (CellStatus, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ground":
		return StatusGround, nil
	case "underground", "under_ground":
		return StatusUnderGround, nil
	case "above_ground", "aboveground":
		return StatusAboveGround, nil
	case "remove":
		return StatusRemove, nil
	case "water":
		return StatusWater, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
	}
}

// CellState tracks a cell through one solve pass
type CellState int

const (
	Unassigned CellState = iota
	Assigned
	Failed
)

// String returns the string representation of a CellState
func (s CellState) String() string {
	switch s {
	case Unassigned:
		return "unassigned"
	case Assigned:
		return "assigned"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cell is one hexagonal prism slot. Topology and classification are owned by
// the grid builder; the solver only writes State and Assignment.
type Cell struct {
	ID     CellID
	Status CellStatus

	Sides  [SideCount]CellID
	Layers [2]CellID

	IsEdge   bool
	EdgeType int
	IsEntry  bool
	IsPath   bool

	State      CellState
	Assignment *Assignment
}

// Below returns the cell beneath, or NoCell.
func (c *Cell) Below() CellID { return c.Layers[LayerBelow] }

// Above returns the cell on top, or NoCell.
func (c *Cell) Above() CellID { return c.Layers[LayerAbove] }

// SideNeighborCount returns how many lateral neighbors exist.
func (c *Cell) SideNeighborCount() int {
	count := 0
	for _, n := range c.Sides {
		if n != NoCell {
			count++
		}
	}
	return count
}

// CellGraph is an arena of cells addressed by CellID.
type CellGraph struct {
	cells []*Cell
}

// NewCellGraph creates an empty graph with room for n cells.
func NewCellGraph(n int) *CellGraph {
	return &CellGraph{cells: make([]*Cell, 0, n)}
}

// AddCell appends a cell with no links and returns its id. Link fields of
// the template are reset.
func (g *CellGraph) AddCell(template Cell) CellID {
	id := CellID(len(g.cells))
	c := template
	c.ID = id
	for i := range c.Sides {
		c.Sides[i] = NoCell
	}
	c.Layers = [2]CellID{NoCell, NoCell}
	g.cells = append(g.cells, &c)
	return id
}

// Len returns the number of cells.
func (g *CellGraph) Len() int {
	return len(g.cells)
}

// Has reports whether id addresses a cell of this graph.
func (g *CellGraph) Has(id CellID) bool {
	return id >= 0 && int(id) < len(g.cells)
}

// Cell returns the cell for id, or nil when id is out of range.
func (g *CellGraph) Cell(id CellID) *Cell {
	if !g.Has(id) {
		return nil
	}
	return g.cells[id]
}

// Cells returns all cells in id order.
func (g *CellGraph) Cells() []*Cell {
	return g.cells
}

// LinkSides connects a's side to b; b sees a across the opposite side.
func (g *CellGraph) LinkSides(a CellID, side Side, b CellID) error {
	if !g.Has(a) || !g.Has(b) || a == b {
		return fmt.Errorf("%w: side link %d-%d", ErrBrokenLink, a, b)
	}
	if !side.Valid() {
		return fmt.Errorf("%w: side %d", ErrBrokenLink, int(side))
	}
	g.cells[a].Sides[side] = b
	g.cells[b].Sides[side.Opposite()] = a
	return nil
}

// LinkLayers stacks above on top of below.
func (g *CellGraph) LinkLayers(below, above CellID) error {
	if !g.Has(below) || !g.Has(above) || below == above {
		return fmt.Errorf("%w: layer link %d-%d", ErrBrokenLink, below, above)
	}
	g.cells[below].Layers[LayerAbove] = above
	g.cells[above].Layers[LayerBelow] = below
	return nil
}

// Validate checks that every neighbor link is reciprocal.
func (g *CellGraph) Validate() error {
	for _, c := range g.cells {
		for s, n := range c.Sides {
			if n == NoCell {
				continue
			}
			other := g.Cell(n)
			if other == nil || other.Sides[Side(s).Opposite()] != c.ID {
				return fmt.Errorf("%w: cell %d side %s", ErrBrokenLink, c.ID, Side(s))
			}
		}
		if b := c.Below(); b != NoCell {
			if other := g.Cell(b); other == nil || other.Above() != c.ID {
				return fmt.Errorf("%w: cell %d below", ErrBrokenLink, c.ID)
			}
		}
		if a := c.Above(); a != NoCell {
			if other := g.Cell(a); other == nil || other.Below() != c.ID {
				return fmt.Errorf("%w: cell %d above", ErrBrokenLink, c.ID)
			}
		}
	}
	return nil
}

// Assign commits an assignment to a cell. A cell is written at most once
// per solve; assigning a non-unassigned cell returns ErrAlreadyAssigned.
func (g *CellGraph) Assign(id CellID, a Assignment) error {
	c := g.Cell(id)
	if c == nil {
		return fmt.Errorf("%w: %d", ErrInvalidStart, id)
	}
	if c.State != Unassigned {
		return fmt.Errorf("%w: cell %d is %s", ErrAlreadyAssigned, id, c.State)
	}
	if a.Orientation.Rotation < 0 || a.Orientation.Rotation >= SideCount {
		return fmt.Errorf("%w: %d", ErrRotationOutOfRange, a.Orientation.Rotation)
	}
	assignment := a
	c.Assignment = &assignment
	c.State = Assigned
	return nil
}

// Reset returns every cell to Unassigned, dropping assignments.
func (g *CellGraph) Reset() {
	for _, c := range g.cells {
		c.State = Unassigned
		c.Assignment = nil
	}
}

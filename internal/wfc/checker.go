package wfc

import "fmt"

// MismatchKind classifies why a candidate was rejected
type MismatchKind int

const (
	MismatchPlacement MismatchKind = iota
	MismatchVariant
	MismatchLayerGroup
	MismatchLayer
	MismatchSide
)

// String returns the string representation of a MismatchKind
func (k MismatchKind) String() string {
	switch k {
	case MismatchPlacement:
		return "placement"
	case MismatchVariant:
		return "variant"
	case MismatchLayerGroup:
		return "layer_group"
	case MismatchLayer:
		return "layer"
	case MismatchSide:
		return "side"
	default:
		return "unknown"
	}
}

// Mismatch is a diagnostic describing one rejected candidate. Orientation is
// meaningless for placement, variant and layer-group rejections, which are
// rotation independent.
type Mismatch struct {
	Kind        MismatchKind
	Cell        CellID
	Neighbor    CellID
	Tile        string
	Orientation Orientation
	Side        Side
	Corner      int
	Socket      SocketID
	Against     SocketID
	Rule        string
}

// String formats the mismatch for logs.
func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchPlacement:
		return fmt.Sprintf("cell %d: %s rejected by %s rule", m.Cell, m.Tile, m.Rule)
	case MismatchVariant, MismatchLayerGroup:
		return fmt.Sprintf("cell %d: %s %s conflict with cell %d", m.Cell, m.Tile, m.Kind, m.Neighbor)
	case MismatchLayer:
		return fmt.Sprintf("cell %d: %s %s corner %d socket %d vs %d on cell %d", m.Cell, m.Tile, m.Orientation, m.Corner, m.Socket, m.Against, m.Neighbor)
	default:
		return fmt.Sprintf("cell %d: %s %s side %s corner %d socket %d vs %d", m.Cell, m.Tile, m.Orientation, m.Side, m.Corner, m.Socket, m.Against)
	}
}

// Checker computes the orientations under which a tile may occupy a cell
// given the cell's currently assigned neighbors. It never mutates the graph.
type Checker struct {
	graph *CellGraph
	dir   *SocketDirectory
	hook  func(Mismatch)
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithMismatchHook receives one Mismatch per rejected comparison.
func WithMismatchHook(hook func(Mismatch)) CheckerOption {
	return func(c *Checker) { c.hook = hook }
}

// NewChecker creates a checker over a graph and socket directory.
func NewChecker(graph *CellGraph, dir *SocketDirectory, opts ...CheckerOption) *Checker {
	c := &Checker{graph: graph, dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (ck *Checker) emit(m Mismatch) {
	if ck.hook != nil {
		ck.hook(m)
	}
}

// neighborContext caches the already-rotated sockets of assigned neighbors.
type neighborContext struct {
	hasBelow   bool
	below      CellID
	belowTop   [SideCount]SocketID
	belowGroup string

	hasAbove    bool
	above       CellID
	aboveBottom [SideCount]SocketID
	aboveGroup  string

	hasSide [SideCount]bool
	side    [SideCount]CellID
	pair    [SideCount]SidePair
	tiles   [SideCount]*TileDefinition
}

func (ck *Checker) context(c *Cell) *neighborContext {
	nc := &neighborContext{}
	if b := ck.graph.Cell(c.Below()); b != nil && b.State == Assigned && b.Assignment != nil {
		nc.hasBelow = true
		nc.below = b.ID
		nc.belowTop = layerSockets(b.Assignment.Tile, FaceTop, b.Assignment.Orientation)
		nc.belowGroup = b.Assignment.Tile.LayerGroup
	}
	if a := ck.graph.Cell(c.Above()); a != nil && a.State == Assigned && a.Assignment != nil {
		nc.hasAbove = true
		nc.above = a.ID
		nc.aboveBottom = layerSockets(a.Assignment.Tile, FaceBottom, a.Assignment.Orientation)
		nc.aboveGroup = a.Assignment.Tile.LayerGroup
	}
	for s := 0; s < SideCount; s++ {
		n := ck.graph.Cell(c.Sides[s])
		if n == nil || n.State != Assigned || n.Assignment == nil {
			continue
		}
		nc.hasSide[s] = true
		nc.side[s] = n.ID
		nc.pair[s] = sideSockets(n.Assignment.Tile, Side(s).Opposite(), n.Assignment.Orientation)
		nc.tiles[s] = n.Assignment.Tile
	}
	return nc
}

// FeasibleOrientations returns every orientation under which t could occupy
// the cell. The result is empty when none can.
func (ck *Checker) FeasibleOrientations(id CellID, t *TileDefinition) []Orientation {
	c := ck.graph.Cell(id)
	if c == nil || t == nil {
		return nil
	}
	return ck.feasible(c, ck.context(c), t)
}

// Candidates returns the union of feasible (tile, orientation) pairs over
// tiles, in tile order then inversion then rotation.
func (ck *Checker) Candidates(id CellID, tiles []*TileDefinition) []Candidate {
	c := ck.graph.Cell(id)
	if c == nil {
		return nil
	}
	nc := ck.context(c)
	var out []Candidate
	for _, t := range tiles {
		for _, o := range ck.feasible(c, nc, t) {
			out = append(out, Candidate{Tile: t, Orientation: o})
		}
	}
	return out
}

func (ck *Checker) feasible(c *Cell, nc *neighborContext, t *TileDefinition) []Orientation {
	if ok, rule := Eligible(ck.graph, c, t); !ok {
		ck.emit(Mismatch{Kind: MismatchPlacement, Cell: c.ID, Neighbor: NoCell, Tile: t.Name, Rule: rule.Name()})
		return nil
	}

	for s := 0; s < SideCount; s++ {
		if nc.hasSide[s] && variantConflict(t, nc.tiles[s]) {
			ck.emit(Mismatch{Kind: MismatchVariant, Cell: c.ID, Neighbor: nc.side[s], Tile: t.Name, Side: Side(s)})
			return nil
		}
	}

	if nc.hasBelow && nc.belowGroup != t.LayerGroup {
		ck.emit(Mismatch{Kind: MismatchLayerGroup, Cell: c.ID, Neighbor: nc.below, Tile: t.Name})
		return nil
	}
	if nc.hasAbove && nc.aboveGroup != t.LayerGroup {
		ck.emit(Mismatch{Kind: MismatchLayerGroup, Cell: c.ID, Neighbor: nc.above, Tile: t.Name})
		return nil
	}

	inversions := []bool{false}
	if t.Invertible {
		inversions = append(inversions, true)
	}

	var out []Orientation
	for _, inv := range inversions {
		for rot := 0; rot < SideCount; rot++ {
			o := Orientation{Rotation: rot, Inverted: inv}
			if nc.hasBelow && !ck.belowFits(c, nc, t, o) {
				continue
			}
			if nc.hasAbove && !ck.aboveFits(c, nc, t, o) {
				continue
			}
			if !ck.sidesFit(c, nc, t, o) {
				continue
			}
			out = append(out, o)
		}
	}
	return out
}

// belowFits compares this tile's bottom corners against the top corners of
// the tile below, index for index.
func (ck *Checker) belowFits(c *Cell, nc *neighborContext, t *TileDefinition, o Orientation) bool {
	bottom := layerSockets(t, FaceBottom, o)
	for i := 0; i < SideCount; i++ {
		if !ck.dir.Compatible(bottom[i], nc.belowTop[i]) {
			ck.emit(Mismatch{
				Kind: MismatchLayer, Cell: c.ID, Neighbor: nc.below, Tile: t.Name,
				Orientation: o, Corner: i, Socket: bottom[i], Against: nc.belowTop[i],
			})
			return false
		}
	}
	return true
}

// aboveFits is belowFits for a cell whose upper neighbor was assigned first.
func (ck *Checker) aboveFits(c *Cell, nc *neighborContext, t *TileDefinition, o Orientation) bool {
	top := layerSockets(t, FaceTop, o)
	for i := 0; i < SideCount; i++ {
		if !ck.dir.Compatible(top[i], nc.aboveBottom[i]) {
			ck.emit(Mismatch{
				Kind: MismatchLayer, Cell: c.ID, Neighbor: nc.above, Tile: t.Name,
				Orientation: o, Corner: i, Socket: top[i], Against: nc.aboveBottom[i],
			})
			return false
		}
	}
	return true
}

// sidesFit checks every assigned side neighbor. The shared edge is wound in
// opposite directions on the two cells, so corner i meets corner (i+1)%2.
func (ck *Checker) sidesFit(c *Cell, nc *neighborContext, t *TileDefinition, o Orientation) bool {
	for s := 0; s < SideCount; s++ {
		if !nc.hasSide[s] {
			continue
		}
		mine := sideSockets(t, Side(s), o)
		theirs := nc.pair[s]
		for i := 0; i < 2; i++ {
			j := (i + 1) % 2
			if !ck.dir.Compatible(mine.Bottom[i], theirs.Bottom[j]) {
				ck.emit(Mismatch{
					Kind: MismatchSide, Cell: c.ID, Neighbor: nc.side[s], Tile: t.Name, Orientation: o,
					Side: Side(s), Corner: i, Socket: mine.Bottom[i], Against: theirs.Bottom[j],
				})
				return false
			}
			if !ck.dir.Compatible(mine.Top[i], theirs.Top[j]) {
				ck.emit(Mismatch{
					Kind: MismatchSide, Cell: c.ID, Neighbor: nc.side[s], Tile: t.Name, Orientation: o,
					Side: Side(s), Corner: i, Socket: mine.Top[i], Against: theirs.Top[j],
				})
				return false
			}
		}
	}
	return true
}

// variantConflict reports whether two side-adjacent tiles of the same
// category disagree on variant while at least one of them sets it.
func variantConflict(t, other *TileDefinition) bool {
	if other == nil || t.Category == "" || t.Category != other.Category {
		return false
	}
	if t.Variant == "" && other.Variant == "" {
		return false
	}
	return t.Variant != other.Variant
}

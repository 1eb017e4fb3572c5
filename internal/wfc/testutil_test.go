package wfc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// openRules lets a tile go anywhere except entry cells.
var openRules = PlacementRules{PathAllowed: true, Roofable: true}

// uniformTile uses socket s on every side corner and face corner.
func uniformTile(name string, s SocketID) *TileDefinition {
	t := &TileDefinition{Name: name, Placement: openRules}
	for i := 0; i < SideCount; i++ {
		t.Sides[i] = SidePair{Bottom: [2]SocketID{s, s}, Top: [2]SocketID{s, s}}
		t.Layers.Bottom[i] = s
		t.Layers.Top[i] = s
	}
	return t
}

// labelledTile gives every socket position a distinct id so that
// orientation math can be read off the result. Side k uses 10k..10k+3,
// bottom corners 100..105 and top corners 200..205.
func labelledTile(name string) *TileDefinition {
	t := &TileDefinition{Name: name, Invertible: true, Placement: openRules}
	for k := 0; k < SideCount; k++ {
		b := SocketID(10 * k)
		t.Sides[k] = SidePair{Bottom: [2]SocketID{b, b + 1}, Top: [2]SocketID{b + 2, b + 3}}
		t.Layers.Bottom[k] = SocketID(100 + k)
		t.Layers.Top[k] = SocketID(200 + k)
	}
	return t
}

// singleSocketDir has one socket "s" that is compatible with itself when ok.
func singleSocketDir(t *testing.T, ok bool) *SocketDirectory {
	t.Helper()
	dir, err := NewSocketDirectory([]string{"s"}, [][]bool{{ok}})
	require.NoError(t, err)
	return dir
}

// newLine links n cells east to west: cell i's east side touches cell i+1.
func newLine(t *testing.T, n int) *CellGraph {
	t.Helper()
	g := NewCellGraph(n)
	for i := 0; i < n; i++ {
		g.AddCell(Cell{Status: StatusGround})
	}
	for i := 0; i+1 < n; i++ {
		require.NoError(t, g.LinkSides(CellID(i), SideEast, CellID(i+1)))
	}
	return g
}

// newStack builds a vertical column of n cells, ground at the bottom.
func newStack(t *testing.T, n int) *CellGraph {
	t.Helper()
	g := NewCellGraph(n)
	for i := 0; i < n; i++ {
		status := StatusAboveGround
		if i == 0 {
			status = StatusGround
		}
		g.AddCell(Cell{Status: status})
	}
	for i := 0; i+1 < n; i++ {
		require.NoError(t, g.LinkLayers(CellID(i), CellID(i+1)))
	}
	return g
}

// tileNames projects an assignment map to tile name plus orientation.
func tileNames(assigned map[CellID]Assignment) map[CellID]string {
	out := make(map[CellID]string, len(assigned))
	for id, a := range assigned {
		out[id] = a.Tile.Name + ":" + a.Orientation.String()
	}
	return out
}

// snapshot copies the assignment of every assigned cell.
func snapshot(g *CellGraph) map[CellID]Assignment {
	out := make(map[CellID]Assignment)
	for _, c := range g.Cells() {
		if c.State == Assigned && c.Assignment != nil {
			out[c.ID] = *c.Assignment
		}
	}
	return out
}

// mirrored reflects t in canonical space.
func mirrored(t *TileDefinition) *TileDefinition {
	m := *t
	for k := 0; k < SideCount; k++ {
		m.Sides[k] = InvertSidePair(t.Sides[mod6(-k)])
	}
	m.Layers.Bottom = InvertLayer(t.Layers.Bottom)
	m.Layers.Top = InvertLayer(t.Layers.Top)
	return &m
}

// bake returns a copy of t whose canonical layout is what t presents under o.
func bake(t *TileDefinition, o Orientation) (*TileDefinition, error) {
	if err := checkOrientation(o); err != nil {
		return nil, err
	}
	b := *t
	for _, s := range AllSides() {
		b.Sides[s] = sideSockets(t, s, o)
	}
	b.Layers.Bottom = layerSockets(t, FaceBottom, o)
	b.Layers.Top = layerSockets(t, FaceTop, o)
	return &b, nil
}

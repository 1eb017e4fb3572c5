package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

const minimal = `
sockets: [grass, wall]
compatible:
  - [grass, grass]
tiles:
  - name: meadow
    sides:
      - bottom: [grass, grass]
        top: [grass, grass]
    layers:
      bottom: [grass]
      top: [grass]
`

func TestParseMinimal(t *testing.T) {
	set, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, 2, set.Directory.Len())
	grass, _ := set.Directory.Lookup("grass")
	wall, _ := set.Directory.Lookup("wall")
	assert.True(t, set.Directory.Compatible(grass, grass))
	assert.False(t, set.Directory.Compatible(wall, wall))

	require.Len(t, set.Catalog.General, 1)
	assert.Empty(t, set.Catalog.Edge)

	meadow, ok := set.Tile("meadow")
	require.True(t, ok)
	for _, s := range wfc.AllSides() {
		assert.Equal(t, wfc.SidePair{Bottom: [2]wfc.SocketID{grass, grass}, Top: [2]wfc.SocketID{grass, grass}}, meadow.Sides[s])
	}
	assert.True(t, meadow.Placement.Roofable)
	assert.False(t, meadow.Placement.PathAllowed)
	assert.Equal(t, wfc.LayerAny, meadow.Placement.Layer)
	assert.Equal(t, []string{"meadow"}, set.Names())
	assert.Len(t, set.Fingerprint, 64)
}

func TestParseFullTile(t *testing.T) {
	set, err := Parse([]byte(`
sockets: [a, b, c]
compatible: [[a, b]]
one_way: [[c, a]]
tiles:
  - name: spiral
    general: false
    edge: true
    invertible: true
    category: wall
    variant: stone
    layer_group: keep
    sides:
      - {bottom: [a, b], top: [b, c]}
      - {bottom: [a, a], top: [a, a]}
      - {bottom: [b, b], top: [b, b]}
      - {bottom: [c, c], top: [c, c]}
      - {bottom: [a, c], top: [c, a]}
      - {bottom: [b, a], top: [a, b]}
    layers:
      bottom: [a, b, c, a, b, c]
      top: [c]
    placement:
      excluded_statuses: [water, remove]
      entry_only: true
      path_allowed: true
      layer: top_only
      roofable: false
`))
	require.NoError(t, err)

	a, _ := set.Directory.Lookup("a")
	b, _ := set.Directory.Lookup("b")
	c, _ := set.Directory.Lookup("c")
	assert.True(t, set.Directory.Compatible(a, b))
	assert.True(t, set.Directory.Compatible(b, a))
	assert.True(t, set.Directory.Compatible(c, a))
	assert.False(t, set.Directory.Compatible(a, c))

	assert.Empty(t, set.Catalog.General)
	require.Len(t, set.Catalog.Edge, 1)

	tile := set.Catalog.Edge[0]
	assert.Equal(t, "spiral", tile.Name)
	assert.True(t, tile.Invertible)
	assert.Equal(t, "wall", tile.Category)
	assert.Equal(t, "stone", tile.Variant)
	assert.Equal(t, "keep", tile.LayerGroup)
	assert.Equal(t, wfc.SidePair{Bottom: [2]wfc.SocketID{a, b}, Top: [2]wfc.SocketID{b, c}}, tile.Sides[wfc.SideEast])
	assert.Equal(t, wfc.SidePair{Bottom: [2]wfc.SocketID{b, a}, Top: [2]wfc.SocketID{a, b}}, tile.Sides[wfc.SideSouthEast])
	assert.Equal(t, [wfc.SideCount]wfc.SocketID{a, b, c, a, b, c}, tile.Layers.Bottom)
	assert.Equal(t, [wfc.SideCount]wfc.SocketID{c, c, c, c, c, c}, tile.Layers.Top)

	assert.Equal(t, wfc.PlacementRules{
		ExcludedStatuses: []wfc.CellStatus{wfc.StatusWater, wfc.StatusRemove},
		EntryOnly:        true,
		PathAllowed:      true,
		Layer:            wfc.LayerTopOnly,
		Roofable:         false,
	}, tile.Placement)
}

func TestParseErrors(t *testing.T) {
	tile := func(body string) string {
		return "sockets: [x]\ncompatible: [[x, x]]\ntiles:\n" + body
	}
	good := "    sides: [{bottom: [x, x], top: [x, x]}]\n    layers: {bottom: [x], top: [x]}\n"

	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{"no sockets", "tiles: []\n", wfc.ErrEmptyDirectory},
		{"duplicate socket", "sockets: [x, x]\n", wfc.ErrDuplicateSocket},
		{"unknown socket in pair", "sockets: [x]\ncompatible: [[x, y]]\n", ErrUnknownSocketName},
		{"short pair", "sockets: [x]\ncompatible: [[x]]\n", ErrBadPair},
		{"no tiles", "sockets: [x]\n", wfc.ErrEmptyCatalog},
		{"unnamed tile", tile("  - sides: []\n"), ErrUnnamedTile},
		{"duplicate tile", tile("  - name: t\n" + good + "  - name: t\n" + good), ErrDuplicateTile},
		{"three sides", tile("  - name: t\n    sides: [{bottom: [x, x], top: [x, x]}, {bottom: [x, x], top: [x, x]}, {bottom: [x, x], top: [x, x]}]\n    layers: {bottom: [x], top: [x]}\n"), ErrSocketCount},
		{"one corner", tile("  - name: t\n    sides: [{bottom: [x], top: [x, x]}]\n    layers: {bottom: [x], top: [x]}\n"), ErrSocketCount},
		{"unknown side socket", tile("  - name: t\n    sides: [{bottom: [x, q], top: [x, x]}]\n    layers: {bottom: [x], top: [x]}\n"), ErrUnknownSocketName},
		{"unknown layer socket", tile("  - name: t\n    sides: [{bottom: [x, x], top: [x, x]}]\n    layers: {bottom: [x], top: [q]}\n"), ErrUnknownSocketName},
		{"bad status", tile("  - name: t\n" + good + "    placement: {excluded_statuses: [lava]}\n"), wfc.ErrUnknownStatus},
		{"bad layer", tile("  - name: t\n" + good + "    placement: {layer: middle}\n"), wfc.ErrUnknownRestriction},
		{"tile in no list", tile("  - name: t\n" + good + "  - name: spare\n    general: false\n" + good), ErrUnlistedTile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := Parse([]byte("sockets: [x\n"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	first, err := Parse([]byte(minimal))
	require.NoError(t, err)

	reformatted, err := Parse([]byte(`# same catalog, flow style
sockets: [grass, wall]
compatible: [[grass, grass]]
tiles:
  - {name: meadow, sides: [{bottom: [grass, grass], top: [grass, grass]}], layers: {bottom: [grass], top: [grass]}}
`))
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, reformatted.Fingerprint)

	changed, err := Parse([]byte(minimal + "    invertible: true\n"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, changed.Fingerprint)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestVillageCatalogSolves(t *testing.T) {
	set, err := Load("../../catalogs/village.yaml")
	require.NoError(t, err)
	assert.Len(t, set.Names(), 9)
	assert.Len(t, set.Catalog.General, 9)
	assert.Len(t, set.Catalog.Edge, 7)

	grid, err := hexgrid.Build(hexgrid.Options{
		Radius:  3,
		Layers:  1,
		Entries: []hexgrid.Axial{{Q: 3, R: 0}},
		Paths:   []hexgrid.Axial{{Q: 1, R: 0}, {Q: 2, R: 0}, {Q: 3, R: 0}},
		Holes:   []hexgrid.Axial{{Q: -1, R: -1}},
	})
	require.NoError(t, err)

	opts := wfc.DefaultOptions()
	opts.Start = grid.Start()
	report, err := wfc.SolveAll(grid.Graph, set.Catalog, set.Directory, opts, wfc.NewRand(8))
	require.NoError(t, err)
	assert.True(t, report.Solved(), "failed cells: %v", report.Failed)

	entry, _ := grid.CellAt(hexgrid.Coord{Axial: hexgrid.Axial{Q: 3, R: 0}})
	assert.Equal(t, "gate", grid.Graph.Cell(entry).Assignment.Tile.Name)
	hole, _ := grid.CellAt(hexgrid.Coord{Axial: hexgrid.Axial{Q: -1, R: -1}})
	assert.Equal(t, "void", grid.Graph.Cell(hole).Assignment.Tile.Name)
}

func TestVillageCatalogStaysConsistent(t *testing.T) {
	set, err := Load("../../catalogs/village.yaml")
	require.NoError(t, err)

	// Same grid as hexwfc.yaml.
	opts := hexgrid.Options{
		Radius:  4,
		Layers:  1,
		Entries: []hexgrid.Axial{{Q: 4, R: 0}},
		Paths:   []hexgrid.Axial{{Q: 1, R: 0}, {Q: 2, R: 0}, {Q: 3, R: 0}, {Q: 4, R: 0}},
		Holes:   []hexgrid.Axial{{Q: -2, R: 1}},
		Water:   []hexgrid.Axial{{Q: -1, R: -1}, {Q: 0, R: -2}},
	}

	for seed := int64(1); seed <= 50; seed++ {
		grid, err := hexgrid.Build(opts)
		require.NoError(t, err)

		solveOpts := wfc.DefaultOptions()
		solveOpts.Start = grid.Start()
		report, err := wfc.SolveAll(grid.Graph, set.Catalog, set.Directory, solveOpts, wfc.NewRand(seed))
		require.NoError(t, err)

		ck := wfc.NewChecker(grid.Graph, set.Directory)
		for id, a := range report.Assigned {
			assert.Contains(t, ck.FeasibleOrientations(id, a.Tile), a.Orientation,
				"seed %d cell %d tile %s %s", seed, id, a.Tile.Name, a.Orientation)

			if a.Tile.Name == "roof" {
				below := grid.Graph.Cell(grid.Graph.Cell(id).Below())
				require.NotNil(t, below)
				if below.State == wfc.Assigned {
					assert.Equal(t, "house", below.Assignment.Tile.Category, "seed %d cell %d", seed, id)
				}
			}
		}
		for _, id := range report.Failed {
			assert.Equal(t, wfc.StatusWater, grid.Graph.Cell(id).Status, "seed %d cell %d", seed, id)
		}
	}
}

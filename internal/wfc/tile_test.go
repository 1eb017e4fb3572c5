package wfc

import (
	"errors"
	"testing"
)

func TestSideString(t *testing.T) {
	tests := []struct {
		side     Side
		expected string
	}{
		{SideEast, "east"},
		{SideNorthEast, "north_east"},
		{SideNorthWest, "north_west"},
		{SideWest, "west"},
		{SideSouthWest, "south_west"},
		{SideSouthEast, "south_east"},
		{Side(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.side.String(); got != tt.expected {
			t.Errorf("Side(%d).String() = %q, want %q", int(tt.side), got, tt.expected)
		}
	}
}

func TestSideOpposite(t *testing.T) {
	tests := []struct {
		side     Side
		opposite Side
	}{
		{SideEast, SideWest},
		{SideNorthEast, SideSouthWest},
		{SideNorthWest, SideSouthEast},
		{SideWest, SideEast},
		{SideSouthWest, SideNorthEast},
		{SideSouthEast, SideNorthWest},
	}

	for _, tt := range tests {
		if got := tt.side.Opposite(); got != tt.opposite {
			t.Errorf("%s.Opposite() = %s, want %s", tt.side, got, tt.opposite)
		}
		if got := tt.side.Opposite().Opposite(); got != tt.side {
			t.Errorf("%s.Opposite().Opposite() = %s", tt.side, got)
		}
	}
}

func TestAllSides(t *testing.T) {
	sides := AllSides()
	if len(sides) != SideCount {
		t.Fatalf("AllSides() returned %d sides, want %d", len(sides), SideCount)
	}
	for i, s := range sides {
		if int(s) != i {
			t.Errorf("AllSides()[%d] = %d", i, int(s))
		}
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Side(6).Valid() || Side(-1).Valid() {
		t.Error("out of range sides should be invalid")
	}
}

func TestOrientationString(t *testing.T) {
	tests := []struct {
		o        Orientation
		expected string
	}{
		{Orientation{}, "r0"},
		{Orientation{Rotation: 3}, "r3"},
		{Orientation{Rotation: 5, Inverted: true}, "r5i"},
	}

	for _, tt := range tests {
		if got := tt.o.String(); got != tt.expected {
			t.Errorf("Orientation%+v.String() = %q, want %q", tt.o, got, tt.expected)
		}
	}
}

func TestTileValidate(t *testing.T) {
	dir := singleSocketDir(t, true)

	if err := uniformTile("ok", 0).Validate(dir); err != nil {
		t.Errorf("valid tile: unexpected error %v", err)
	}

	bad := uniformTile("bad", 0)
	bad.Sides[4].Top[1] = 3
	if err := bad.Validate(dir); !errors.Is(err, ErrUnknownSocket) {
		t.Errorf("side socket out of range: got %v, want ErrUnknownSocket", err)
	}

	bad = uniformTile("bad", 0)
	bad.Layers.Top[2] = -1
	if err := bad.Validate(dir); !errors.Is(err, ErrUnknownSocket) {
		t.Errorf("layer socket out of range: got %v, want ErrUnknownSocket", err)
	}
}

func TestCatalogTilesFor(t *testing.T) {
	general := []*TileDefinition{uniformTile("g", 0)}
	edge := []*TileDefinition{uniformTile("e", 0)}

	tests := []struct {
		name    string
		catalog Catalog
		cell    Cell
		want    string
	}{
		{"interior uses general", Catalog{General: general, Edge: edge}, Cell{}, "g"},
		{"edge uses edge list", Catalog{General: general, Edge: edge}, Cell{IsEdge: true}, "e"},
		{"edge falls back to general", Catalog{General: general}, Cell{IsEdge: true}, "g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := tt.catalog.TilesFor(&tt.cell)
			if len(tiles) != 1 || tiles[0].Name != tt.want {
				t.Errorf("TilesFor() = %v, want [%s]", tiles, tt.want)
			}
		})
	}
}

func TestCatalogValidate(t *testing.T) {
	dir := singleSocketDir(t, true)

	var nilCatalog *Catalog
	if err := nilCatalog.Validate(dir); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("nil catalog: got %v", err)
	}
	if err := (&Catalog{Edge: []*TileDefinition{uniformTile("e", 0)}}).Validate(dir); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("edge-only catalog: got %v", err)
	}
	if err := (&Catalog{General: []*TileDefinition{nil}}).Validate(dir); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("nil tile: got %v", err)
	}

	bad := uniformTile("bad", 5)
	if err := (&Catalog{General: []*TileDefinition{uniformTile("g", 0)}, Edge: []*TileDefinition{bad}}).Validate(dir); !errors.Is(err, ErrUnknownSocket) {
		t.Errorf("bad edge tile: got %v", err)
	}
}

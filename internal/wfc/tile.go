package wfc

import "fmt"

// SideCount is the number of lateral sides (and corners) of a hex cell.
const SideCount = 6

// Side identifies one of the six lateral faces of a hex cell
type Side int

const (
	SideEast Side = iota
	SideNorthEast
	SideNorthWest
	SideWest
	SideSouthWest
	SideSouthEast
)

// String returns the string representation of a Side
func (s Side) String() string {
	switch s {
	case SideEast:
		return "east"
	case SideNorthEast:
		return "north_east"
	case SideNorthWest:
		return "north_west"
	case SideWest:
		return "west"
	case SideSouthWest:
		return "south_west"
	case SideSouthEast:
		return "south_east"
	default:
		return "unknown"
	}
}

// Opposite returns the side a neighbor presents back across this side
func (s Side) Opposite() Side {
	return Side((int(s) + 3) % SideCount)
}

// Valid reports whether s is one of the six sides.
func (s Side) Valid() bool {
	return s >= 0 && s < SideCount
}

// AllSides returns all six sides in canonical order
func AllSides() []Side {
	return []Side{SideEast, SideNorthEast, SideNorthWest, SideWest, SideSouthWest, SideSouthEast}
}

// Face selects the bottom or top layer face of a cell
type Face int

const (
	FaceBottom Face = iota
	FaceTop
)

// String returns the string representation of a Face
func (f Face) String() string {
	switch f {
	case FaceBottom:
		return "bottom"
	case FaceTop:
		return "top"
	default:
		return "unknown"
	}
}

// SidePair holds the corner sockets along one lateral side: the two corners
// of the bottom edge and the two corners of the top edge.
type SidePair struct {
	Bottom [2]SocketID
	Top    [2]SocketID
}

// LayerSockets holds the six corner sockets of the bottom and top faces.
type LayerSockets struct {
	Bottom [SideCount]SocketID
	Top    [SideCount]SocketID
}

// Face returns the corner array for a face.
func (l *LayerSockets) Face(f Face) [SideCount]SocketID {
	if f == FaceTop {
		return l.Top
	}
	return l.Bottom
}

// TileDefinition describes one placeable module in its canonical
// orientation (rotation 0, not inverted). It is immutable after loading.
type TileDefinition struct {
	Name       string
	Sides      [SideCount]SidePair
	Layers     LayerSockets
	Invertible bool

	// Category and Variant constrain side neighbors: tiles that share a
	// category must agree on variant. Empty means unset.
	Category string
	Variant  string

	// LayerGroup must match exactly between vertically stacked tiles.
	LayerGroup string

	Placement PlacementRules
}

// String returns the tile name
func (t *TileDefinition) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Validate checks every socket id against the directory.
func (t *TileDefinition) Validate(dir *SocketDirectory) error {
	check := func(where string, id SocketID) error {
		if !dir.Valid(id) {
			return fmt.Errorf("%w: tile %q %s uses socket %d", ErrUnknownSocket, t.Name, where, int(id))
		}
		return nil
	}
	for s := 0; s < SideCount; s++ {
		for i := 0; i < 2; i++ {
			if err := check(fmt.Sprintf("side %d bottom[%d]", s, i), t.Sides[s].Bottom[i]); err != nil {
				return err
			}
			if err := check(fmt.Sprintf("side %d top[%d]", s, i), t.Sides[s].Top[i]); err != nil {
				return err
			}
		}
	}
	for c := 0; c < SideCount; c++ {
		if err := check(fmt.Sprintf("bottom corner %d", c), t.Layers.Bottom[c]); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("top corner %d", c), t.Layers.Top[c]); err != nil {
			return err
		}
	}
	return nil
}

// Catalog holds the tiles available to a solve. Edge cells draw from Edge
// when it is non-empty, otherwise from General.
type Catalog struct {
	General []*TileDefinition
	Edge    []*TileDefinition
}

// TilesFor returns the tile list that applies to a cell.
func (c *Catalog) TilesFor(cell *Cell) []*TileDefinition {
	if cell.IsEdge && len(c.Edge) > 0 {
		return c.Edge
	}
	return c.General
}

// Validate checks the catalog preconditions of a solve.
func (c *Catalog) Validate(dir *SocketDirectory) error {
	if c == nil || len(c.General) == 0 {
		return ErrEmptyCatalog
	}
	for _, list := range [][]*TileDefinition{c.General, c.Edge} {
		for _, t := range list {
			if t == nil {
				return fmt.Errorf("%w: nil tile", ErrEmptyCatalog)
			}
			if err := t.Validate(dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// Orientation is a rotation (0..5, multiples of 60 degrees) plus an
// optional mirror.
type Orientation struct {
	Rotation int
	Inverted bool
}

// String returns a compact form such as "r3" or "r3i".
func (o Orientation) String() string {
	if o.Inverted {
		return fmt.Sprintf("r%di", o.Rotation)
	}
	return fmt.Sprintf("r%d", o.Rotation)
}

// Assignment is a committed tile choice for a cell.
type Assignment struct {
	Tile        *TileDefinition
	Orientation Orientation
}

// Candidate is one feasible (tile, orientation) for a cell.
type Candidate struct {
	Tile        *TileDefinition
	Orientation Orientation
}

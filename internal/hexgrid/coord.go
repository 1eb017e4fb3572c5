package hexgrid

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// Axial represents axial coordinates (q, r) for pointy-top orientation.
type Axial struct {
	Q int `yaml:"q" json:"q"`
	R int `yaml:"r" json:"r"`
}

// Directions holds the axial offset of each wfc.Side, indexed by side.
var Directions = [wfc.SideCount]Axial{
	{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Mul scales an axial vector by k.
func (a Axial) Mul(k int) Axial { return Axial{a.Q * k, a.R * k} }

// Neighbor returns the coordinate across side s.
func (a Axial) Neighbor(s wfc.Side) Axial { return a.Add(Directions[s]) }

func (a Axial) String() string { return fmt.Sprintf("(%d,%d)", a.Q, a.R) }

// Distance returns hex distance between two axial coords.
func Distance(a, b Axial) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Ring returns the coordinates at exact distance k from c, starting from
// the south-west direction and walking each side in turn. Ring(c, 0) is [c].
func Ring(c Axial, k int) []Axial {
	if k <= 0 {
		return []Axial{c}
	}
	res := make([]Axial, 0, 6*k)
	cur := c.Add(Directions[wfc.SideSouthWest].Mul(k))
	for side := 0; side < wfc.SideCount; side++ {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Add(Directions[side])
		}
	}
	return res
}

// Disk returns all coordinates at distance <= r from c, ordered by q then r.
func Disk(c Axial, r int) []Axial {
	res := make([]Axial, 0, 1+3*r*(r+1))
	for q := -r; q <= r; q++ {
		for r2 := max(-r, -q-r); r2 <= min(r, -q+r); r2++ {
			res = append(res, c.Add(Axial{q, r2}))
		}
	}
	return res
}

// Coord addresses one prism: a column plus a layer. Layer 0 is ground,
// negative layers are underground.
type Coord struct {
	Axial
	Layer int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d,%d)", c.Q, c.R, c.Layer) }

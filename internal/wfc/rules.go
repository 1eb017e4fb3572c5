package wfc

import (
	"fmt"
	"strings"
)

// LayerRestriction limits which vertical positions a tile may occupy
type LayerRestriction int

const (
	LayerAny LayerRestriction = iota
	LayerBaseOnly
	LayerTopOnly
	LayerNoBase
)

// String returns the string representation of a LayerRestriction
func (l LayerRestriction) String() string {
	switch l {
	case LayerAny:
		return "any"
	case LayerBaseOnly:
		return "base_only"
	case LayerTopOnly:
		return "top_only"
	case LayerNoBase:
		return "no_base"
	default:
		return "unknown"
	}
}

// ParseLayerRestriction converts a name to a LayerRestriction. The empty
// string means LayerAny.
func ParseLayerRestriction(name string) (LayerRestriction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any", "none":
		return LayerAny, nil
	case "base_only", "base":
		return LayerBaseOnly, nil
	case "top_only", "top":
		return LayerTopOnly, nil
	case "no_base":
		return LayerNoBase, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRestriction, name)
	}
}

// PlacementRules is the content-authored eligibility configuration of a tile.
type PlacementRules struct {
	ExcludedStatuses []CellStatus
	EntryOnly        bool
	PathAllowed      bool
	Layer            LayerRestriction
	Roofable         bool
}

// Rules expands the configuration into the rules it implies, cheapest first.
func (p PlacementRules) Rules() []PlacementRule {
	rules := make([]PlacementRule, 0, 5)
	if len(p.ExcludedStatuses) > 0 {
		rules = append(rules, StatusRule{Excluded: p.ExcludedStatuses})
	}
	rules = append(rules, EntryRule{EntryOnly: p.EntryOnly})
	if !p.PathAllowed {
		rules = append(rules, PathRule{})
	}
	if p.Layer != LayerAny {
		rules = append(rules, LayerRule{Restriction: p.Layer})
	}
	if !p.Roofable {
		rules = append(rules, RoofRule{})
	}
	return rules
}

// PlacementRule is one eligibility constraint of a tile against a cell. It
// depends only on the cell's classification and topology, never on
// neighbor assignments.
type PlacementRule interface {
	Allows(g *CellGraph, c *Cell) bool
	Name() string
}

// StatusRule rejects cells whose status is excluded.
type StatusRule struct {
	Excluded []CellStatus
}

func (r StatusRule) Allows(_ *CellGraph, c *Cell) bool {
	for _, s := range r.Excluded {
		if c.Status == s {
			return false
		}
	}
	return true
}

func (r StatusRule) Name() string { return "status" }

// EntryRule pairs entry cells with entry-only tiles: entry cells take only
// entry-only tiles and other cells never do.
type EntryRule struct {
	EntryOnly bool
}

func (r EntryRule) Allows(_ *CellGraph, c *Cell) bool {
	return c.IsEntry == r.EntryOnly
}

func (r EntryRule) Name() string { return "entry" }

// PathRule rejects path cells for tiles that do not allow paths.
type PathRule struct{}

func (r PathRule) Allows(_ *CellGraph, c *Cell) bool {
	return !c.IsPath
}

func (r PathRule) Name() string { return "path" }

// LayerRule enforces a LayerRestriction.
type LayerRule struct {
	Restriction LayerRestriction
}

func (r LayerRule) Allows(_ *CellGraph, c *Cell) bool {
	switch r.Restriction {
	case LayerBaseOnly:
		return isBaseCell(c)
	case LayerNoBase:
		return !isBaseCell(c)
	case LayerTopOnly:
		return c.Above() == NoCell
	default:
		return true
	}
}

func (r LayerRule) Name() string { return "layer:" + r.Restriction.String() }

// RoofRule rejects cells that will carry something above them.
type RoofRule struct{}

func (r RoofRule) Allows(g *CellGraph, c *Cell) bool {
	above := g.Cell(c.Above())
	return above == nil || above.Status == StatusRemove
}

func (r RoofRule) Name() string { return "roof" }

// isBaseCell reports whether c sits on the ground layer of its column.
func isBaseCell(c *Cell) bool {
	return c.Status == StatusGround || c.Below() == NoCell
}

// Eligible evaluates every placement rule of t against c. When the tile is
// rejected the first failing rule is returned.
func Eligible(g *CellGraph, c *Cell, t *TileDefinition) (bool, PlacementRule) {
	for _, rule := range t.Placement.Rules() {
		if !rule.Allows(g, c) {
			return false, rule
		}
	}
	return true, nil
}

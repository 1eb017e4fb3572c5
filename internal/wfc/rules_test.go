package wfc

import (
	"errors"
	"testing"
)

func TestParseLayerRestriction(t *testing.T) {
	tests := []struct {
		input    string
		expected LayerRestriction
	}{
		{"", LayerAny},
		{"any", LayerAny},
		{"base_only", LayerBaseOnly},
		{"BASE", LayerBaseOnly},
		{"top_only", LayerTopOnly},
		{" no_base ", LayerNoBase},
	}

	for _, tt := range tests {
		got, err := ParseLayerRestriction(tt.input)
		if err != nil {
			t.Errorf("ParseLayerRestriction(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseLayerRestriction(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseLayerRestriction("sideways"); !errors.Is(err, ErrUnknownRestriction) {
		t.Errorf("expected ErrUnknownRestriction, got %v", err)
	}
}

func TestParseCellStatus(t *testing.T) {
	for _, s := range []CellStatus{StatusGround, StatusUnderGround, StatusAboveGround, StatusRemove, StatusWater} {
		got, err := ParseCellStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseCellStatus(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseCellStatus("lava"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

// ruleGraph is a column of ground, above_ground and a removed top cell, plus
// a lone ground cell that is both an entry and a path.
func ruleGraph(t *testing.T) *CellGraph {
	t.Helper()
	g := NewCellGraph(4)
	ground := g.AddCell(Cell{Status: StatusGround})
	upper := g.AddCell(Cell{Status: StatusAboveGround})
	roof := g.AddCell(Cell{Status: StatusRemove})
	g.AddCell(Cell{Status: StatusGround, IsEntry: true, IsPath: true})
	if err := g.LinkLayers(ground, upper); err != nil {
		t.Fatal(err)
	}
	if err := g.LinkLayers(upper, roof); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestEligible(t *testing.T) {
	g := ruleGraph(t)
	const (
		ground CellID = 0
		upper  CellID = 1
		roof   CellID = 2
		entry  CellID = 3
	)

	tests := []struct {
		name     string
		rules    PlacementRules
		cell     CellID
		allowed  bool
		ruleName string
	}{
		{"open tile on ground", openRules, ground, true, ""},
		{"excluded status", PlacementRules{ExcludedStatuses: []CellStatus{StatusGround}, Roofable: true}, ground, false, "status"},
		{"entry cell needs entry tile", openRules, entry, false, "entry"},
		{"entry tile on entry cell", PlacementRules{EntryOnly: true, PathAllowed: true, Roofable: true}, entry, true, ""},
		{"entry tile off entry cell", PlacementRules{EntryOnly: true, PathAllowed: true, Roofable: true}, ground, false, "entry"},
		{"path cell rejects non-path tile", PlacementRules{EntryOnly: true, Roofable: true}, entry, false, "path"},
		{"base only on ground", PlacementRules{Layer: LayerBaseOnly, Roofable: true}, ground, true, ""},
		{"base only above ground", PlacementRules{Layer: LayerBaseOnly, Roofable: true}, upper, false, "layer:base_only"},
		{"no base above ground", PlacementRules{Layer: LayerNoBase, Roofable: true}, upper, true, ""},
		{"no base on ground", PlacementRules{Layer: LayerNoBase, Roofable: true}, ground, false, "layer:no_base"},
		{"top only under another cell", PlacementRules{Layer: LayerTopOnly, Roofable: true}, upper, false, "layer:top_only"},
		{"top only at column top", PlacementRules{Layer: LayerTopOnly, Roofable: true}, roof, true, ""},
		{"not roofable under a live cell", PlacementRules{PathAllowed: true}, ground, false, "roof"},
		{"not roofable under a removed cell", PlacementRules{PathAllowed: true}, upper, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := &TileDefinition{Name: tt.name, Placement: tt.rules}
			ok, rule := Eligible(g, g.Cell(tt.cell), tile)
			if ok != tt.allowed {
				t.Fatalf("Eligible() = %v, want %v", ok, tt.allowed)
			}
			if ok {
				if rule != nil {
					t.Errorf("allowed tile reported rule %s", rule.Name())
				}
				return
			}
			if rule == nil || rule.Name() != tt.ruleName {
				t.Errorf("rejecting rule = %v, want %s", rule, tt.ruleName)
			}
		})
	}
}

func TestPlacementRulesExpansion(t *testing.T) {
	rules := PlacementRules{}.Rules()
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name())
	}
	want := []string{"entry", "path", "roof"}
	if len(names) != len(want) {
		t.Fatalf("zero rules expanded to %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rule %d = %s, want %s", i, names[i], want[i])
		}
	}
}

package catalog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

var (
	ErrUnknownSocketName = errors.New("catalog: unknown socket name")
	ErrSocketCount       = errors.New("catalog: wrong number of sockets")
	ErrBadPair           = errors.New("catalog: compatibility pair must name two sockets")
	ErrDuplicateTile     = errors.New("catalog: duplicate tile name")
	ErrUnnamedTile       = errors.New("catalog: tile has no name")
	ErrUnlistedTile      = errors.New("catalog: tile belongs to no list")
)

// File is the YAML layout of a tile catalog
type File struct {
	Sockets    []string   `yaml:"sockets"`
	Compatible [][]string `yaml:"compatible"`
	OneWay     [][]string `yaml:"one_way,omitempty"`
	Tiles      []TileYAML `yaml:"tiles"`
}

// TileYAML is one tile of a catalog file. Sides and layer faces accept
// either one entry, repeated for all six positions, or six entries.
type TileYAML struct {
	Name       string        `yaml:"name"`
	General    *bool         `yaml:"general,omitempty"`
	Edge       bool          `yaml:"edge,omitempty"`
	Invertible bool          `yaml:"invertible,omitempty"`
	Category   string        `yaml:"category,omitempty"`
	Variant    string        `yaml:"variant,omitempty"`
	LayerGroup string        `yaml:"layer_group,omitempty"`
	Sides      []SideYAML    `yaml:"sides"`
	Layers     LayersYAML    `yaml:"layers"`
	Placement  PlacementYAML `yaml:"placement,omitempty"`
}

// SideYAML names the two corner sockets of each edge of a side.
type SideYAML struct {
	Bottom []string `yaml:"bottom,flow"`
	Top    []string `yaml:"top,flow"`
}

// LayersYAML names the corner sockets of the bottom and top faces.
type LayersYAML struct {
	Bottom []string `yaml:"bottom,flow"`
	Top    []string `yaml:"top,flow"`
}

// PlacementYAML is the authored form of wfc.PlacementRules. Roofable
// defaults to true.
type PlacementYAML struct {
	ExcludedStatuses []string `yaml:"excluded_statuses,omitempty,flow"`
	EntryOnly        bool     `yaml:"entry_only,omitempty"`
	PathAllowed      bool     `yaml:"path_allowed,omitempty"`
	Layer            string   `yaml:"layer,omitempty"`
	Roofable         *bool    `yaml:"roofable,omitempty"`
}

// Set is a loaded catalog: the socket directory, the solver catalog and an
// index of tiles by name.
type Set struct {
	Directory   *wfc.SocketDirectory
	Catalog     *wfc.Catalog
	Fingerprint string

	tiles map[string]*wfc.TileDefinition
	order []string
}

// Tile returns a tile by name.
func (s *Set) Tile(name string) (*wfc.TileDefinition, bool) {
	t, ok := s.tiles[name]
	return t, ok
}

// Names returns tile names in file order.
func (s *Set) Names() []string {
	return s.order
}

// Load reads and builds a catalog file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return f.Build()
}

// Fingerprint identifies the catalog content. Two files that decode to the
// same catalog share a fingerprint regardless of comments or layout.
func (f *File) Fingerprint() (string, error) {
	canonical, err := yaml.Marshal(f)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Build resolves socket names and produces the solver inputs
func (f *File) Build() (*Set, error) {
	dir, err := f.directory()
	if err != nil {
		return nil, err
	}

	set := &Set{
		Directory: dir,
		Catalog:   &wfc.Catalog{},
		tiles:     make(map[string]*wfc.TileDefinition, len(f.Tiles)),
	}
	for i := range f.Tiles {
		ty := &f.Tiles[i]
		if ty.Name == "" {
			return nil, fmt.Errorf("%w: tile #%d", ErrUnnamedTile, i)
		}
		if _, dup := set.tiles[ty.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTile, ty.Name)
		}
		general := ty.General == nil || *ty.General
		if !general && !ty.Edge {
			return nil, fmt.Errorf("%w: %q is neither general nor edge", ErrUnlistedTile, ty.Name)
		}
		t, err := ty.toTile(dir)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", ty.Name, err)
		}
		set.tiles[t.Name] = t
		set.order = append(set.order, t.Name)
		if general {
			set.Catalog.General = append(set.Catalog.General, t)
		}
		if ty.Edge {
			set.Catalog.Edge = append(set.Catalog.Edge, t)
		}
	}

	if err := set.Catalog.Validate(dir); err != nil {
		return nil, err
	}
	if set.Fingerprint, err = f.Fingerprint(); err != nil {
		return nil, err
	}
	return set, nil
}

func (f *File) directory() (*wfc.SocketDirectory, error) {
	b := wfc.NewSocketDirectoryBuilder()
	known := make(map[string]bool, len(f.Sockets))
	for _, name := range f.Sockets {
		if known[name] {
			return nil, fmt.Errorf("%w: %q", wfc.ErrDuplicateSocket, name)
		}
		b.Socket(name)
		known[name] = true
	}

	pair := func(p []string) (string, string, error) {
		if len(p) != 2 {
			return "", "", fmt.Errorf("%w: %v", ErrBadPair, p)
		}
		for _, name := range p {
			if !known[name] {
				return "", "", fmt.Errorf("%w: %q", ErrUnknownSocketName, name)
			}
		}
		return p[0], p[1], nil
	}

	for _, p := range f.Compatible {
		a, c, err := pair(p)
		if err != nil {
			return nil, err
		}
		b.AllowBoth(a, c)
	}
	for _, p := range f.OneWay {
		a, c, err := pair(p)
		if err != nil {
			return nil, err
		}
		b.Allow(a, c)
	}
	return b.Build()
}

func (ty *TileYAML) toTile(dir *wfc.SocketDirectory) (*wfc.TileDefinition, error) {
	t := &wfc.TileDefinition{
		Name:       ty.Name,
		Invertible: ty.Invertible,
		Category:   ty.Category,
		Variant:    ty.Variant,
		LayerGroup: ty.LayerGroup,
	}

	sides, err := expand("sides", ty.Sides)
	if err != nil {
		return nil, err
	}
	for i, s := range sides {
		if t.Sides[i].Bottom, err = resolvePair(dir, s.Bottom); err != nil {
			return nil, fmt.Errorf("side %d bottom: %w", i, err)
		}
		if t.Sides[i].Top, err = resolvePair(dir, s.Top); err != nil {
			return nil, fmt.Errorf("side %d top: %w", i, err)
		}
	}

	if t.Layers.Bottom, err = resolveRing(dir, "layers.bottom", ty.Layers.Bottom); err != nil {
		return nil, err
	}
	if t.Layers.Top, err = resolveRing(dir, "layers.top", ty.Layers.Top); err != nil {
		return nil, err
	}

	if t.Placement, err = ty.Placement.toRules(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p PlacementYAML) toRules() (wfc.PlacementRules, error) {
	rules := wfc.PlacementRules{
		EntryOnly:   p.EntryOnly,
		PathAllowed: p.PathAllowed,
		Roofable:    p.Roofable == nil || *p.Roofable,
	}
	for _, name := range p.ExcludedStatuses {
		s, err := wfc.ParseCellStatus(name)
		if err != nil {
			return rules, err
		}
		rules.ExcludedStatuses = append(rules.ExcludedStatuses, s)
	}
	layer, err := wfc.ParseLayerRestriction(p.Layer)
	if err != nil {
		return rules, err
	}
	rules.Layer = layer
	return rules, nil
}

// expand repeats a single entry six times.
func expand[T any](what string, items []T) ([wfc.SideCount]T, error) {
	var out [wfc.SideCount]T
	switch len(items) {
	case 1:
		for i := range out {
			out[i] = items[0]
		}
	case wfc.SideCount:
		copy(out[:], items)
	default:
		return out, fmt.Errorf("%w: %s has %d entries, want 1 or %d", ErrSocketCount, what, len(items), wfc.SideCount)
	}
	return out, nil
}

func resolve(dir *wfc.SocketDirectory, name string) (wfc.SocketID, error) {
	id, ok := dir.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSocketName, name)
	}
	return id, nil
}

func resolvePair(dir *wfc.SocketDirectory, names []string) ([2]wfc.SocketID, error) {
	var out [2]wfc.SocketID
	if len(names) != 2 {
		return out, fmt.Errorf("%w: %d corners, want 2", ErrSocketCount, len(names))
	}
	for i, name := range names {
		id, err := resolve(dir, name)
		if err != nil {
			return out, err
		}
		out[i] = id
	}
	return out, nil
}

func resolveRing(dir *wfc.SocketDirectory, what string, names []string) ([wfc.SideCount]wfc.SocketID, error) {
	var out [wfc.SideCount]wfc.SocketID
	ring, err := expand(what, names)
	if err != nil {
		return out, err
	}
	for i, name := range ring {
		if out[i], err = resolve(dir, name); err != nil {
			return out, fmt.Errorf("%s corner %d: %w", what, i, err)
		}
	}
	return out, nil
}

package wfc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/logger"
)

var (
	ErrEmptyDirectory     = errors.New("wfc: socket directory is empty")
	ErrMatrixShape        = errors.New("wfc: compatibility matrix must be square and match the socket list")
	ErrDuplicateSocket    = errors.New("wfc: duplicate socket name")
	ErrUnknownSocket      = errors.New("wfc: socket id not in directory")
	ErrEmptyCatalog       = errors.New("wfc: tile catalog is empty")
	ErrInvalidStart       = errors.New("wfc: start cell is not in the graph")
	ErrBrokenLink         = errors.New("wfc: neighbor link is not reciprocal")
	ErrNilRand            = errors.New("wfc: random source is nil")
	ErrRotationOutOfRange = errors.New("wfc: rotation must be in 0..5")
	ErrInvalidSide        = errors.New("wfc: invalid side or face")
	ErrAlreadyAssigned    = errors.New("wfc: cell already assigned")
	ErrUnknownStatus      = errors.New("wfc: unknown cell status")
	ErrUnknownRestriction = errors.New("wfc: unknown layer restriction")
	ErrUnknownPropagation = errors.New("wfc: unknown propagation mode")
	ErrMissingPreAssigned = errors.New("wfc: pre-assigned cell has no tile")
)

// PropagationMode selects which neighbors a collapse propagates to
type PropagationMode int

const (
	// PropagateSameLayerAndAbove propagates to side neighbors and the cell above.
	PropagateSameLayerAndAbove PropagationMode = iota
	// PropagateSameLayer propagates to side neighbors only.
	PropagateSameLayer
	// PropagateEdgesOnly collapses edge cells and nothing else.
	PropagateEdgesOnly
)

// String returns the string representation of a PropagationMode
func (m PropagationMode) String() string {
	switch m {
	case PropagateSameLayerAndAbove:
		return "same_layer_and_above"
	case PropagateSameLayer:
		return "same_layer"
	case PropagateEdgesOnly:
		return "edges_only"
	default:
		return "unknown"
	}
}

// ParsePropagationMode converts a mode name; empty means the default.
func ParsePropagationMode(name string) (PropagationMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "same_layer_and_above":
		return PropagateSameLayerAndAbove, nil
	case "same_layer":
		return PropagateSameLayer, nil
	case "edges_only":
		return PropagateEdgesOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPropagation, name)
	}
}

// Event is emitted once per collapse attempt
type Event struct {
	Seq        int
	Cell       CellID
	State      CellState
	Assignment *Assignment
	Candidates int
}

// Options controls a solve
type Options struct {
	Start       CellID
	Propagation PropagationMode

	// OnCollapse observes every collapse attempt. It must not mutate the graph.
	OnCollapse func(Event)
	// OnMismatch receives compatibility diagnostics.
	OnMismatch func(Mismatch)
}

// DefaultOptions starts at cell 0 and propagates to same-layer and upper neighbors
func DefaultOptions() Options {
	return Options{
		Start:       0,
		Propagation: PropagateSameLayerAndAbove,
	}
}

// SolveReport is the outcome of a solve. Assigned holds every assignment
// committed during the solve; Failed lists cells with no feasible candidate.
type SolveReport struct {
	Assigned map[CellID]Assignment
	Failed   []CellID
	Attempts int
	Visited  int
}

// Solved reports whether no cell failed.
func (r *SolveReport) Solved() bool {
	return len(r.Failed) == 0
}

func newReport() *SolveReport {
	return &SolveReport{Assigned: make(map[CellID]Assignment)}
}

// Solver walks a CellGraph assigning tiles. A Solver is single-use and not
// safe for concurrent use; the directory and catalog it reads may be shared.
type Solver struct {
	graph   *CellGraph
	catalog *Catalog
	dir     *SocketDirectory
	opts    Options
	rng     Rand
	checker *Checker

	report   *SolveReport
	reached  []bool
	expanded []bool
	seq      int
}

// NewSolver validates every precondition of a solve.
func NewSolver(graph *CellGraph, catalog *Catalog, dir *SocketDirectory, opts Options, rng Rand) (*Solver, error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	if dir == nil || dir.Len() == 0 {
		return nil, ErrEmptyDirectory
	}
	if err := catalog.Validate(dir); err != nil {
		return nil, err
	}
	if graph == nil || !graph.Has(opts.Start) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStart, opts.Start)
	}
	if opts.Propagation < PropagateSameLayerAndAbove || opts.Propagation > PropagateEdgesOnly {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPropagation, int(opts.Propagation))
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	for _, c := range graph.Cells() {
		if c.State != Assigned {
			continue
		}
		if c.Assignment == nil || c.Assignment.Tile == nil {
			return nil, fmt.Errorf("%w: cell %d", ErrMissingPreAssigned, c.ID)
		}
		if err := checkOrientation(c.Assignment.Orientation); err != nil {
			return nil, fmt.Errorf("cell %d: %w", c.ID, err)
		}
	}

	var checkerOpts []CheckerOption
	if opts.OnMismatch != nil {
		checkerOpts = append(checkerOpts, WithMismatchHook(opts.OnMismatch))
	}

	return &Solver{
		graph:    graph,
		catalog:  catalog,
		dir:      dir,
		opts:     opts,
		rng:      rng,
		checker:  NewChecker(graph, dir, checkerOpts...),
		report:   newReport(),
		reached:  make([]bool, graph.Len()),
		expanded: make([]bool, graph.Len()),
	}, nil
}

// Solve assigns tiles to every cell reachable from opts.Start. It returns an
// error only for precondition violations; unsatisfiable cells are reported
// in SolveReport.Failed.
func Solve(graph *CellGraph, catalog *Catalog, dir *SocketDirectory, opts Options, rng Rand) (*SolveReport, error) {
	s, err := NewSolver(graph, catalog, dir, opts, rng)
	if err != nil {
		return nil, err
	}
	s.solveFrom(opts.Start)
	s.logSummary()
	return s.report, nil
}

// SolveAll solves every connected component, starting with opts.Start and
// then each lowest-id cell not yet reached.
func SolveAll(graph *CellGraph, catalog *Catalog, dir *SocketDirectory, opts Options, rng Rand) (*SolveReport, error) {
	s, err := NewSolver(graph, catalog, dir, opts, rng)
	if err != nil {
		return nil, err
	}
	s.solveFrom(opts.Start)
	for id := range s.reached {
		if !s.reached[id] {
			s.solveFrom(CellID(id))
		}
	}
	s.logSummary()
	return s.report, nil
}

func (s *Solver) logSummary() {
	logger.Debug("Solve finished",
		"assigned", len(s.report.Assigned),
		"failed", len(s.report.Failed),
		"attempts", s.report.Attempts,
		"visited", s.report.Visited)
}

// reachable returns the component of start in breadth-first order.
func (s *Solver) reachable(start CellID) []CellID {
	queue := []CellID{start}
	s.reached[start] = true
	for qi := 0; qi < len(queue); qi++ {
		c := s.graph.Cell(queue[qi])
		links := make([]CellID, 0, SideCount+2)
		links = append(links, c.Sides[:]...)
		links = append(links, c.Layers[:]...)
		for _, n := range links {
			if n == NoCell || s.reached[n] {
				continue
			}
			s.reached[n] = true
			queue = append(queue, n)
		}
	}
	return queue
}

// solveFrom runs the edge pass and, when the mode allows, the interior pass
// over the component of start.
func (s *Solver) solveFrom(start CellID) {
	var edges, interior []CellID
	for _, id := range s.reachable(start) {
		c := s.graph.Cell(id)
		if c.State != Unassigned {
			continue
		}
		if c.IsEdge {
			edges = append(edges, id)
		} else {
			interior = append(interior, id)
		}
	}
	s.sortEdges(edges)
	s.sortInterior(interior)

	for _, id := range edges {
		s.process(id)
	}
	if s.opts.Propagation == PropagateEdgesOnly {
		return
	}
	for _, id := range interior {
		s.process(id)
	}
}

// sortEdges orders by ascending edge type, then id.
func (s *Solver) sortEdges(ids []CellID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.graph.Cell(ids[i]), s.graph.Cell(ids[j])
		if a.EdgeType != b.EdgeType {
			return a.EdgeType < b.EdgeType
		}
		return a.ID < b.ID
	})
}

// sortInterior orders by descending side neighbor count, then id.
func (s *Solver) sortInterior(ids []CellID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.graph.Cell(ids[i]), s.graph.Cell(ids[j])
		na, nb := a.SideNeighborCount(), b.SideNeighborCount()
		if na != nb {
			return na > nb
		}
		return a.ID < b.ID
	})
}

// frame is one level of the depth-first propagation.
type frame struct {
	next []CellID
	i    int
}

// process collapses root if needed and then propagates depth-first. Each
// cell is expanded at most once, so cycles in the graph cannot loop.
func (s *Solver) process(root CellID) {
	stack := []frame{{next: s.visit(root)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.next) {
			stack = stack[:len(stack)-1]
			continue
		}
		id := top.next[top.i]
		top.i++
		if s.graph.Cell(id).State != Unassigned {
			continue
		}
		if next := s.visit(id); len(next) > 0 {
			stack = append(stack, frame{next: next})
		}
	}
}

// visit collapses an unassigned cell and returns the neighbors to propagate
// to, or nil when the cell failed or was already expanded.
func (s *Solver) visit(id CellID) []CellID {
	if s.expanded[id] {
		return nil
	}
	c := s.graph.Cell(id)
	switch c.State {
	case Failed:
		return nil
	case Unassigned:
		s.report.Visited++
		if !s.collapse(c) {
			return nil
		}
	}
	s.expanded[id] = true
	if s.opts.Propagation == PropagateEdgesOnly {
		return nil
	}
	return s.propagationTargets(c)
}

// collapse picks one feasible candidate uniformly at random.
func (s *Solver) collapse(c *Cell) bool {
	s.report.Attempts++
	candidates := s.checker.Candidates(c.ID, s.catalog.TilesFor(c))
	s.seq++

	if len(candidates) == 0 {
		c.State = Failed
		s.report.Failed = append(s.report.Failed, c.ID)
		logger.Debug("Cell has no feasible tile", "cell", int(c.ID), "status", c.Status.String(), "edge", c.IsEdge)
		s.notify(Event{Seq: s.seq, Cell: c.ID, State: Failed})
		return false
	}

	pick := candidates[s.rng.Intn(len(candidates))]
	a := Assignment{Tile: pick.Tile, Orientation: pick.Orientation}
	if err := s.graph.Assign(c.ID, a); err != nil {
		// unreachable: the cell is Unassigned and the rotation is in range
		panic(err)
	}
	s.report.Assigned[c.ID] = a
	s.notify(Event{Seq: s.seq, Cell: c.ID, State: Assigned, Assignment: &a, Candidates: len(candidates)})
	return true
}

func (s *Solver) notify(e Event) {
	if s.opts.OnCollapse != nil {
		s.opts.OnCollapse(e)
	}
}

// propagationTargets returns the unassigned neighbors allowed by the mode:
// edge neighbors first by edge type, then interior neighbors by descending
// side neighbor count. A neighbor whose lower cell is still unassigned is
// held back; the top-level passes pick it up later.
func (s *Solver) propagationTargets(c *Cell) []CellID {
	links := make([]CellID, 0, SideCount+1)
	links = append(links, c.Sides[:]...)
	if s.opts.Propagation == PropagateSameLayerAndAbove {
		links = append(links, c.Above())
	}

	var edges, interior []CellID
	for _, n := range links {
		nc := s.graph.Cell(n)
		if nc == nil || nc.State != Unassigned || s.awaitsBelow(nc) {
			continue
		}
		if nc.IsEdge {
			edges = append(edges, n)
		} else {
			interior = append(interior, n)
		}
	}
	s.sortEdges(edges)
	s.sortInterior(interior)
	return append(edges, interior...)
}

// awaitsBelow reports whether the cell under c has not been decided yet.
func (s *Solver) awaitsBelow(c *Cell) bool {
	b := s.graph.Cell(c.Below())
	return b != nil && b.State == Unassigned
}

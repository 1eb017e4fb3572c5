package wfc

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/logger"
)

// GeneratorConfig contains parameters for repeated solving
type GeneratorConfig struct {
	Seed          int64 // Base seed; attempt n uses Seed + n*1000
	MaxAttempts   int   // Attempts before settling for the best partial result
	AllComponents bool  // Solve every component instead of only the start's
	Options       Options

	// OnAttempt is called before each attempt, after the graph is reset.
	OnAttempt func(attempt int, seed int64)
}

// DefaultGeneratorConfig returns reasonable defaults for a seed
func DefaultGeneratorConfig(seed int64) *GeneratorConfig {
	return &GeneratorConfig{
		Seed:          seed,
		MaxAttempts:   10,
		AllComponents: true,
		Options:       DefaultOptions(),
	}
}

// GeneratedLayout is the best solve found by a Generator
type GeneratedLayout struct {
	Report  *SolveReport
	Attempt int
	Seed    int64
}

// Generator re-runs a solve with derived seeds until no cell fails or the
// attempts run out. The graph is left holding the best attempt.
type Generator struct {
	config *GeneratorConfig
}

// NewGenerator creates a new generator
func NewGenerator(config *GeneratorConfig) *Generator {
	return &Generator{config: config}
}

type cellSnapshot struct {
	state      CellState
	assignment *Assignment
}

func snapshotCells(g *CellGraph) []cellSnapshot {
	snap := make([]cellSnapshot, g.Len())
	for i, c := range g.Cells() {
		snap[i] = cellSnapshot{state: c.State, assignment: c.Assignment}
	}
	return snap
}

func restoreCells(g *CellGraph, snap []cellSnapshot) {
	for i, c := range g.Cells() {
		c.State = snap[i].state
		c.Assignment = snap[i].assignment
	}
}

// Generate solves the graph, retrying on failed cells. Precondition errors
// abort immediately.
func (gen *Generator) Generate(graph *CellGraph, catalog *Catalog, dir *SocketDirectory) (*GeneratedLayout, error) {
	attempts := gen.config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if graph == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInvalidStart)
	}

	initial := snapshotCells(graph)
	var best *GeneratedLayout
	var bestCells []cellSnapshot

	for attempt := 0; attempt < attempts; attempt++ {
		restoreCells(graph, initial)
		seed := attemptSeed(gen.config.Seed, attempt)
		if gen.config.OnAttempt != nil {
			gen.config.OnAttempt(attempt, seed)
		}

		var report *SolveReport
		var err error
		if gen.config.AllComponents {
			report, err = SolveAll(graph, catalog, dir, gen.config.Options, NewRand(seed))
		} else {
			report, err = Solve(graph, catalog, dir, gen.config.Options, NewRand(seed))
		}
		if err != nil {
			return nil, err
		}

		if best == nil || len(report.Failed) < len(best.Report.Failed) {
			best = &GeneratedLayout{Report: report, Attempt: attempt, Seed: seed}
			bestCells = snapshotCells(graph)
		}
		if report.Solved() {
			break
		}
		logger.Debug("Solve attempt left failed cells", "attempt", attempt, "seed", seed, "failed", len(report.Failed))
	}

	restoreCells(graph, bestCells)
	return best, nil
}

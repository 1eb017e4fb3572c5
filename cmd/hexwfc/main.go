// hexwfc assigns tiles to a hexagonal prism grid and records the result.
//
// Usage:
//
//	go run ./cmd/hexwfc -config hexwfc.yaml -seed 42 -preview
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/database"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/preview"
	"github.com/lawnchairsociety/hexwfc/internal/report"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

func main() {
	configFile := flag.String("config", "hexwfc.yaml", "Path to config YAML file")
	loggingConfig := flag.String("logging", "logging.yaml", "Path to logging config YAML file")
	catalogFile := flag.String("catalog", "", "Path to tile catalog YAML (overrides config)")
	seed := flag.Int64("seed", 0, "Solve seed (default: config, then random based on current time)")
	attempts := flag.Int("attempts", 0, "Attempts before keeping the best result (overrides config)")
	radius := flag.Int("radius", -1, "Grid radius (overrides config)")
	layers := flag.Int("layers", -1, "Layers above ground (overrides config)")
	underground := flag.Int("underground", -1, "Layers below ground (overrides config)")
	propagation := flag.String("propagation", "", "same_layer_and_above, same_layer or edges_only (overrides config)")
	reportFile := flag.String("report", "", "Report output path (overrides config)")
	resumeFile := flag.String("resume", "", "Apply the assignments of an earlier report before solving")
	useDB := flag.Bool("db", false, "Record the run in the database")
	previewAddr := flag.String("preview", "", "Serve the live preview on this address (e.g. 127.0.0.1:8087)")
	strict := flag.Bool("strict", false, "Exit with status 3 when cells remain unassigned")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fatal("Failed to load config", err)
	}

	// Flags win over the file.
	if *catalogFile != "" {
		cfg.Catalog = *catalogFile
	}
	if *seed != 0 {
		cfg.Solver.Seed = *seed
	}
	if *attempts > 0 {
		cfg.Solver.Attempts = *attempts
	}
	if *radius >= 0 {
		cfg.Grid.Radius = *radius
	}
	if *layers >= 0 {
		cfg.Grid.Layers = *layers
	}
	if *underground >= 0 {
		cfg.Grid.Underground = *underground
	}
	if *propagation != "" {
		cfg.Solver.Propagation = *propagation
	}
	if *reportFile != "" {
		cfg.Output.Report = *reportFile
	}
	if *resumeFile != "" {
		cfg.Output.Resume = *resumeFile
	}
	if *useDB {
		cfg.Database.Enabled = true
	}
	if *previewAddr != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.Addr = *previewAddr
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}

	if cfg.Solver.Seed == 0 {
		cfg.Solver.Seed = time.Now().UnixNano()
		logger.Info("Solve seed selected", "seed", cfg.Solver.Seed, "random", true)
	} else {
		logger.Info("Solve seed selected", "seed", cfg.Solver.Seed, "random", false)
	}

	set, err := catalog.Load(cfg.Catalog)
	if err != nil {
		fatal("Failed to load catalog", err)
	}
	logger.Info("Catalog loaded",
		"path", cfg.Catalog,
		"tiles", len(set.Names()),
		"sockets", set.Directory.Len(),
		"fingerprint", set.Fingerprint[:12])

	grid, err := hexgrid.Build(cfg.Grid)
	if err != nil {
		fatal("Failed to build grid", err)
	}
	logger.Info("Grid built", "radius", cfg.Grid.Radius, "cells", grid.Graph.Len())

	if cfg.Output.Resume != "" {
		prev, err := report.Load(cfg.Output.Resume)
		if err != nil {
			fatal("Failed to load resume report", err)
		}
		if err := prev.Apply(grid, set); err != nil {
			fatal("Failed to apply resume report", err)
		}
		assigned, _, _ := prev.Counts()
		logger.Info("Resumed from report", "path", cfg.Output.Resume, "fixed_cells", assigned)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	genConfig := wfc.DefaultGeneratorConfig(cfg.Solver.Seed)
	genConfig.MaxAttempts = cfg.Solver.Attempts
	genConfig.AllComponents = cfg.Solver.AllComponents
	genConfig.Options.Start = grid.Start()
	genConfig.Options.Propagation = cfg.Solver.PropagationMode()
	if cfg.Solver.LogMismatches {
		genConfig.Options.OnMismatch = func(m wfc.Mismatch) {
			logger.Debug("Candidate rejected", "kind", m.Kind.String(), "detail", m.String())
		}
	}

	var hub *preview.Hub
	var serveDone chan error
	if cfg.Preview.Enabled {
		hub = preview.NewHub(cfg.Preview)
		hub.SetGrid(grid)
		genConfig.Options.OnCollapse = hub.Collapse
		genConfig.OnAttempt = hub.Attempt

		serveDone = make(chan error, 1)
		go func() { serveDone <- hub.ListenAndServe(ctx, cfg.Preview.Addr) }()
	}

	started := time.Now()
	layout, err := wfc.NewGenerator(genConfig).Generate(grid.Graph, set.Catalog, set.Directory)
	if err != nil {
		fatal("Solve failed", err)
	}
	elapsed := time.Since(started)

	rep := report.FromGrid(grid, report.Meta{
		RunID:       database.NewRunID(),
		Seed:        layout.Seed,
		Attempt:     layout.Attempt,
		Catalog:     set.Fingerprint,
		Propagation: genConfig.Options.Propagation,
	})

	if cfg.Output.Report != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.Report), 0755); err != nil {
			fatal("Failed to create report directory", err)
		}
		if err := report.Save(rep, cfg.Output.Report); err != nil {
			fatal("Failed to save report", err)
		}
		logger.Info("Report saved", "path", cfg.Output.Report)
	}

	if cfg.Database.Enabled {
		if err := recordRun(cfg.Database, rep, elapsed); err != nil {
			logger.Error("Failed to record run", "error", err)
		}
	}

	assigned, failed, unassigned := rep.Counts()
	logger.Always("Solve finished",
		"run_id", rep.RunID,
		"seed", layout.Seed,
		"attempt", layout.Attempt+1,
		"cells", len(rep.Cells),
		"assigned", assigned,
		"failed", failed,
		"elapsed", elapsed.Round(time.Millisecond))

	fmt.Printf("%s cells: %s assigned, %s failed, %s untouched\n",
		humanize.Comma(int64(len(rep.Cells))), humanize.Comma(int64(assigned)),
		humanize.Comma(int64(failed)), humanize.Comma(int64(unassigned)))
	fmt.Printf("kept the %s attempt (seed %d) after %s\n",
		humanize.Ordinal(layout.Attempt+1), layout.Seed, elapsed.Round(time.Millisecond))

	if hub != nil {
		hub.Done(preview.DonePayload{
			RunID:    rep.RunID,
			Attempt:  layout.Attempt,
			Seed:     layout.Seed,
			Assigned: assigned,
			Failed:   failed,
		})
		if cfg.Preview.Linger > 0 {
			logger.Info("Preview lingering", "duration", cfg.Preview.Linger)
			select {
			case <-time.After(cfg.Preview.Linger):
			case <-ctx.Done():
			}
		}
		stop()
		if err := <-serveDone; err != nil {
			logger.Error("Preview server stopped", "error", err)
		}
	}

	if *strict && failed > 0 {
		os.Exit(3)
	}
}

func recordRun(dbCfg config.DatabaseConfig, rep *report.Report, elapsed time.Duration) error {
	db, err := database.OpenWithConfig(dbCfg.DatabaseConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	run := database.FromReport(rep, elapsed)
	if err := db.SaveRun(run); err != nil {
		return err
	}
	logger.Info("Run recorded", "run_id", run.RunID, "number", run.Number, "driver", dbCfg.Driver)
	return nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// hexruns inspects and maintains the solve-run store.
//
// Usage:
//
//	go run ./cmd/hexruns list -n 20
//	go run ./cmd/hexruns show <run-id>
//	go run ./cmd/hexruns delete <run-id>
//	go run ./cmd/hexruns migrate \
//	    -sqlite data/hexwfc.db \
//	    -pg-host localhost \
//	    -pg-user hexwfc \
//	    -pg-password hexwfc \
//	    -pg-database hexwfc
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/database"
)

func main() {
	configFile := flag.String("config", "hexwfc.yaml", "Path to config YAML file")
	sqlitePath := flag.String("sqlite", "", "SQLite database (overrides config)")
	pgHost := flag.String("pg-host", "", "PostgreSQL host (migrate target)")
	pgPort := flag.Int("pg-port", 0, "PostgreSQL port (migrate target)")
	pgUser := flag.String("pg-user", "", "PostgreSQL user (migrate target)")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password (migrate target)")
	pgDatabase := flag.String("pg-database", "", "PostgreSQL database name (migrate target)")
	pgSSLMode := flag.String("pg-sslmode", "", "PostgreSQL SSL mode (migrate target)")
	limit := flag.Int("n", 20, "Number of runs to list (0 for all)")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: hexruns [flags] list|show <run-id>|delete <run-id>|migrate\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dbCfg := cfg.Database.DatabaseConfig()
	if *sqlitePath != "" {
		dbCfg.Driver = "sqlite"
		dbCfg.SQLitePath = *sqlitePath
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "list":
		db := open(dbCfg)
		defer db.Close()
		listRuns(db, *limit)

	case "show", "delete":
		if len(args) != 1 {
			log.Fatalf("%s needs exactly one run id", cmd)
		}
		db := open(dbCfg)
		defer db.Close()
		if cmd == "show" {
			showRun(db, args[0])
		} else {
			if err := db.DeleteRun(args[0]); err != nil {
				log.Fatalf("Failed to delete run: %v", err)
			}
			fmt.Printf("Deleted run %s\n", args[0])
		}

	case "migrate":
		src := dbCfg
		src.Driver = "sqlite"
		dst := dbCfg
		dst.Driver = "postgres"
		if *pgHost != "" {
			dst.Postgres.Host = *pgHost
		}
		if *pgPort != 0 {
			dst.Postgres.Port = *pgPort
		}
		if *pgUser != "" {
			dst.Postgres.User = *pgUser
		}
		if *pgPassword != "" {
			dst.Postgres.Password = *pgPassword
		}
		if *pgDatabase != "" {
			dst.Postgres.Database = *pgDatabase
		}
		if *pgSSLMode != "" {
			dst.Postgres.SSLMode = *pgSSLMode
		}
		migrate(src, dst, *dryRun)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func open(cfg database.Config) *database.Database {
	db, err := database.OpenWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s database: %v", cfg.Driver, err)
	}
	return db
}

func listRuns(db *database.Database, limit int) {
	runs, err := db.ListRuns(limit)
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	fmt.Printf("%-5s %-36s %-14s %8s %8s %8s  %s\n", "#", "RUN", "RECORDED", "CELLS", "ASSIGNED", "FAILED", "SEED")
	for _, r := range runs {
		fmt.Printf("%-5d %-36s %-14s %8s %8s %8s  %d\n",
			r.Number, r.RunID, humanize.Time(r.CreatedAt),
			humanize.Comma(int64(r.Cells)), humanize.Comma(int64(r.Assigned)), humanize.Comma(int64(r.Failed)),
			r.Seed)
	}
}

func showRun(db *database.Database, runID string) {
	r, err := db.GetRun(runID)
	if err != nil {
		log.Fatalf("Failed to load run: %v", err)
	}
	fmt.Printf("Run %s (#%d)\n", r.RunID, r.Number)
	fmt.Printf("  Recorded:    %s (%s)\n", r.CreatedAt.Format(time.RFC3339), humanize.Time(r.CreatedAt))
	fmt.Printf("  Seed:        %d (attempt %d)\n", r.Seed, r.Attempt+1)
	fmt.Printf("  Catalog:     %s\n", r.Catalog)
	fmt.Printf("  Propagation: %s\n", r.Propagation)
	fmt.Printf("  Grid:        radius %d, %d layers up, %d down\n", r.Radius, r.Layers, r.Underground)
	fmt.Printf("  Cells:       %s (%s assigned, %s failed)\n",
		humanize.Comma(int64(r.Cells)), humanize.Comma(int64(r.Assigned)), humanize.Comma(int64(r.Failed)))
	fmt.Printf("  Duration:    %s\n", r.Duration)
	for _, f := range r.Failures {
		fmt.Printf("  failed (%d,%d) layer %d [%s]\n", f.Q, f.R, f.Layer, f.Status)
	}
}

func migrate(src, dst database.Config, dryRun bool) {
	log.Println("Run Store Migration")
	log.Println("===================")

	log.Printf("Opening SQLite database: %s", src.SQLitePath)
	from := open(src)
	defer from.Close()

	var to *database.Database
	if !dryRun {
		log.Printf("Opening PostgreSQL database: %s@%s:%d/%s",
			dst.Postgres.User, dst.Postgres.Host, dst.Postgres.Port, dst.Postgres.Database)
		to = open(dst)
		defer to.Close()
	} else {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	copied, skipped, err := copyRuns(from, to)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("===================")
	log.Printf("Migration complete! Runs copied: %d, already present: %d", copied, skipped)
	if dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

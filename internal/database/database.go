// Package database persists solve runs to SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrUnknownDriver is returned for a driver other than sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown database driver")

// Database wraps the connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database selected by cfg.Driver and runs
// migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	var (
		dialect Dialect
		dsn     string
	)
	switch cfg.Driver {
	case "", string(DialectSQLite):
		dialect = NewDialect(DialectSQLite)
		dsn = cfg.SQLitePath
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	case string(DialectPostgres):
		dialect = NewDialect(DialectPostgres)
		dsn = cfg.Postgres.DSN()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == string(DialectPostgres) {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS solve_runs (
			id ` + d.dialect.SerialPrimaryKey() + `,
			run_id TEXT UNIQUE NOT NULL,
			seed BIGINT NOT NULL,
			attempt INTEGER NOT NULL DEFAULT 0,
			catalog TEXT NOT NULL DEFAULT '',
			propagation TEXT NOT NULL DEFAULT '',
			radius INTEGER NOT NULL DEFAULT 0,
			layers INTEGER NOT NULL DEFAULT 0,
			underground INTEGER NOT NULL DEFAULT 0,
			cells INTEGER NOT NULL DEFAULT 0,
			assigned INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS run_assignments (
			run_id TEXT NOT NULL REFERENCES solve_runs(run_id) ON DELETE CASCADE,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			layer INTEGER NOT NULL,
			tile TEXT NOT NULL,
			rotation INTEGER NOT NULL,
			inverted INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, q, r, layer)
		)`,

		`CREATE TABLE IF NOT EXISTS run_failures (
			run_id TEXT NOT NULL REFERENCES solve_runs(run_id) ON DELETE CASCADE,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			layer INTEGER NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, q, r, layer)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_solve_runs_created_at ON solve_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_solve_runs_catalog ON solve_runs(catalog)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

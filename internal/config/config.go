// Package config loads the hexwfc run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexwfc/internal/database"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything a solve run needs besides the catalog itself.
type Config struct {
	Catalog  string          `yaml:"catalog"`
	Solver   SolverConfig    `yaml:"solver"`
	Grid     hexgrid.Options `yaml:"grid"`
	Output   OutputConfig    `yaml:"output"`
	Database DatabaseConfig  `yaml:"database"`
	Preview  PreviewConfig   `yaml:"preview"`
}

// SolverConfig holds generator settings.
type SolverConfig struct {
	// Seed of the first attempt. 0 picks one from the clock.
	Seed int64 `yaml:"seed"`

	// Attempts is how many seeds to try before keeping the best result.
	Attempts int `yaml:"attempts"`

	// Propagation is one of same_layer_and_above, same_layer, edges_only.
	Propagation string `yaml:"propagation"`

	// AllComponents solves cells unreachable from the start cell too.
	AllComponents bool `yaml:"all_components"`

	// LogMismatches logs every rejected candidate at debug level.
	LogMismatches bool `yaml:"log_mismatches"`
}

// OutputConfig holds where results go.
type OutputConfig struct {
	// Report is the YAML report written after the solve. Empty disables it.
	Report string `yaml:"report"`

	// Resume names a report whose assignments are applied before solving.
	Resume string `yaml:"resume"`
}

// DatabaseConfig selects the run store.
type DatabaseConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig is the YAML form of database.PostgresConfig.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int `yaml:"max_open_conns"`
	MaxIdleConns    int `yaml:"max_idle_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime_seconds"`
}

// PreviewConfig holds the live preview server settings.
type PreviewConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Addr        string            `yaml:"addr"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`

	// Linger keeps the server up after the solve so late viewers can
	// fetch the final state.
	Linger time.Duration `yaml:"linger"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	pg := database.DefaultPostgresConfig()
	return &Config{
		Catalog: "catalogs/village.yaml",
		Solver: SolverConfig{
			Attempts:      10,
			Propagation:   wfc.PropagateSameLayerAndAbove.String(),
			AllComponents: true,
		},
		Grid: hexgrid.DefaultOptions(),
		Output: OutputConfig{
			Report: "out/report.yaml",
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/hexwfc.db",
			Postgres: PostgresConfig{
				Host:            pg.Host,
				Port:            pg.Port,
				SSLMode:         pg.SSLMode,
				MaxOpenConns:    pg.MaxOpenConns,
				MaxIdleConns:    pg.MaxIdleConns,
				ConnMaxLifetime: int(pg.ConnMaxLifetime / time.Second),
			},
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8087",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 50,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults. Environment overrides and validation
// are applied in both cases.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return config, err
	}

	if err := config.applyEnv(); err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// applyEnv lets secrets and deployment details stay out of the YAML file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("HEXWFC_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("HEXWFC_DB_HOST"); v != "" {
		c.Database.Postgres.Host = v
	}
	if v := os.Getenv("HEXWFC_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HEXWFC_DB_PORT=%q", ErrInvalidConfig, v)
		}
		c.Database.Postgres.Port = port
	}
	if v := os.Getenv("HEXWFC_DB_USER"); v != "" {
		c.Database.Postgres.User = v
	}
	if v := os.Getenv("HEXWFC_DB_PASSWORD"); v != "" {
		c.Database.Postgres.Password = v
	}
	if v := os.Getenv("HEXWFC_DB_NAME"); v != "" {
		c.Database.Postgres.Database = v
	}
	return nil
}

// Validate checks values the solver and stores would otherwise reject late.
func (c *Config) Validate() error {
	var problems []string
	if c.Catalog == "" {
		problems = append(problems, "catalog path is empty")
	}
	if c.Solver.Attempts < 1 {
		problems = append(problems, "solver.attempts must be at least 1")
	}
	if _, err := wfc.ParsePropagationMode(c.Solver.Propagation); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Grid.Radius < 0 {
		problems = append(problems, "grid.radius must not be negative")
	}
	if c.Grid.Layers < 0 {
		problems = append(problems, "grid.layers must not be negative")
	}
	if c.Grid.Underground < 0 {
		problems = append(problems, "grid.underground must not be negative")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not sqlite or postgres", c.Database.Driver))
	}
	if c.Preview.Enabled && c.Preview.Addr == "" {
		problems = append(problems, "preview.addr is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// PropagationMode returns the parsed solver propagation mode.
func (c *SolverConfig) PropagationMode() wfc.PropagationMode {
	mode, err := wfc.ParsePropagationMode(c.Propagation)
	if err != nil {
		return wfc.PropagateSameLayerAndAbove
	}
	return mode
}

// DatabaseConfig converts the YAML settings to a database.Config.
func (d *DatabaseConfig) DatabaseConfig() database.Config {
	return database.Config{
		Driver:     d.Driver,
		SQLitePath: d.SQLitePath,
		Postgres: database.PostgresConfig{
			Host:            d.Postgres.Host,
			Port:            d.Postgres.Port,
			User:            d.Postgres.User,
			Password:        d.Postgres.Password,
			Database:        d.Postgres.Database,
			SSLMode:         d.Postgres.SSLMode,
			MaxOpenConns:    d.Postgres.MaxOpenConns,
			MaxIdleConns:    d.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(d.Postgres.ConnMaxLifetime) * time.Second,
		},
	}
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}

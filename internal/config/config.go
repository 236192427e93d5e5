package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the lobby server and its HTTP
// surfaces.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Lobby    Lobby    `yaml:"lobby"`
	Identity Identity `yaml:"identity"`
	Web      Web      `yaml:"web"`
	Admin    Admin    `yaml:"admin"`
	Database Database `yaml:"database"`
	Locale   Locale   `yaml:"locale"`
}

// Lobby configures the TCP game endpoint.
type Lobby struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	MaxConnections int64 `yaml:"max_connections"` // concurrent client cap (default: 100)
	SendQueueSize  int   `yaml:"send_queue_size"` // per-client outbox capacity (default: 100)

	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`  // version byte wait (default: 10s)
	ReadTimeout       time.Duration `yaml:"read_timeout"`       // per-read deadline (default: 300s)
	WriteTimeout      time.Duration `yaml:"write_timeout"`      // per-write deadline (default: 5s)
	HealthInterval    time.Duration `yaml:"health_interval"`    // liveness check period (default: 30s)
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"` // silent client disconnect (default: 120s)

	MonitorRoster string `yaml:"monitor_roster"` // path to the monitor id file
}

// Addr returns the TCP listen address.
func (l Lobby) Addr() string {
	return fmt.Sprintf("%s:%d", l.BindAddress, l.Port)
}

// Identity configures the upstream identity service.
type Identity struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // per-request deadline (default: 10s)
}

// Web configures the public status endpoint.
type Web struct {
	Addr string `yaml:"addr"`
}

// Admin configures the management endpoint.
type Admin struct {
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"` // bcrypt hash of the console password
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`  // session token lifetime (default: 1h)
	RateLimit    string        `yaml:"rate_limit"` // login attempts, limiter format (default: 10-M)
}

// Database holds PostgreSQL connection parameters for play history.
// An empty host disables persistence.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Enabled reports whether play history persistence is configured.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// Locale configures reason-key translation overrides.
type Locale struct {
	OverrideDir string `yaml:"override_dir"` // extra language files merged over the embedded ones
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Lobby: Lobby{
			BindAddress:       "0.0.0.0",
			Port:              12348,
			MaxConnections:    100,
			SendQueueSize:     100,
			HandshakeTimeout:  10 * time.Second,
			ReadTimeout:       300 * time.Second,
			WriteTimeout:      5 * time.Second,
			HealthInterval:    30 * time.Second,
			InactivityTimeout: 120 * time.Second,
			MonitorRoster:     "monitors.txt",
		},
		Identity: Identity{
			BaseURL: "https://phira.5wyxi.com/",
			Timeout: 10 * time.Second,
		},
		Web: Web{
			Addr: ":8081",
		},
		Admin: Admin{
			Addr:      ":8083",
			Username:  "admin",
			TokenTTL:  time.Hour,
			RateLimit: "10-M",
		},
		Database: Database{
			Port:     5432,
			User:     "phira",
			Password: "phira",
			DBName:   "phira_mp",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file. If the file doesn't exist,
// returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds each connection attempt and each catalog read.
const DefaultTimeout = 10 * time.Second

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Compare CompareConfig `yaml:"compare"`
	Local   Endpoint      `yaml:"local"`
	Remote  Endpoint      `yaml:"remote"`
	Audit   AuditConfig   `yaml:"audit"`
	History HistoryConfig `yaml:"history"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen      string   `yaml:"listen"`
	Env         string   `yaml:"env"`       // "development" or "production"
	LogLevel    string   `yaml:"log_level"` // debug, info, warn, error
	CORSOrigins []string `yaml:"cors_origins"`
}

// CompareConfig controls how a comparison runs.
type CompareConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	Concurrent bool          `yaml:"concurrent"` // read both catalogs in parallel
}

// AuditConfig controls the JSON Lines audit log.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// HistoryConfig controls the SQLite comparison history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Endpoint describes one side of a comparison.
type Endpoint struct {
	Adapter  string `yaml:"adapter"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	DBName   string `yaml:"dbname"` // file path for sqlite and duckdb
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

// UnmarshalYAML accepts the port as either a number or a quoted string.
func (e *Endpoint) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Adapter  string `yaml:"adapter"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*e = Endpoint{
		Adapter:  raw.Adapter,
		Host:     raw.Host,
		DBName:   raw.DBName,
		User:     raw.User,
		Password: raw.Password,
		SSLMode:  raw.SSLMode,
	}
	if raw.Port != "" {
		p, err := strconv.Atoi(strings.TrimSpace(raw.Port))
		if err != nil {
			return fmt.Errorf("port %q: not a number", raw.Port)
		}
		e.Port = p
	}
	return nil
}

// Display returns "adapter://host:port/dbname". Credentials are never included.
func (e Endpoint) Display() string {
	if e.Host == "" {
		return fmt.Sprintf("%s://%s", e.Adapter, e.DBName)
	}
	location := e.Host
	if e.Port > 0 {
		location = fmt.Sprintf("%s:%d", e.Host, e.Port)
	}
	if e.DBName == "" {
		return fmt.Sprintf("%s://%s", e.Adapter, location)
	}
	return fmt.Sprintf("%s://%s/%s", e.Adapter, location, e.DBName)
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      ":8080",
			Env:         "development",
			LogLevel:    "info",
			CORSOrigins: []string{"*"},
		},
		Compare: CompareConfig{
			Timeout: DefaultTimeout,
		},
		Local:  Endpoint{Adapter: "postgres", Host: "127.0.0.1", Port: 5432},
		Remote: Endpoint{Adapter: "postgres", Port: 5432},
		Audit: AuditConfig{
			MaxSizeMB: 10,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// SlogLevel maps Server.LogLevel to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// ConfigDir returns the schemadiff configuration directory path, typically
// ~/.config/schemadiff/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "schemadiff"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error. Environment overrides are applied in
// both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if cfg.Compare.Timeout <= 0 {
		cfg.Compare.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// LoadDefault loads configuration from ConfigDir()/config.yaml.
func LoadDefault() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnv lets secrets and the listen address come from the environment
// instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCHEMADIFF_LOCAL_PASSWORD"); v != "" {
		c.Local.Password = v
	}
	if v := os.Getenv("SCHEMADIFF_REMOTE_PASSWORD"); v != "" {
		c.Remote.Password = v
	}
	if v := os.Getenv("SCHEMADIFF_LISTEN"); v != "" {
		c.Server.Listen = v
	}
}

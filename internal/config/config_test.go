package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Listen != ":8080" {
		t.Errorf("Server.Listen = %q, want %q", cfg.Server.Listen, ":8080")
	}
	if cfg.Compare.Timeout != DefaultTimeout {
		t.Errorf("Compare.Timeout = %v, want %v", cfg.Compare.Timeout, DefaultTimeout)
	}
	if cfg.Compare.Concurrent {
		t.Error("Compare.Concurrent should default to false")
	}
	if cfg.Local.Adapter != "postgres" || cfg.Remote.Adapter != "postgres" {
		t.Errorf("default adapters = %q/%q, want postgres/postgres", cfg.Local.Adapter, cfg.Remote.Adapter)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled should default to false")
	}
	if cfg.IsProduction() {
		t.Error("default config should not be production")
	}
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `server:
  listen: ":9090"
  env: production
  log_level: debug
compare:
  timeout: 3s
  concurrent: true
local:
  adapter: postgres
  host: 127.0.0.1
  port: "5432"
  dbname: app_dev
  user: dev
  password: devpass
remote:
  adapter: mysql
  host: db.example.com
  port: 3306
  dbname: app
  user: ro
  password: secret
audit:
  enabled: true
  path: /tmp/audit.jsonl
history:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Errorf("Server.Listen = %q, want %q", cfg.Server.Listen, ":9090")
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Compare.Timeout != 3*time.Second {
		t.Errorf("Compare.Timeout = %v, want 3s", cfg.Compare.Timeout)
	}
	if !cfg.Compare.Concurrent {
		t.Error("Compare.Concurrent = false, want true")
	}

	wantLocal := Endpoint{Adapter: "postgres", Host: "127.0.0.1", Port: 5432, DBName: "app_dev", User: "dev", Password: "devpass"}
	if cfg.Local != wantLocal {
		t.Errorf("Local = %+v, want %+v", cfg.Local, wantLocal)
	}
	if cfg.Remote.Adapter != "mysql" || cfg.Remote.Port != 3306 {
		t.Errorf("Remote = %+v, want mysql on 3306", cfg.Remote)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "/tmp/audit.jsonl" {
		t.Errorf("Audit = %+v", cfg.Audit)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("local:\n  adapter: postgres\n  port: abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with non-numeric port should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with invalid YAML should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() missing file error = %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("missing file should yield defaults, got listen %q", cfg.Server.Listen)
	}
}

func TestLoadZeroTimeoutFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("compare:\n  timeout: 0s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Compare.Timeout != DefaultTimeout {
		t.Errorf("Compare.Timeout = %v, want %v", cfg.Compare.Timeout, DefaultTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCHEMADIFF_LOCAL_PASSWORD", "from-env")
	t.Setenv("SCHEMADIFF_REMOTE_PASSWORD", "remote-env")
	t.Setenv("SCHEMADIFF_LISTEN", ":7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Local.Password != "from-env" || cfg.Remote.Password != "remote-env" {
		t.Errorf("passwords = %q/%q, want env values", cfg.Local.Password, cfg.Remote.Password)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("Server.Listen = %q, want :7000", cfg.Server.Listen)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Local = Endpoint{Adapter: "sqlite", DBName: "/tmp/a.db"}
	cfg.Compare.Timeout = 5 * time.Second
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perm = %o, want 600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Local != cfg.Local {
		t.Errorf("Local = %+v, want %+v", got.Local, cfg.Local)
	}
	if got.Compare.Timeout != 5*time.Second {
		t.Errorf("Compare.Timeout = %v, want 5s", got.Compare.Timeout)
	}
}

func TestEndpointDisplay(t *testing.T) {
	tests := []struct {
		name string
		ep   Endpoint
		want string
	}{
		{"full", Endpoint{Adapter: "postgres", Host: "db", Port: 5432, DBName: "app", Password: "x"}, "postgres://db:5432/app"},
		{"no port", Endpoint{Adapter: "mysql", Host: "db", DBName: "app"}, "mysql://db/app"},
		{"no db", Endpoint{Adapter: "postgres", Host: "db", Port: 5432}, "postgres://db:5432"},
		{"file based", Endpoint{Adapter: "sqlite", DBName: "/tmp/x.db"}, "sqlite:///tmp/x.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ep.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{Server: ServerConfig{LogLevel: in}}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

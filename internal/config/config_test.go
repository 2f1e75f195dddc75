package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8082 {
		t.Errorf("expected port 8082, got %d", cfg.Server.Port)
	}
	if cfg.MySQL.Port != 3306 {
		t.Errorf("expected mysql port 3306, got %d", cfg.MySQL.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"invalid server port", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid server port high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"invalid mysql port", func(c *Config) { c.MySQL.Port = -1 }, true},
		{"invalid tls mode", func(c *Config) { c.MySQL.TLS = "bogus" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mysqldiff.yaml")
	data := []byte(`
mysql:
  host: db.example.test
  port: 3307
  user: reader
diff:
  tolerant: true
  table_re: "^app_"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MySQL.Host != "db.example.test" {
		t.Errorf("expected host override, got %s", cfg.MySQL.Host)
	}
	if cfg.MySQL.Port != 3307 {
		t.Errorf("expected port override, got %d", cfg.MySQL.Port)
	}
	if !cfg.Diff.Tolerant {
		t.Errorf("expected tolerant override to be true")
	}
	if cfg.Diff.TableRE != "^app_" {
		t.Errorf("expected table_re override, got %q", cfg.Diff.TableRE)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MYSQLDIFF_MYSQL_HOST", "env-host")
	t.Setenv("MYSQLDIFF_MYSQL_PORT", "3308")
	t.Setenv("MYSQLDIFF_DEBUG", "true")
	t.Setenv("MYSQLDIFF_API_KEY_HASH", "hashed-value")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MySQL.Host != "env-host" {
		t.Errorf("expected env host override, got %s", cfg.MySQL.Host)
	}
	if cfg.MySQL.Port != 3308 {
		t.Errorf("expected env port override, got %d", cfg.MySQL.Port)
	}
	if !cfg.Logging.Debug {
		t.Errorf("expected debug override to be true")
	}
	if cfg.APIKey.Hash != "hashed-value" {
		t.Errorf("expected api key hash override, got %q", cfg.APIKey.Hash)
	}
}

func TestMySQLConfigDSN(t *testing.T) {
	m := MySQLConfig{Host: "db", Port: 3306, User: "u", Password: "p", TLS: "skip-verify"}
	dsn := m.DSN("schema_test")
	want := "u:p@tcp(db:3306)/schema_test?tls=skip-verify"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}
}

func TestAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9999
	if got := cfg.Address(); got != "127.0.0.1:9999" {
		t.Errorf("Address() = %q", got)
	}
}

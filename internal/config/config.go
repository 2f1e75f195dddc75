// Package config provides configuration management for the mysqldiff CLI
// and its optional HTTP server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the mysqldiff configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Diff    DiffConfig    `yaml:"diff"`
	Logging LoggingConfig `yaml:"logging"`
	APIKey  APIKeyConfig  `yaml:"api_key"`
}

// ServerConfig represents the "serve" subcommand's HTTP server configuration.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

// MySQLConfig holds MySQL connection settings, from which DSN builds a
// DSN. The --live loader does not read them: it takes its DSN from the
// positional argument.
type MySQLConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	TLS             string `yaml:"tls"` // true, false, skip-verify, preferred
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// DiffConfig holds differ settings loaded from the config file. The diff,
// refs and watch subcommands do not apply them; differ.Options is set
// from command-line flags only.
type DiffConfig struct {
	TableRE       string `yaml:"table_re"`
	OnlyBoth      bool   `yaml:"only_both"`
	KeepOldTables bool   `yaml:"keep_old_tables"`
	ListTables    bool   `yaml:"list_tables"`
	NoOldDefs     bool   `yaml:"no_old_defs"`
	Tolerant      bool   `yaml:"tolerant"`
	SaveQuotes    bool   `yaml:"save_quotes"`
}

// LoggingConfig controls where and how verbosely mysqldiff logs.
type LoggingConfig struct {
	Debug      bool   `yaml:"debug"`
	DebugFile  string `yaml:"debug_file"`
	LogsFolder string `yaml:"logs_folder"`
}

// APIKeyConfig configures the bcrypt hash checked by internal/apikey for
// the "serve" subcommand.
type APIKeyConfig struct {
	Header string `yaml:"header"` // X-API-Key
	Hash   string `yaml:"hash"`   // bcrypt hash of the accepted key
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8082,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		MySQL: MySQLConfig{
			Host:            "127.0.0.1",
			Port:            3306,
			TLS:             "preferred",
			MaxOpenConns:    10,
			ConnMaxLifetime: 300,
		},
		APIKey: APIKeyConfig{
			Header: "X-API-Key",
		},
	}
}

// Load loads configuration from a YAML file and environment variables.
// Environment variables override file configuration. An empty path
// returns the default configuration with env overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// #nosec G304 -- path is from command-line argument, user-controlled input is expected
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MYSQLDIFF_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MYSQLDIFF_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MYSQLDIFF_MYSQL_HOST"); v != "" {
		c.MySQL.Host = v
	}
	if v := os.Getenv("MYSQLDIFF_MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MySQL.Port = port
		}
	}
	if v := os.Getenv("MYSQLDIFF_MYSQL_USER"); v != "" {
		c.MySQL.User = v
	}
	if v := os.Getenv("MYSQLDIFF_MYSQL_PASSWORD"); v != "" {
		c.MySQL.Password = v
	}
	if v := os.Getenv("MYSQLDIFF_MYSQL_TLS"); v != "" {
		c.MySQL.TLS = v
	}
	if v := os.Getenv("MYSQLDIFF_DEBUG"); v != "" {
		c.Logging.Debug = strings.ToLower(v) == "true" || v == "1"
	}
	// The API key hash itself is a secret; prefer env over file so it
	// never needs to sit in a checked-in config file.
	if v := os.Getenv("MYSQLDIFF_API_KEY_HASH"); v != "" {
		c.APIKey.Hash = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.MySQL.Port < 1 || c.MySQL.Port > 65535 {
		return fmt.Errorf("invalid mysql port: %d", c.MySQL.Port)
	}

	validTLS := map[string]bool{
		"":            true,
		"true":        true,
		"false":       true,
		"skip-verify": true,
		"preferred":   true,
	}
	if !validTLS[c.MySQL.TLS] {
		return fmt.Errorf("invalid mysql tls mode: %s", c.MySQL.TLS)
	}

	return nil
}

// Address returns the server's listen address string.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN builds a go-sql-driver/mysql data source name for the given
// database name from the connection settings.
func (c *MySQLConfig) DSN(database string) string {
	tls := c.TLS
	if tls == "" {
		tls = "preferred"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?tls=%s",
		c.User, c.Password, c.Host, c.Port, database, tls)
}

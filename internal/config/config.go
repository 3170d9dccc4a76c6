// Package config provides YAML-based configuration loading for demodash.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config is the top-level demodash configuration, loaded from demodash.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Local  LocalConfig  `yaml:"local"`
	Remote RemoteConfig `yaml:"remote"`
	Log    LogConfig    `yaml:"log"`
	Jobs   JobsConfig   `yaml:"jobs"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects and configures the relational store.
type StoreConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"` // sqlite database file
	MySQL  MySQLConfig `yaml:"mysql"`
	Seed   bool        `yaml:"seed"` // load demo data into an empty store
}

// MySQLConfig holds connection settings for a MySQL-compatible server.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LocalConfig configures the local-mode document store and mock API. An
// omitted latency defaults to DefaultLatency; an explicit 0 disables it.
type LocalConfig struct {
	Dir     string        `yaml:"dir"`
	Latency time.Duration `yaml:"latency"`
}

// RemoteConfig points clients at a running API server.
type RemoteConfig struct {
	URL          string        `yaml:"url"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// JobsConfig schedules background jobs. Blank schedules disable a job.
type JobsConfig struct {
	DigestSchedule string `yaml:"digest_schedule"`
	MirrorSchedule string `yaml:"mirror_schedule"`
	SlackWebhook   string `yaml:"slack_webhook"`
	DiscordWebhook string `yaml:"discord_webhook"`
}

// DefaultLatency is the mock API's simulated delay when local.latency is
// not set.
const DefaultLatency = 300 * time.Millisecond

// CronParser accepts standard 5-field cron expressions.
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads a YAML config file from path and returns a validated Config.
// Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in configuration with environment overrides.
func Default() (*Config, error) {
	return Parse(nil)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Local: LocalConfig{Latency: DefaultLatency}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.deriveRemote()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Path == "" {
		c.Store.Path = "projects.db"
	}
	if c.Store.MySQL.Host == "" {
		c.Store.MySQL.Host = "127.0.0.1"
	}
	if c.Store.MySQL.Port == 0 {
		c.Store.MySQL.Port = 3306
	}
	if c.Store.MySQL.User == "" {
		c.Store.MySQL.User = "root"
	}
	if c.Local.Dir == "" {
		c.Local.Dir = ".demodash"
	}
	if c.Remote.ProbeTimeout == 0 {
		c.Remote.ProbeTimeout = 2 * time.Second
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnv overrides file values from DEMODASH_* environment variables.
func (c *Config) applyEnv() error {
	if portStr := os.Getenv("DEMODASH_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("config: invalid DEMODASH_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if path := os.Getenv("DEMODASH_DB_PATH"); path != "" {
		c.Store.Path = path
	}
	if url := os.Getenv("DEMODASH_API_URL"); url != "" {
		c.Remote.URL = url
	}
	if level := os.Getenv("DEMODASH_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	return nil
}

// deriveRemote points an unset remote URL at the local server's final port.
func (c *Config) deriveRemote() {
	if c.Remote.URL == "" {
		c.Remote.URL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverMySQL:
		if c.Store.MySQL.Database == "" {
			errs = append(errs, "store.mysql.database is required for the mysql driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or mysql", c.Store.Driver))
	}
	if c.Local.Latency < 0 {
		errs = append(errs, "local.latency must not be negative")
	}
	if !strings.HasPrefix(c.Remote.URL, "http://") && !strings.HasPrefix(c.Remote.URL, "https://") {
		errs = append(errs, fmt.Sprintf("remote.url %q must be an http(s) URL", c.Remote.URL))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	for _, sched := range []struct{ name, expr string }{
		{"jobs.digest_schedule", c.Jobs.DigestSchedule},
		{"jobs.mirror_schedule", c.Jobs.MirrorSchedule},
	} {
		if sched.expr == "" {
			continue
		}
		if _, err := CronParser.Parse(sched.expr); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", sched.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("log.level must be debug, info, warn or error")
}

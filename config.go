package sessionkit

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full sessionkit configuration. Zero values are filled
// from defaults during Build; a Config is treated as immutable afterward.
type Config struct {
	Session SessionConfig
	Client  ClientConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session window and the expiry monitor.
type SessionConfig struct {
	// Lifetime is the fixed session window measured from LoginTime.
	Lifetime time.Duration

	// WarningThreshold is the remaining-lifetime lead at which
	// IsSessionExpiringSoon turns true.
	WarningThreshold time.Duration

	// MonitorInterval is the expiry monitor tick period.
	MonitorInterval time.Duration
}

/*
====================================
CLIENT CONFIG
====================================
*/

// ClientConfig configures the HTTP Auth API client constructed by Build
// when no explicit client is injected.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig configures the default credential store constructed by
// Build when no explicit store is injected.
type StorageConfig struct {
	// Backend selects the default store: "memory" or "file".
	// Redis stores are always injected explicitly.
	Backend string `toml:"backend"`

	// Dir is the file-store directory. Empty means "$HOME/.campuspulse".
	Dir string `toml:"dir"`

	// RedisPrefix namespaces keys when a Redis store is injected.
	RedisPrefix string `toml:"redis_prefix"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
	DropIfFull bool `toml:"drop_if_full"`
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool `toml:"enabled"`
	EnableLatencyHistograms bool `toml:"latency_histograms"`
}

// DefaultConfig returns the documented defaults: a 24 h session window,
// a 15 min expiry warning, 60 s monitor ticks, metrics on, audit off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Lifetime:         24 * time.Hour,
			WarningThreshold: 15 * time.Minute,
			MonitorInterval:  60 * time.Second,
		},
		Client: ClientConfig{
			Timeout:   15 * time.Second,
			UserAgent: "sessionkit",
		},
		Storage: StorageConfig{
			Backend:     "memory",
			RedisPrefix: "cp",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a plain copy is a deep copy.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.Session.Lifetime <= 0 {
		return errors.New("session lifetime must be positive")
	}
	if cfg.Session.MonitorInterval <= 0 {
		return errors.New("monitor interval must be positive")
	}
	if cfg.Session.WarningThreshold < 0 || cfg.Session.WarningThreshold >= cfg.Session.Lifetime {
		return errors.New("warning threshold must be within the session lifetime")
	}
	if cfg.Client.Timeout <= 0 {
		return errors.New("client timeout must be positive")
	}
	switch cfg.Storage.Backend {
	case "memory", "file":
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

// fileConfig is the on-disk shape. Durations are written as plain
// integers with the unit in the key so config files stay hand-editable.
type fileConfig struct {
	Session struct {
		LifetimeHours  int `toml:"lifetime_hours"`
		WarningMinutes int `toml:"warning_minutes"`
		MonitorSecs    int `toml:"monitor_secs"`
	} `toml:"session"`
	Client struct {
		BaseURL     string `toml:"base_url"`
		TimeoutSecs int    `toml:"timeout_secs"`
		UserAgent   string `toml:"user_agent"`
	} `toml:"client"`
	Storage StorageConfig `toml:"storage"`
	Audit   AuditConfig   `toml:"audit"`
	Metrics MetricsConfig `toml:"metrics"`
}

// LoadConfig reads a TOML config file over the defaults and then applies
// environment overrides. A missing file is not an error; the defaults
// plus environment are returned.
//
// Environment overrides:
//
//	SESSIONKIT_BASE_URL      → Client.BaseURL
//	SESSIONKIT_STORAGE_DIR   → Storage.Dir (and Backend = "file")
//	SESSIONKIT_AUDIT         → Audit.Enabled ("1" or "true")
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			var fc fileConfig
			fc.Storage = cfg.Storage
			fc.Audit = cfg.Audit
			fc.Metrics = cfg.Metrics
			if err := toml.Unmarshal(raw, &fc); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			if fc.Session.LifetimeHours > 0 {
				cfg.Session.Lifetime = time.Duration(fc.Session.LifetimeHours) * time.Hour
			}
			if fc.Session.WarningMinutes > 0 {
				cfg.Session.WarningThreshold = time.Duration(fc.Session.WarningMinutes) * time.Minute
			}
			if fc.Session.MonitorSecs > 0 {
				cfg.Session.MonitorInterval = time.Duration(fc.Session.MonitorSecs) * time.Second
			}
			if fc.Client.BaseURL != "" {
				cfg.Client.BaseURL = fc.Client.BaseURL
			}
			if fc.Client.TimeoutSecs > 0 {
				cfg.Client.Timeout = time.Duration(fc.Client.TimeoutSecs) * time.Second
			}
			if fc.Client.UserAgent != "" {
				cfg.Client.UserAgent = fc.Client.UserAgent
			}
			cfg.Storage = fc.Storage
			cfg.Audit = fc.Audit
			cfg.Metrics = fc.Metrics
		}
	}

	if v := os.Getenv("SESSIONKIT_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("SESSIONKIT_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
		cfg.Storage.Backend = "file"
	}
	if v := os.Getenv("SESSIONKIT_AUDIT"); v == "1" || v == "true" {
		cfg.Audit.Enabled = true
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

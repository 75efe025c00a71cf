// Package config loads application settings through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/common"
)

// Defaults for keys that are not set in the config file or environment.
const (
	DefaultDatabasePath = "$HOME/.local/share/spice/spice.db"
	DefaultOwnerID      = int64(1)
	DefaultInsightDays  = 30
	DefaultServerAddr   = "127.0.0.1:8484"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"

	DefaultSimpleFINStateFile = "$HOME/.local/share/spice/simplefin_auth.json"
	DefaultCertDir            = "$HOME/.local/share/spice/certs"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	ServerAddr   string
	LogLevel     string
	LogFormat    string
	OwnerID      int64
	InsightDays  int
	// ReadTimeout bounds a single API request.
	ReadTimeout time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("owner.id", DefaultOwnerID)
	v.SetDefault("insights.window_days", DefaultInsightDays)
	v.SetDefault("server.address", DefaultServerAddr)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", DefaultCertDir)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("datalake.database", "datalake")
	v.SetDefault("datalake.collection", "transactions")
	v.SetDefault("plaid.environment", "sandbox")
	v.SetDefault("simplefin.state_file", DefaultSimpleFINStateFile)
}

// Load resolves the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		OwnerID:      v.GetInt64("owner.id"),
		InsightDays:  v.GetInt("insights.window_days"),
		ServerAddr:   v.GetString("server.address"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.OwnerID <= 0 {
		return fmt.Errorf("%w: owner.id must be positive, got %d", common.ErrInvalidConfig, c.OwnerID)
	}
	if c.InsightDays <= 0 {
		return fmt.Errorf("%w: insights.window_days must be positive, got %d", common.ErrInvalidConfig, c.InsightDays)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

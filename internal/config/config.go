// Package config loads formflow settings from an optional YAML file, a .env
// file and FORMFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FORMFLOW_SERVER_ADDR.
const EnvPrefix = "FORMFLOW"

// Lookup store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is the resolved application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Lookup  LookupConfig  `mapstructure:"lookup"`
	Forms   FormsConfig   `mapstructure:"forms"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LookupConfig struct {
	BasePath        string        `mapstructure:"base_path"`
	Delay           time.Duration `mapstructure:"delay"`
	Store           string        `mapstructure:"store"`
	SQLiteDSN       string        `mapstructure:"sqlite_dsn"`
	Fixtures        string        `mapstructure:"fixtures"`
	MinFilterLength int           `mapstructure:"min_filter_length"`
	LicenseLimit    int           `mapstructure:"license_limit"`
}

// FormsConfig points at a directory of form documents. When Dir is empty the
// bundled forms are served.
type FormsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SetDefaults registers every key with its default so environment variables
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("lookup.base_path", "")
	v.SetDefault("lookup.delay", 300*time.Millisecond)
	v.SetDefault("lookup.store", StoreMemory)
	v.SetDefault("lookup.sqlite_dsn", "")
	v.SetDefault("lookup.fixtures", "")
	v.SetDefault("lookup.min_filter_length", 2)
	v.SetDefault("lookup.license_limit", 10)

	v.SetDefault("forms.dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads cfgFile (or ./formflow.yaml when present) plus the environment
// into v and returns the validated configuration. A missing .env file or
// default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("formflow")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", describe(cfgFile), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch c.Lookup.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Lookup.SQLiteDSN) == "" {
			errs = append(errs, errors.New("config: lookup.sqlite_dsn is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: lookup.store %q is not one of %s, %s", c.Lookup.Store, StoreMemory, StoreSQLite))
	}
	if c.Lookup.Delay < 0 {
		errs = append(errs, fmt.Errorf("config: lookup.delay %s is negative", c.Lookup.Delay))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q is not json or text", c.Log.Format))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path))
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("config: log.level %q: %w", raw, err)
	}
	return level, nil
}

func describe(cfgFile string) string {
	if cfgFile == "" {
		return "formflow.yaml"
	}
	return cfgFile
}

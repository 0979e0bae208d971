package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultInterval = 5
	DefaultDivide   = 1
	DefaultMinimum  = 0
	DefaultMaximum  = 100
	DefaultStep     = 5

	NotifierDBus   = "dbus"
	NotifierZenity = "zenity"
	NotifierNone   = "none"

	envPrefix = "AUTOBRIGHT"
)

type Display struct {
	Cmd string `mapstructure:"cmd"`
}

// Config is read once at startup and never modified afterwards.
type Config struct {
	DefaultOffset    int           `mapstructure:"default_offset"`
	Interval         time.Duration `mapstructure:"-"`
	Divide           int           `mapstructure:"divide"`
	Sensor           string        `mapstructure:"sensor"`
	Displays         []Display     `mapstructure:"displays"`
	Minimum          int           `mapstructure:"minimum"`
	Maximum          int           `mapstructure:"maximum"`
	Notifier         string        `mapstructure:"notifier"`
	NotifyOnDispatch bool          `mapstructure:"notify_on_dispatch"`
	Tray             bool          `mapstructure:"tray"`
	Step             int           `mapstructure:"step"`
	LogLevel         string        `mapstructure:"log_level"`
}

// DefaultPath returns $XDG_CONFIG_HOME/Oceania/autobright.toml, falling back
// to $HOME/Oceania/autobright.toml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = os.Getenv("HOME")
	}
	if base == "" {
		return "", errdefs.ErrNoConfigHome
	}
	return filepath.Join(base, "Oceania", "autobright.toml"), nil
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("toml")

	v.SetDefault("default_offset", 0)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("divide", DefaultDivide)
	v.SetDefault("minimum", DefaultMinimum)
	v.SetDefault("maximum", DefaultMaximum)
	v.SetDefault("notifier", NotifierDBus)
	v.SetDefault("notify_on_dispatch", false)
	v.SetDefault("tray", true)
	v.SetDefault("step", DefaultStep)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; sensor has no default.
	_ = v.BindEnv("sensor")
	return v
}

// Load reads and validates the TOML configuration at path on fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := newViper(fs)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errdefs.Wrap(errdefs.ErrTypeConfig, fmt.Sprintf("failed to read config %s", path), err)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	if strings.TrimSpace(v.GetString("sensor")) == "" {
		return nil, errdefs.ErrSensorMissing
	}
	if !v.InConfig("displays") {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeConfig, "displays list is required")
	}

	interval := v.GetInt64("interval")
	if interval < 0 {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("interval must not be negative, got %d", interval))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errdefs.Wrap(errdefs.ErrTypeConfig, "failed to decode config", err)
	}
	cfg.Interval = time.Duration(interval) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the control loop relies on.
func (c *Config) Validate() error {
	if c.Divide == 0 {
		return errdefs.ErrDivideByZero
	}
	if strings.TrimSpace(c.Sensor) == "" {
		return errdefs.ErrSensorMissing
	}
	if c.Minimum < 0 {
		return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("minimum must not be negative, got %d", c.Minimum))
	}
	if c.Maximum < 0 {
		return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("maximum must not be negative, got %d", c.Maximum))
	}
	if c.Minimum > c.Maximum {
		return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("minimum (%d) must not exceed maximum (%d)", c.Minimum, c.Maximum))
	}
	if c.Step <= 0 {
		return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("step must be positive, got %d", c.Step))
	}
	for i, d := range c.Displays {
		if strings.TrimSpace(d.Cmd) == "" {
			return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("displays[%d].cmd must not be empty", i))
		}
	}
	switch c.Notifier {
	case NotifierDBus, NotifierZenity, NotifierNone:
	default:
		return errdefs.NewCustomError(errdefs.ErrTypeConfig, fmt.Sprintf("unknown notifier %q", c.Notifier))
	}
	return nil
}

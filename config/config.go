package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Interactivity sources understood by the power monitor.
const (
	PowerSourceAuto   = "auto"
	PowerSourceDBus   = "dbus"
	PowerSourceStatic = "static"
)

// Config is the bootstrap configuration read before any window or preference
// store exists: file locations and platform integration switches.
type Config struct {
	DataDir      string      `mapstructure:"data_dir"`
	CacheDir     string      `mapstructure:"cache_dir"`
	Database     string      `mapstructure:"database"`
	DeferredFile string      `mapstructure:"deferred_file"`
	Debug        bool        `mapstructure:"debug"`
	Hotkeys      bool        `mapstructure:"hotkeys"`
	Power        PowerConfig `mapstructure:"power"`
	Alarms       AlarmConfig `mapstructure:"alarms"`

	// ConfigFileUsed is the file the values were read from, empty when only
	// defaults and environment were used.
	ConfigFileUsed string `mapstructure:"-"`
}

// PowerConfig selects how screen on/off and interactivity are observed.
type PowerConfig struct {
	Source             string `mapstructure:"source"`
	ScreenSaverService string `mapstructure:"screensaver_service"`
	// StaticInteractive is the answer used by the static source.
	StaticInteractive bool `mapstructure:"static_interactive"`
}

// AlarmConfig tunes the in-process alarm service.
type AlarmConfig struct {
	// Exact disables exact alarms when false, mirroring a revoked
	// exact-alarm permission.
	Exact bool `mapstructure:"exact"`
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, strings.ToLower(AppName))
}

func setDefaults(v *viper.Viper) {
	appDir := strings.ToLower(AppName)
	v.SetDefault("data_dir", filepath.Join(xdg.DataHome, appDir))
	v.SetDefault("cache_dir", filepath.Join(xdg.CacheHome, appDir))
	v.SetDefault("database", "")
	v.SetDefault("deferred_file", "")
	v.SetDefault("debug", false)
	v.SetDefault("hotkeys", true)
	v.SetDefault("power.source", PowerSourceAuto)
	v.SetDefault("power.screensaver_service", "org.freedesktop.ScreenSaver")
	v.SetDefault("power.static_interactive", true)
	v.SetDefault("alarms.exact", true)
}

// Load reads config.yaml (from configFile when given, otherwise from
// ConfigDir), applies PAPERIZE_* environment overrides and fills derived paths.
// A missing config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFileUsed = v.ConfigFileUsed()

	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.DataDir, "catalog.db")
	}
	if cfg.DeferredFile == "" {
		cfg.DeferredFile = filepath.Join(cfg.DataDir, "deferred.json")
	}

	switch cfg.Power.Source {
	case PowerSourceAuto, PowerSourceDBus, PowerSourceStatic:
	default:
		return nil, fmt.Errorf("invalid power.source %q", cfg.Power.Source)
	}

	return &cfg, nil
}

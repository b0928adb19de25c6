package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "SCREENBALANCE"
	defaultDirRel = ".config/screenbalance"
)

// Load reads configuration from defaults, an optional YAML file and
// SCREENBALANCE_* environment variables, in increasing precedence.
// An empty configPath searches ~/.config/screenbalance/config.yaml.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, Default())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, defaultDirRel))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		// Config file not found, use defaults and environment variables
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// setDefaults registers every key so environment overrides are picked up by Unmarshal
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("tracker.sample_interval", def.Tracker.SampleInterval)
	v.SetDefault("tracker.report_interval", def.Tracker.ReportInterval)
	v.SetDefault("tracker.idle_threshold", def.Tracker.IdleThreshold)
	v.SetDefault("tracker.idle_detection", def.Tracker.IdleDetection)
	v.SetDefault("tracker.focus_source", def.Tracker.FocusSource)

	v.SetDefault("database.path", def.Database.Path)

	v.SetDefault("daemon.pid_file", def.Daemon.PIDFile)
	v.SetDefault("daemon.log_file", def.Daemon.LogFile)

	v.SetDefault("web.enabled", def.Web.Enabled)
	v.SetDefault("web.host", def.Web.Host)
	v.SetDefault("web.port", def.Web.Port)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SampleSize         int    `mapstructure:"sample_size" yaml:"sample_size"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`
	ChartWidth         int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight        int    `mapstructure:"chart_height" yaml:"chart_height"`
	ColorScheme        string `mapstructure:"color_scheme" yaml:"color_scheme"`
	DefaultAggregation string `mapstructure:"default_aggregation" yaml:"default_aggregation"`
	ProjectsDir        string `mapstructure:"projects_dir" yaml:"projects_dir"`
	LogLevel           string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"sample_size", "max_rows", "chart_width", "chart_height",
	"color_scheme", "default_aggregation", "projects_dir", "log_level",
}

// Dir returns ~/.plotloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".plotloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.plotloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PLOTLOOM")
	v.AutomaticEnv()

	v.SetDefault("sample_size", 500)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("chart_width", 640)
	v.SetDefault("chart_height", 400)
	v.SetDefault("color_scheme", "tableau10")
	v.SetDefault("default_aggregation", "sum")
	v.SetDefault("projects_dir", "")
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProjectsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	return &c, nil
}

// ParseLevel maps a log_level value to a slog level. Unknown names mean warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

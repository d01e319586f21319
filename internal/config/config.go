package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the application
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string   `mapstructure:"level"`  // debug, info, warn, error
	Format string   `mapstructure:"format"` // json, console
	Paths  []string `mapstructure:"paths"`  // stdout is reserved for RESP data
}

// JournalConfig defines settings of the append only journal
type JournalConfig struct {
	Fsync      string `mapstructure:"fsync"`       // always, everysec, no
	QueueSize  int    `mapstructure:"queue_size"`  // pending appends before Append blocks
	BufferSize int    `mapstructure:"buffer_size"` // bytes buffered before a write reaches the file
}

// OutputConfig defines how decoded values are printed
type OutputConfig struct {
	Format string `mapstructure:"format"` // text, yaml
}

// MetricsConfig defines whether counters are dumped when a command finishes
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads the configuration from a file and overrides it with environment variables.
// Values already bound to flags on v take precedence over both
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("respkit")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("RESPKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults(v *viper.Viper) {
	// Logger
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.paths", []string{"stderr"})

	// Journal
	v.SetDefault("journal.fsync", "everysec")
	v.SetDefault("journal.queue_size", 1024)
	v.SetDefault("journal.buffer_size", 4096)

	// Output
	v.SetDefault("output.format", "text")

	// Metrics
	v.SetDefault("metrics.enabled", false)
}

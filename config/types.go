package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Output  string        `mapstructure:"output"`
	Filters FilterConfig  `mapstructure:"filters"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServiceConfig holds meeting bot service connection details
type ServiceConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FilterConfig maps filter names to expressions, referenced as @name on the command line
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

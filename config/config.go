package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. MEETBOT_SERVICE_URL
const EnvPrefix = "MEETBOT"

// Load reads configuration from configPath, or from the standard locations when
// configPath is empty. A missing file in the standard locations is not an error:
// defaults and MEETBOT_* environment variables are used instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".meetbot"))
		}
		v.AddConfigPath("/etc/meetbot/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("service.url", "")
	v.SetDefault("service.api_key", "")
	v.SetDefault("service.timeout", 10*time.Second)

	v.SetDefault("output", "text")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// Validate checks the configuration after command line overrides are applied
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Service.URL) == "" {
		return fmt.Errorf("service.url is required")
	}

	if c.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative: %s", c.Service.Timeout)
	}

	validOutputs := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", c.Output)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	return nil
}

// ResolveFilter returns the expression for a @name reference, or expression unchanged
func (c *Config) ResolveFilter(expression string) (string, error) {
	name, ok := strings.CutPrefix(strings.TrimSpace(expression), "@")
	if !ok {
		return expression, nil
	}

	// viper lowercases map keys
	resolved, exists := c.Filters[strings.ToLower(name)]
	if !exists {
		return "", fmt.Errorf("filter %q is not defined in config", name)
	}
	return resolved, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FCARDS"

// defaults lists every configuration key with its default value. Viper only
// binds environment variables for keys it knows about, so every key is listed
// even when its default is empty.
var defaults = map[string]any{
	"server.host":                    "127.0.0.1",
	"server.port":                    8765,
	"server.log_level":               "info",
	"server.log_format":              "json",
	"server.allowed_origins":         []string{"http://localhost:3000", "app://."},
	"database.driver":                "sqlite3",
	"database.dsn":                   "fcards.db",
	"translation.primary_provider":   "",
	"translation.timeout":            "30s",
	"translation.strict":             false,
	"translation.max_retries":        1,
	"translation.retry_delay":        "500ms",
	"providers.gemini.api_key":       "",
	"providers.gemini.model":         "gemini-2.0-flash",
	"providers.anthropic.api_key":    "",
	"providers.anthropic.model":      "claude-3-5-haiku-latest",
	"providers.anthropic.max_tokens": 1024,
	"providers.openai.api_key":       "",
	"providers.openai.model":         "gpt-4o-mini",
	"providers.openai.base_url":      "https://api.openai.com/v1",
	"session.default_max_cards":      20,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rule that the
// primary provider, when set, has credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Translation.PrimaryProvider == "" {
		return nil
	}
	for _, name := range c.Providers.Configured() {
		if name == c.Translation.PrimaryProvider {
			return nil
		}
	}
	return fmt.Errorf(
		"invalid configuration: primary provider %q has no api_key configured",
		c.Translation.PrimaryProvider,
	)
}

package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Translation TranslationConfig `mapstructure:"translation" validate:"required"`
	Providers   ProvidersConfig   `mapstructure:"providers"`
	Session     SessionConfig     `mapstructure:"session" validate:"required"`
}

// ServerConfig contains the settings of the local HTTP boundary the desktop
// renderer talks to.
type ServerConfig struct {
	Host           string   `mapstructure:"host" validate:"required"`
	Port           int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat      string   `mapstructure:"log_format" validate:"required,oneof=json text"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the card store backend. The embedded sqlite3 driver
// is the default; pgx points the same stores at a PostgreSQL server.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 pgx"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// TranslationConfig controls the provider chain.
type TranslationConfig struct {
	// PrimaryProvider names the provider tried first. Empty means none.
	PrimaryProvider string        `mapstructure:"primary_provider" validate:"omitempty,oneof=gemini anthropic openai"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// Strict surfaces provider failures instead of degrading to the baseline translator.
	Strict bool `mapstructure:"strict"`
	// MaxRetries is how many times a provider retries a transient failure.
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

// ProvidersConfig holds per-provider credentials. A provider without an API key
// is not registered.
type ProvidersConfig struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// GeminiConfig contains Google Gemini settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required_with=APIKey"`
}

// AnthropicConfig contains Anthropic Claude settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model" validate:"required_with=APIKey"`
	MaxTokens int64  `mapstructure:"max_tokens" validate:"gte=0"`
}

// OpenAIConfig contains OpenAI chat-completions settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" validate:"required_with=APIKey"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// SessionConfig contains practice session defaults.
type SessionConfig struct {
	DefaultMaxCards int `mapstructure:"default_max_cards" validate:"gt=0"`
}

// Configured reports the names of providers that have credentials, in the
// order they are tried as fallbacks.
func (p ProvidersConfig) Configured() []string {
	var names []string
	if p.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	if p.Anthropic.APIKey != "" {
		names = append(names, "anthropic")
	}
	if p.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	return names
}

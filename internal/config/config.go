package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backend selects how the curation model is reached
type Backend string

const (
	BackendGemini Backend = "gemini"
	BackendVertex Backend = "vertex"
)

// Config holds all configuration for the application
type Config struct {
	// Application settings
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// Curation model. The API key is deliberately optional here: a missing key
	// surfaces as a configuration error on the first request instead.
	GeminiAPIKey    string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	GeminiBaseURL   string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiBackend   Backend       `envconfig:"GEMINI_BACKEND" default:"gemini"`
	GeminiGrounding bool          `envconfig:"GEMINI_GROUNDING" default:"true"`
	GeminiTimeout   time.Duration `envconfig:"GEMINI_TIMEOUT" default:"60s"`
	VertexProject   string        `envconfig:"VERTEX_PROJECT"`
	VertexLocation  string        `envconfig:"VERTEX_LOCATION" default:"us-central1"`

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	ValkeyURL     string        `envconfig:"VALKEY_URL"`

	// Presentation
	CurationConfigPath string `envconfig:"CURATION_CONFIG_PATH"`
	DefaultLocale      string `envconfig:"DEFAULT_LOCALE" default:"ko"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	cfg.GeminiBackend = Backend(strings.ToLower(string(cfg.GeminiBackend)))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings that would make the service unusable at startup.
// Credentials are not checked here; they are reported per request.
func (c *Config) Validate() error {
	switch c.GeminiBackend {
	case BackendGemini, BackendVertex:
	default:
		return fmt.Errorf("unsupported GEMINI_BACKEND %q (use gemini or vertex)", c.GeminiBackend)
	}

	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	return nil
}

// HasCredentials reports whether the configured backend can authenticate
func (c *Config) HasCredentials() bool {
	switch c.GeminiBackend {
	case BackendVertex:
		return c.VertexProject != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

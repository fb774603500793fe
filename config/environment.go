package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	AppName        string        `env:"APP_NAME" envDefault:"Apex Global Defense"`
	Version        string        `env:"APP_VERSION" envDefault:"1.0.0"`
	APIPrefix      string        `env:"API_PREFIX" envDefault:"/api/v1"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	Debug          bool          `env:"DEBUG"`
	Port           string        `env:"PORT" envDefault:"8080"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`
	SecretKey      string        `env:"SECRET_KEY"`
	TokenIssuer    string        `env:"TOKEN_ISSUER" envDefault:"apex-global-defense"`
	TokenAudience  string        `env:"TOKEN_AUDIENCE" envDefault:"apex-global-defense-api"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"`

	Database Database
	AI       AI

	// GeneratedSecret is set when SECRET_KEY was missing in development and a
	// throwaway key was generated for this process.
	GeneratedSecret bool
}

type Database struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DB_URL"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	Debug           bool          `env:"DB_DEBUG"`
}

type AI struct {
	OpenAIURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/responses"`
	AnthropicURL   string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1/messages"`
	GeminiBaseURL  string        `env:"GEMINI_BASE_URL"`
	LocalModelURL  string        `env:"LOCAL_MODEL_URL" envDefault:"http://localhost:11434/v1/chat/completions"`
	RequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"60s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Settings and fills in what can be derived.
func Load() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}

	switch s.Environment {
	case "development", "staging", "production":
	default:
		return Settings{}, fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", s.Environment)
	}

	if s.SecretKey == "" {
		if !s.IsDevelopment() {
			return Settings{}, fmt.Errorf("SECRET_KEY is required in %s", s.Environment)
		}
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Settings{}, fmt.Errorf("generate secret key: %w", err)
		}
		s.SecretKey = hex.EncodeToString(buf)
		s.GeneratedSecret = true
	}
	return s, nil
}

func (s Settings) IsDevelopment() bool {
	return s.Environment == "development"
}

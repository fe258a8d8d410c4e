package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process-wide configuration, loaded once at startup and
// passed to the components that need it.
type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL" required:"true"`
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	ServerPort        string        `envconfig:"SERVER_PORT" default:"8080"`
	AllowedOrigins    string        `envconfig:"ALLOWED_ORIGINS"`
	AgentMaxSteps     int           `envconfig:"AGENT_MAX_STEPS" default:"10"`
	AgentStageTimeout time.Duration `envconfig:"AGENT_STAGE_TIMEOUT" default:"120s"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Document and index roots, one subdirectory per area in each.
	DocsRoot  string `envconfig:"DOCS_ROOT" default:"data"`
	IndexRoot string `envconfig:"INDEX_ROOT" default:"storage/index"`

	// Collection names are CollectionBase for the global collection and
	// CollectionBase_{area} for area-scoped ones.
	CollectionBase string `envconfig:"COLLECTION_BASE" default:"docs"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	CompletionModel     string `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`
	CompletionMaxTokens int    `envconfig:"COMPLETION_MAX_TOKENS" default:"512"`

	ContextMaxChars int    `envconfig:"CONTEXT_MAX_CHARS" default:"12000"`
	AssistantName   string `envconfig:"ASSISTANT_NAME" default:"Aria"`

	// Concurrency gate for the completion endpoint.
	LLMConcurrency    int           `envconfig:"LLM_CONCURRENCY" default:"1"`
	LLMAcquireTimeout time.Duration `envconfig:"LLM_ACQUIRE_TIMEOUT" default:"30s"`
	LLMConnectTimeout time.Duration `envconfig:"LLM_CONNECT_TIMEOUT" default:"10s"`
	LLMReadTimeout    time.Duration `envconfig:"LLM_READ_TIMEOUT" default:"120s"`

	MaxBodyBytes int64    `envconfig:"MAX_BODY_BYTES" default:"26214400"`
	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"*"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FARO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

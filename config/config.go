package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	PGHost   string `env:"PG_HOST" envDefault:"localhost"`
	PGPort   int    `env:"PG_PORT" envDefault:"5432"`
	PGUser   string `env:"PG_USER" envDefault:"postgres"`
	PGPass   string `env:"PG_PASS" envDefault:"postgres"`
	PGDBName string `env:"PG_DB_NAME" envDefault:"clubassist"`

	EmbeddingURL   string `env:"OLLAMA_EMBEDDING_URL" envDefault:"http://localhost:11434/api/embeddings"`
	EmbeddingModel string `env:"OLLAMA_EMBEDDING_MODEL" envDefault:"nomic-embed-text"`

	LLMURL     string        `env:"LLM_URL" envDefault:"http://localhost:11434"`
	LLMKey     string        `env:"LLM_API_KEY" envDefault:""`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"llama3.1"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	FormsAPIURL  string `env:"FORMS_API_URL" envDefault:"http://localhost:8081"`
	ConverterURL string `env:"CONVERTER_URL" envDefault:"http://localhost:5001/v1/convert/file"`

	MatchCount     int     `env:"MATCH_COUNT" envDefault:"5"`
	MatchThreshold float64 `env:"MATCH_THRESHOLD" envDefault:"0.3"`
	ContextTokens  int     `env:"CONTEXT_TOKENS" envDefault:"4000"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDBName)
}

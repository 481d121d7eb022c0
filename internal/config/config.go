// Package config reads process configuration from the environment. Only
// cmd imports it; library packages receive their own config structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/gomithril/embedd/embedding"
)

type Config struct {
	// Server
	Port              int           `env:"PORT" envDefault:"8000" validate:"min=1,max=65535"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" envDefault:"1048576" validate:"min=1"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`

	// Model
	ModelName      string `env:"MODEL_NAME" envDefault:"embeddinggemma-300m"`
	ModelPath      string `env:"MODEL_PATH" envDefault:"models/model.onnx" validate:"required"`
	TokenizerPath  string `env:"TOKENIZER_PATH" envDefault:"models/tokenizer.model" validate:"required"`
	OnnxRuntime    string `env:"ONNX_RUNTIME"`
	MaxSeqLen      int64  `env:"MAX_SEQ_LEN" envDefault:"512" validate:"min=1"`
	EmbedDim       int64  `env:"EMBED_DIM" envDefault:"768" validate:"min=1"`
	EmbedPrefix    string `env:"EMBED_PREFIX"`
	MaxConcurrency int64  `env:"MAX_CONCURRENCY" envDefault:"4" validate:"min=1"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Embedding builds the embedding service configuration.
func (c Config) Embedding() *embedding.Config {
	cfg := embedding.DefaultConfig()
	cfg.ModelName = c.ModelName
	cfg.ModelPath = c.ModelPath
	cfg.TokenizerPath = c.TokenizerPath
	cfg.SharedLibraryPath = c.OnnxRuntime
	cfg.Prefix = c.EmbedPrefix
	cfg.MaxSeqLen = c.MaxSeqLen
	cfg.EmbedDim = c.EmbedDim
	cfg.MaxConcurrency = c.MaxConcurrency
	return cfg
}

package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8000},
		{"MaxBodyBytes", cfg.MaxBodyBytes, int64(1 << 20)},
		{"ReadHeaderTimeout", cfg.ReadHeaderTimeout, 10 * time.Second},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "console"},
		{"ModelName", cfg.ModelName, "embeddinggemma-300m"},
		{"ModelPath", cfg.ModelPath, "models/model.onnx"},
		{"MaxSeqLen", cfg.MaxSeqLen, int64(512)},
		{"EmbedDim", cfg.EmbedDim, int64(768)},
		{"MaxConcurrency", cfg.MaxConcurrency, int64(4)},
		{"EmbedPrefix", cfg.EmbedPrefix, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestParseFromEnv(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"PORT":            "9090",
		"LOG_LEVEL":       "debug",
		"LOG_FORMAT":      "json",
		"ONNX_RUNTIME":    "/usr/lib/libonnxruntime.so",
		"EMBED_DIM":       "384",
		"EMBED_PREFIX":    "query: ",
		"MAX_CONCURRENCY": "1",
	}})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	emb := cfg.Embedding()
	assert.Equal(t, "/usr/lib/libonnxruntime.so", emb.SharedLibraryPath)
	assert.Equal(t, int64(384), emb.EmbedDim)
	assert.Equal(t, "query: ", emb.Prefix)
	assert.Equal(t, int64(1), emb.MaxConcurrency)
	assert.Equal(t, "sentence_embedding", emb.OutputName)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"port not a number", map[string]string{"PORT": "http"}},
		{"unknown log level", map[string]string{"LOG_LEVEL": "trace"}},
		{"zero concurrency", map[string]string{"MAX_CONCURRENCY": "0"}},
		{"bad duration", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(env.Options{Environment: tt.env})
			assert.Error(t, err)
		})
	}
}

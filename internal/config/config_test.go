package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverJSON, cfg.StoreDriver)
	assert.Equal(t, "db.json", cfg.StorePath)
	assert.Equal(t, "gpt-4o-mini", cfg.DefaultModel)
	assert.Equal(t, "127.0.0.1:8501", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.ModelsCacheTTL)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("DATABASE_URL", "postgres://localhost/gptdesk")
	t.Setenv("DEFAULT_MODEL", "gpt-4")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("BOT_RATE_LIMIT", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "gpt-4", cfg.DefaultModel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 6, cfg.BotRateLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"postgres without url", Config{StoreDriver: "postgres", DefaultModel: "gpt-4"}, "DATABASE_URL is required for the postgres store"},
		{"json without path", Config{StoreDriver: "json", DefaultModel: "gpt-4"}, "STORE_PATH is required for the json store"},
		{"unknown driver", Config{StoreDriver: "sqlite", DefaultModel: "gpt-4"}, `unknown STORE_DRIVER "sqlite" (supported: json, postgres)`},
		{"unknown model", Config{StoreDriver: "json", StorePath: "db.json", DefaultModel: "gpt-17"}, `DEFAULT_MODEL "gpt-17" is not a supported model`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.cfg.Validate(), tt.want)
		})
	}
}

func TestModelRegistry(t *testing.T) {
	m, ok := LookupModel("gpt-4")
	require.True(t, ok)
	assert.Equal(t, 8192, m.ContextLength)

	assert.Equal(t, DefaultModelLimit, ModelLimit("my-fine-tune"))
	assert.Equal(t, 3096, UsableTokens("my-fine-tune"))
	assert.False(t, IsKnownModel("my-fine-tune"))
}

func TestSupportedExtensionsSorted(t *testing.T) {
	exts := SupportedExtensions()
	require.Len(t, exts, len(SupportedFiles))
	assert.IsIncreasing(t, exts)
	assert.Contains(t, SupportedFilesHelp(), "docx (Word documents)")
}

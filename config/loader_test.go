package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.AnswerModel)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, 0.75, cfg.Retrieval.ScoreThreshold)
	assert.Equal(t, 60, cfg.Retrieval.RRFConstant)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
llm:
  answer_model: gpt-4o-mini
retrieval:
  top_k: 5
session:
  backend: sqlite
  ttl: 1h
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.AnswerModel)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, SessionBackendSQLite, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.75, cfg.Retrieval.ScoreThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEFACRAG_LLM_API_KEY", "sk-test")
	t.Setenv("NEFACRAG_RETRIEVAL_TOP_K", "7")
	t.Setenv("NEFACRAG_SESSION_BACKEND", "redis")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retrieval.TopK = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retrieval.ScoreThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retrieval.LambdaMult = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Session.Backend = "cassandra"
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

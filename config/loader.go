package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "NEFACRAG"

// Load reads configuration from the given YAML file (if path is non-empty),
// layered over DefaultConfig, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior deep inside the retrieval path.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("retrieval.score_threshold must be in [0,1], got %f", c.Retrieval.ScoreThreshold)
	}
	if c.Retrieval.LambdaMult < 0 || c.Retrieval.LambdaMult > 1 {
		return fmt.Errorf("retrieval.lambda_mult must be in [0,1], got %f", c.Retrieval.LambdaMult)
	}
	if c.Retrieval.RRFConstant <= 0 {
		return fmt.Errorf("retrieval.rrf_constant must be positive, got %d", c.Retrieval.RRFConstant)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendSQLite:
	default:
		return fmt.Errorf("session.backend must be memory, redis or sqlite, got %q", c.Session.Backend)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envString(&cfg.LLM.APIKey, "LLM_API_KEY")
	envString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	envString(&cfg.LLM.AnswerModel, "LLM_ANSWER_MODEL")
	envString(&cfg.LLM.PromptModel, "LLM_PROMPT_MODEL")
	envString(&cfg.LLM.IntentModel, "LLM_INTENT_MODEL")
	envDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")

	envString(&cfg.Embedding.APIKey, "EMBEDDING_API_KEY")
	envString(&cfg.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	envString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	envInt(&cfg.Embedding.Dimensions, "EMBEDDING_DIMENSIONS")

	envInt(&cfg.Retrieval.TopK, "RETRIEVAL_TOP_K")
	envFloat(&cfg.Retrieval.ScoreThreshold, "RETRIEVAL_SCORE_THRESHOLD")
	envFloat(&cfg.Retrieval.LambdaMult, "RETRIEVAL_LAMBDA_MULT")
	envInt(&cfg.Retrieval.MaxHistoryTokens, "RETRIEVAL_MAX_HISTORY_TOKENS")

	var backend string
	envString(&backend, "SESSION_BACKEND")
	if backend != "" {
		cfg.Session.Backend = SessionBackend(backend)
	}
	envDuration(&cfg.Session.TTL, "SESSION_TTL")
	envString(&cfg.Session.SQLitePath, "SESSION_SQLITE_PATH")

	envString(&cfg.Redis.Addr, "REDIS_ADDR")
	envString(&cfg.Redis.Password, "REDIS_PASSWORD")
	envInt(&cfg.Redis.DB, "REDIS_DB")

	envString(&cfg.Log.Level, "LOG_LEVEL")
	envString(&cfg.Log.Format, "LOG_FORMAT")

	envBool(&cfg.Telemetry.Enabled, "TELEMETRY_ENABLED")
	envString(&cfg.Telemetry.ServiceName, "TELEMETRY_SERVICE_NAME")
	envString(&cfg.Telemetry.OTLPEndpoint, "TELEMETRY_OTLP_ENDPOINT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

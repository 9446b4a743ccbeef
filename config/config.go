// Package config provides unified configuration loading for nefacrag,
// supporting YAML files with environment variable overrides.
//
// Precedence: defaults → YAML file → environment variables.
package config

import (
	"time"
)

// Config is the complete nefacrag configuration.
type Config struct {
	// LLM holds chat-model settings.
	LLM LLMConfig `yaml:"llm"`

	// Embedding holds embedding-model settings.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Retrieval holds vector search parameters.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Session holds conversation history storage settings.
	Session SessionConfig `yaml:"session"`

	// Redis holds connection settings for the Redis session backend.
	Redis RedisConfig `yaml:"redis"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`

	// Telemetry holds tracing settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LLMConfig configures the chat model provider. Separate model names are
// kept per role so that the cheap prompt model handles query translation
// while a stronger model generates the final answer.
type LLMConfig struct {
	// APIKey authenticates against the provider API.
	APIKey string `yaml:"api_key"`
	// BaseURL is the provider endpoint, e.g. "https://api.openai.com".
	BaseURL string `yaml:"base_url"`
	// AnswerModel generates user-facing answers.
	AnswerModel string `yaml:"answer_model"`
	// PromptModel runs query translation (reformulation, sub-queries, HyDE).
	PromptModel string `yaml:"prompt_model"`
	// IntentModel runs intent and strategy classification.
	IntentModel string `yaml:"intent_model"`
	// Temperature for generation calls. Translation calls always run at 0.
	Temperature float32 `yaml:"temperature"`
	// Timeout bounds a single HTTP request to the provider.
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerSecond caps the client-side request rate. 0 disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Burst is the rate limiter burst size.
	Burst int `yaml:"burst"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	MaxBatch   int           `yaml:"max_batch"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RetrievalConfig holds the fixed vector search parameters. These are not
// user-tunable per call on the normal query path.
type RetrievalConfig struct {
	// TopK is the number of nearest neighbors fetched per retrieval call.
	TopK int `yaml:"top_k"`
	// LambdaMult balances similarity and diversity in ranked results.
	LambdaMult float64 `yaml:"lambda_mult"`
	// ScoreThreshold drops results below this cosine similarity.
	ScoreThreshold float64 `yaml:"score_threshold"`
	// RRFConstant is the k constant in the reciprocal rank fusion formula.
	RRFConstant int `yaml:"rrf_constant"`
	// MaxHistoryTokens bounds the conversation history fed to the
	// contextualizer, counted with the answer model's tokenizer.
	MaxHistoryTokens int `yaml:"max_history_tokens"`
}

// SessionBackend selects the session store implementation.
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
	SessionBackendSQLite SessionBackend = "sqlite"
)

// SessionConfig configures conversation history storage.
type SessionConfig struct {
	Backend SessionBackend `yaml:"backend"`
	// TTL evicts idle sessions. 0 keeps them indefinitely.
	TTL time.Duration `yaml:"ttl"`
	// MaxSessions caps the in-memory backend. 0 means unlimited.
	MaxSessions int `yaml:"max_sessions"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// RedisConfig configures the Redis client.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

package config

import "time"

// DefaultConfig returns the baseline configuration. Retrieval constants
// follow the production values: 10 nearest neighbors, 0.25 diversity
// multiplier, 0.75 similarity threshold, RRF k=60.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:           "https://api.openai.com",
			AnswerModel:       "gpt-4o",
			PromptModel:       "gpt-3.5-turbo",
			IntentModel:       "gpt-3.5-turbo",
			Temperature:       0.2,
			Timeout:           60 * time.Second,
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Embedding: EmbeddingConfig{
			BaseURL:    "https://api.openai.com",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			MaxBatch:   100,
			Timeout:    30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK:             10,
			LambdaMult:       0.25,
			ScoreThreshold:   0.75,
			RRFConstant:      60,
			MaxHistoryTokens: 2048,
		},
		Session: SessionConfig{
			Backend:     SessionBackendMemory,
			TTL:         24 * time.Hour,
			MaxSessions: 10000,
			SQLitePath:  "nefacrag.db",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "nefacrag",
			OTLPEndpoint: "localhost:4317",
		},
	}
}

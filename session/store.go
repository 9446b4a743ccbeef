// Package session persists per-session conversation history used to
// contextualize follow-up questions.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nefac-ai/nefacrag/config"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a session has no recorded history.
var ErrNotFound = errors.New("session not found")

// Store records conversation turns keyed by session ID.
//
// Implementations must tolerate concurrent calls for the same session:
// Append for a given session ID is atomic with respect to other Appends.
type Store interface {
	// History returns all turns for the session in insertion order.
	// A session with no history returns an empty slice, not ErrNotFound;
	// ErrNotFound is reserved for backends that can distinguish a
	// deleted session from an empty one.
	History(ctx context.Context, sessionID string) ([]types.Turn, error)

	// Append records one completed turn for the session.
	Append(ctx context.Context, sessionID string, turn types.Turn) error

	// Delete removes the session and its history.
	Delete(ctx context.Context, sessionID string) error

	// Close releases backend resources.
	Close() error
}

// New builds a Store for the configured backend.
func New(cfg config.SessionConfig, redisCfg config.RedisConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return NewMemoryStore(MemoryStoreConfig{
			TTL:         cfg.TTL,
			MaxSessions: cfg.MaxSessions,
		}, logger), nil
	case config.SessionBackendRedis:
		return NewRedisStore(redisCfg, cfg.TTL, logger)
	case config.SessionBackendSQLite:
		return NewSQLStore(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

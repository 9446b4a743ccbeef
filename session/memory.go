package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// MemoryStoreConfig configures the in-memory store.
type MemoryStoreConfig struct {
	// TTL evicts sessions idle for longer than this. 0 keeps them forever.
	TTL time.Duration

	// MaxSessions is a global cap on stored sessions. 0 means unlimited.
	MaxSessions int

	// Now is used in tests. Defaults to time.Now.
	Now func() time.Time
}

type memorySession struct {
	turns     []types.Turn
	createdAt time.Time
	touchedAt time.Time
}

// MemoryStore keeps session history in process memory with TTL eviction.
// It is meant for local development, tests, and single-instance deployments.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession

	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	logger      *zap.Logger
}

func NewMemoryStore(config MemoryStoreConfig, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		sessions:    make(map[string]*memorySession),
		ttl:         config.TTL,
		maxSessions: config.MaxSessions,
		now:         now,
		logger:      logger.With(zap.String("component", "session_store_memory")),
	}
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]types.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanupExpiredLocked(now)

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []types.Turn{}, nil
	}
	sess.touchedAt = now

	out := make([]types.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn types.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{createdAt: now}
		s.sessions[sessionID] = sess
	}
	sess.turns = append(sess.turns, turn)
	sess.touchedAt = now

	s.cleanupExpiredLocked(now)
	s.evictIfNeededLocked()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) cleanupExpiredLocked(now time.Time) {
	if s.ttl <= 0 || len(s.sessions) == 0 {
		return
	}
	for id, sess := range s.sessions {
		if !now.Before(sess.touchedAt.Add(s.ttl)) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) evictIfNeededLocked() {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return
	}

	type idTime struct {
		id      string
		touched time.Time
	}
	all := make([]idTime, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, idTime{id: id, touched: sess.touchedAt})
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].touched.Before(all[j].touched)
	})

	toEvict := len(s.sessions) - s.maxSessions
	for i := 0; i < toEvict && i < len(all); i++ {
		delete(s.sessions, all[i].id)
	}
	s.logger.Debug("evicted idle sessions", zap.Int("evicted", toEvict))
}

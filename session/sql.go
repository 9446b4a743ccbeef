package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// turnRecord is the persisted form of a conversation turn.
type turnRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index;size:64;not null"`
	Question  string `gorm:"type:text;not null"`
	Answer    string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (turnRecord) TableName() string { return "session_turns" }

// SQLStore keeps session history in SQLite via GORM. Suited to
// single-node deployments that need history to survive restarts.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSQLStore(path string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = "nefacrag.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&turnRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session schema: %w", err)
	}

	return &SQLStore{
		db:     db,
		logger: logger.With(zap.String("component", "session_store_sqlite")),
	}, nil
}

func (s *SQLStore) History(ctx context.Context, sessionID string) ([]types.Turn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	var records []turnRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []types.Turn{}, nil
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	turns := make([]types.Turn, 0, len(records))
	for _, rec := range records {
		turns = append(turns, types.Turn{
			Question:  rec.Question,
			Answer:    rec.Answer,
			CreatedAt: rec.CreatedAt,
		})
	}
	return turns, nil
}

func (s *SQLStore) Append(ctx context.Context, sessionID string, turn types.Turn) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	rec := turnRecord{
		SessionID: sessionID,
		Question:  turn.Question,
		Answer:    turn.Answer,
		CreatedAt: turn.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&turnRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

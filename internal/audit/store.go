// Package audit records every screening decision returned to a client.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/internal/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PredictionLog is one persisted decision.
type PredictionLog struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	InputText   string    `json:"input_text" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Probability float64   `json:"probability" gorm:"not null"`
	IsMatch     bool      `json:"is_match" gorm:"not null;index"`
	Threshold   float64   `json:"threshold" gorm:"not null"`
	SourceRoute string    `json:"source_route" gorm:"not null;index"`
	RequestID   string    `json:"request_id,omitempty" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index"`
}

func (PredictionLog) TableName() string {
	return "prediction_log"
}

// Store writes decisions to the prediction_log table.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ screening.AuditLogger = (*Store)(nil)

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&PredictionLog{})
}

// Record inserts one row. The write is synchronous so a returned nil means
// the decision is durable.
func (s *Store) Record(ctx context.Context, rec screening.AuditRecord) error {
	row := PredictionLog{
		ID:          uuid.New(),
		InputText:   rec.InputName,
		Name:        rec.MatchedName,
		Probability: rec.Probability,
		IsMatch:     rec.IsMatch,
		Threshold:   rec.Threshold,
		SourceRoute: rec.SourceOperation,
		RequestID:   RequestID(ctx),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert prediction_log: %w", database.WrapError(err))
	}
	return nil
}

// Recent returns the latest rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []PredictionLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, database.WrapError(err)
	}
	return rows, nil
}

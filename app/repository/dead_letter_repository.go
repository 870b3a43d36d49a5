package repository

import (
	"context"

	"github.com/fintech-masoori/masoori/app/models"
	"gorm.io/gorm"
)

// deadLetterRepository implements the DeadLetterRepository interface
type deadLetterRepository struct {
	db *gorm.DB
}

// NewDeadLetterRepository creates a new dead-letter repository instance
func NewDeadLetterRepository(db *gorm.DB) DeadLetterRepository {
	return &deadLetterRepository{db: db}
}

// Create persists a dead-lettered message for operator inspection
func (r *deadLetterRepository) Create(ctx context.Context, msg *models.DeadLetterMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// List returns dead-lettered messages, newest first
func (r *deadLetterRepository) List(ctx context.Context, offset, limit int) ([]models.DeadLetterMessage, error) {
	var msgs []models.DeadLetterMessage
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&msgs).Error
	return msgs, err
}

// CountByReason returns how many messages were dead-lettered for a reason
func (r *deadLetterRepository) CountByReason(ctx context.Context, reason string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DeadLetterMessage{}).Where("reason = ?", reason).Count(&count).Error
	return count, err
}

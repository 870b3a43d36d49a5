package repository

import (
	"context"

	"github.com/fintech-masoori/masoori/app/models"
	"gorm.io/gorm"
)

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create persists a notification row
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetUnreadByUserID returns a user's unread notifications, newest first
func (r *notificationRepository) GetUnreadByUserID(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

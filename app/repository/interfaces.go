package repository

import (
	"context"

	"github.com/fintech-masoori/masoori/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// CardRepository defines the interface for card-related database operations.
// CreateWithChallenges is the pipeline's write path and must be atomic: the
// card row and all its challenge children commit together or not at all.
type CardRepository interface {
	CreateWithChallenges(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id uint) (*models.Card, error)
	GetByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Card, error)
	GetByUserIDAndType(ctx context.Context, userID uint, cardType string, offset, limit int) ([]models.Card, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}

// AnalyticsRepository defines the interface for monthly analytics persistence.
// CreateSnapshotWithRecommendation writes the snapshot and the recommended
// credit card in one transaction.
type AnalyticsRepository interface {
	CreateSnapshotWithRecommendation(ctx context.Context, snapshot *models.AnalyticsSnapshot, recommendation *models.RecommendedCreditCard) error
	GetSnapshot(ctx context.Context, userID uint, month string) (*models.AnalyticsSnapshot, error)
	GetRecommendation(ctx context.Context, userID uint, month string) (*models.RecommendedCreditCard, error)
}

// DeadLetterRepository defines the interface for the dead-letter store
type DeadLetterRepository interface {
	Create(ctx context.Context, msg *models.DeadLetterMessage) error
	List(ctx context.Context, offset, limit int) ([]models.DeadLetterMessage, error)
	CountByReason(ctx context.Context, reason string) (int64, error)
}

// NotificationRepository defines the interface for persisted notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetUnreadByUserID(ctx context.Context, userID uint) ([]models.Notification, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Card         CardRepository
	Analytics    AnalyticsRepository
	DeadLetter   DeadLetterRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Card:         NewCardRepository(db),
		Analytics:    NewAnalyticsRepository(db),
		DeadLetter:   NewDeadLetterRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

package repository

import (
	"context"

	"github.com/fintech-masoori/masoori/app/models"
	"gorm.io/gorm"
)

// cardRepository implements the CardRepository interface
type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository instance
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// CreateWithChallenges creates a card together with its challenge children in
// a single transaction. GORM persists the Challenges association with the
// parent, so the card's unique index guards the whole write: a duplicate key
// aborts the transaction before any child row lands.
func (r *cardRepository) CreateWithChallenges(ctx context.Context, card *models.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(card).Error
	})
}

// GetByID retrieves a card with its challenge children
func (r *cardRepository) GetByID(ctx context.Context, id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).Preload("Challenges").First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByUserID retrieves all cards owned by a user, newest first
func (r *cardRepository) GetByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).Preload("Challenges").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&cards).Error
	return cards, err
}

// GetByUserIDAndType retrieves a user's cards of one type, newest first
func (r *cardRepository) GetByUserIDAndType(ctx context.Context, userID uint, cardType string, offset, limit int) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).Preload("Challenges").
		Where("user_id = ? AND card_type = ?", userID, cardType).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&cards).Error
	return cards, err
}

// CountByUserID returns the number of cards owned by a user
func (r *cardRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Card{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

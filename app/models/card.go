package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CARD_TYPE_BASIC   = "BASIC"
	CARD_TYPE_SPECIAL = "SPECIAL"
)

// Card is a user-owned card. Challenge cards carry CardType SPECIAL and own
// their Challenge children; basic and real-time tarot cards have none.
type Card struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index;uniqueIndex:ux_card_user_name_dedup,priority:1" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID" json:"-"`
	CardType  string `gorm:"type:varchar(20)" json:"card_type" validate:"oneof=BASIC SPECIAL"`
	Name      string `gorm:"type:varchar(100);uniqueIndex:ux_card_user_name_dedup,priority:2" json:"name" validate:"required,max=100"`
	ImagePath string `gorm:"type:varchar(255)" json:"image_path"`
	// DedupKey makes broker redelivery of the same logical event a no-op:
	// challenge cards derive it from the challenge window start, real-time
	// cards carry an explicit event id from the producer.
	DedupKey   string         `gorm:"type:varchar(64);uniqueIndex:ux_card_user_name_dedup,priority:3" json:"-"`
	Challenges []Challenge    `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"challenges,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Challenge is a child row of a SPECIAL card describing one achievement goal.
type Challenge struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	CardID               uint      `gorm:"index" json:"card_id"`
	IsSuccess            bool      `gorm:"default:false" json:"is_success"`
	Name                 string    `gorm:"type:varchar(100)" json:"name" validate:"required,max=100"`
	AchievementCondition string    `gorm:"type:varchar(25)" json:"achievement_condition" validate:"required,max=25"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsChallengeCard reports whether the card owns challenge children.
func (c *Card) IsChallengeCard() bool {
	return c.CardType == CARD_TYPE_SPECIAL
}

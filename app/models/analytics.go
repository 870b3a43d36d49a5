package models

import (
	"time"

	"gorm.io/gorm"
)

// AnalyticsSnapshot is the monthly spending aggregate computed by the external
// analytics pipeline. Immutable once created; redelivery dedups on (user, month).
type AnalyticsSnapshot struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"index;uniqueIndex:ux_snapshot_user_month,priority:1" json:"user_id"`
	User           User           `gorm:"foreignKey:UserID" json:"-"`
	Month          string         `gorm:"type:varchar(7);uniqueIndex:ux_snapshot_user_month,priority:2" json:"month" validate:"required,len=7"`
	TotalSpending  int64          `json:"total_spending"`
	CategoryTotals string         `gorm:"type:text" json:"category_totals"` // JSON map category -> amount
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// RecommendedCreditCard records the credit card the analytics pipeline picked
// for a user's monthly spending profile.
type RecommendedCreditCard struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;uniqueIndex:ux_recommend_user_month,priority:1" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Month        string         `gorm:"type:varchar(7);uniqueIndex:ux_recommend_user_month,priority:2" json:"month"`
	CreditCardID uint           `json:"credit_card_id"`
	CardName     string         `gorm:"type:varchar(100)" json:"card_name"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

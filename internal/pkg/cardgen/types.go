package cardgen

import (
	"time"

	"github.com/fintech-masoori/masoori/app/models"
)

// GeneratedChallengeCard is the payload delivered on the challenge result
// queue once the external pipeline has finished composing a challenge card.
type GeneratedChallengeCard struct {
	UserID     uint            `json:"userId" validate:"required,gt=0"`
	CardName   string          `json:"cardName" validate:"required,max=100"`
	ImagePath  string          `json:"imagePath" validate:"max=255"`
	Challenges []ChallengeGoal `json:"challenges" validate:"required,min=1,dive"`
}

// ChallengeGoal is one achievement goal inside a challenge card.
type ChallengeGoal struct {
	Name                 string    `json:"name" validate:"required,max=100"`
	AchievementCondition string    `json:"achievementCondition" validate:"required,max=25"`
	StartTime            time.Time `json:"startTime" validate:"required"`
	EndTime              time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

// MonthlySpendingAndCreditcard is the payload delivered on the analytics
// result queue: one month's spending aggregate plus a recommended card.
type MonthlySpendingAndCreditcard struct {
	UserID         uint             `json:"userId" validate:"required,gt=0"`
	Month          string           `json:"month" validate:"required,len=7"` // "2006-01"
	TotalSpending  int64            `json:"totalSpending" validate:"gte=0"`
	CategoryTotals map[string]int64 `json:"categoryTotals"`
	CreditCardID   uint             `json:"creditCardId" validate:"required,gt=0"`
	CreditCardName string           `json:"creditCardName" validate:"max=100"`
}

// RealTimeCardResult is the payload delivered on the real-time queue after an
// on-demand tarot card has been generated. EventID is the producer's dedup
// token; older producers omit it, in which case the applier derives one.
type RealTimeCardResult struct {
	EventID     string `json:"eventId" validate:"omitempty,max=64"`
	UserID      uint   `json:"userId" validate:"required,gt=0"`
	CardName    string `json:"cardName" validate:"required,max=100"`
	ImagePath   string `json:"imagePath" validate:"max=255"`
	Description string `json:"description"`
}

// Result is what an apply operation hands back: the resolved owner for the
// notification phase, the persisted row, and whether the event turned out to
// be a redelivery.
type Result struct {
	User        *models.User
	ReferenceID uint
	Duplicate   bool
}

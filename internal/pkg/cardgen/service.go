package cardgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintech-masoori/masoori/app/models"
	"github.com/fintech-masoori/masoori/app/repository"
)

// ErrUnknownUser marks an event whose userId does not resolve to a user row.
// Non-retryable: the user will never appear, the message must be dead-lettered.
var ErrUnknownUser = errors.New("referenced user does not exist")

const (
	NotificationChallengeCard = "ChallengeCard is generated"
	NotificationAnalytics     = "Monthly spending analytics is ready"
	NotificationRealTimeCard  = "Tarot card is generated"
)

// Service materializes inbound card-generation events into the database.
// Each apply operation resolves the owning user, commits its rows in a single
// transaction, and reports redeliveries as duplicates instead of errors.
type Service struct {
	users         repository.UserRepository
	cards         repository.CardRepository
	analytics     repository.AnalyticsRepository
	notifications repository.NotificationRepository
}

// NewService creates an applier service from injected repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{
		users:         repos.User,
		cards:         repos.Card,
		analytics:     repos.Analytics,
		notifications: repos.Notification,
	}
}

// NewServiceFromDB creates an applier service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewRepositories(db))
}

// ApplyChallengeCard persists a challenge card with its challenge children.
// Redelivery dedups on the card's (user, name, window start) unique index.
func (s *Service) ApplyChallengeCard(ctx context.Context, event *GeneratedChallengeCard) (*Result, error) {
	user, err := s.resolveUser(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		UserID:    user.ID,
		CardType:  models.CARD_TYPE_SPECIAL,
		Name:      event.CardName,
		ImagePath: event.ImagePath,
		DedupKey:  strconv.FormatInt(event.Challenges[0].StartTime.UTC().Unix(), 10),
	}
	for _, goal := range event.Challenges {
		card.Challenges = append(card.Challenges, models.Challenge{
			Name:                 goal.Name,
			AchievementCondition: goal.AchievementCondition,
			StartTime:            goal.StartTime,
			EndTime:              goal.EndTime,
		})
	}

	if err := s.cards.CreateWithChallenges(ctx, card); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Infof("[CardGen] Challenge card %q for user %d already persisted, skipping", event.CardName, user.ID)
			return &Result{User: user, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to persist challenge card: %w", err)
	}

	s.recordNotification(ctx, user.ID, "challenge_card", NotificationChallengeCard, card.ID)
	return &Result{User: user, ReferenceID: card.ID}, nil
}

// ApplyMonthlySpendingAndCreditcard persists the analytics snapshot and the
// recommended credit card. Redelivery dedups on (user, month).
func (s *Service) ApplyMonthlySpendingAndCreditcard(ctx context.Context, event *MonthlySpendingAndCreditcard) (*Result, error) {
	user, err := s.resolveUser(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	totals, err := json.Marshal(event.CategoryTotals)
	if err != nil {
		return nil, fmt.Errorf("failed to encode category totals: %w", err)
	}

	snapshot := &models.AnalyticsSnapshot{
		UserID:         user.ID,
		Month:          event.Month,
		TotalSpending:  event.TotalSpending,
		CategoryTotals: string(totals),
	}
	recommendation := &models.RecommendedCreditCard{
		UserID:       user.ID,
		Month:        event.Month,
		CreditCardID: event.CreditCardID,
		CardName:     event.CreditCardName,
	}

	if err := s.analytics.CreateSnapshotWithRecommendation(ctx, snapshot, recommendation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Infof("[CardGen] Analytics snapshot %s for user %d already persisted, skipping", event.Month, user.ID)
			return &Result{User: user, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to persist analytics snapshot: %w", err)
	}

	s.recordNotification(ctx, user.ID, "analytics", NotificationAnalytics, snapshot.ID)
	return &Result{User: user, ReferenceID: snapshot.ID}, nil
}

// ApplyRealTimeCard persists an on-demand generated card. Redelivery dedups on
// the producer's event id, or a derived one when the producer sent none.
func (s *Service) ApplyRealTimeCard(ctx context.Context, event *RealTimeCardResult) (*Result, error) {
	user, err := s.resolveUser(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		UserID:    user.ID,
		CardType:  models.CARD_TYPE_BASIC,
		Name:      event.CardName,
		ImagePath: event.ImagePath,
		DedupKey:  realTimeDedupKey(event),
	}

	if err := s.cards.CreateWithChallenges(ctx, card); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Infof("[CardGen] Real-time card %q for user %d already persisted, skipping", event.CardName, user.ID)
			return &Result{User: user, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to persist real-time card: %w", err)
	}

	s.recordNotification(ctx, user.ID, "realtime_card", NotificationRealTimeCard, card.ID)
	return &Result{User: user, ReferenceID: card.ID}, nil
}

// resolveUser loads the owning user, mapping a missing row to ErrUnknownUser.
func (s *Service) resolveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrUnknownUser)
		}
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	return user, nil
}

// recordNotification writes the catch-up notification row. The card is already
// committed at this point, so a failure here is logged, never propagated.
func (s *Service) recordNotification(ctx context.Context, userID uint, notificationType, content string, referenceID uint) {
	notification := &models.Notification{
		UserID:      userID,
		Type:        notificationType,
		Content:     content,
		ReferenceID: referenceID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		log.Warnf("[CardGen] Failed to record notification for user %d: %v", userID, err)
	}
}

// realTimeDedupKey returns the producer's event id, falling back to a
// name-based UUID over (user, card name) for producers that omit it.
func realTimeDedupKey(event *RealTimeCardResult) string {
	if event.EventID != "" {
		return event.EventID
	}
	seed := fmt.Sprintf("realtime:%d:%s", event.UserID, event.CardName)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

package mq

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fintech-masoori/masoori/internal/pkg/cardgen"
	"github.com/fintech-masoori/masoori/internal/pkg/notify"
)

// Applier is the persistence phase of the pipeline, implemented by
// cardgen.Service. Each call commits before it returns.
type Applier interface {
	ApplyChallengeCard(ctx context.Context, event *cardgen.GeneratedChallengeCard) (*cardgen.Result, error)
	ApplyMonthlySpendingAndCreditcard(ctx context.Context, event *cardgen.MonthlySpendingAndCreditcard) (*cardgen.Result, error)
	ApplyRealTimeCard(ctx context.Context, event *cardgen.RealTimeCardResult) (*cardgen.Result, error)
}

// Notifier is the live-push phase, implemented by notify.Dispatcher.
type Notifier interface {
	Notify(identity string, message string) notify.DispatchOutcome
}

// NewPipelineRouter builds the static queue table for the card-generation
// pipeline. Every handler follows the same two-phase contract: persistence
// must commit before the push is attempted, and a push failure never unwinds
// or retries the committed persistence.
func NewPipelineRouter(applier Applier, notifier Notifier, realTimeQueue string) *Router {
	if realTimeQueue == "" {
		realTimeQueue = DefaultRealTimeQueue
	}

	router := NewRouter()
	router.Register(ChallengeQueue, func(ctx context.Context, body []byte) error {
		event, err := DecodeChallengeCard(ChallengeQueue, body)
		if err != nil {
			return err
		}
		result, err := applier.ApplyChallengeCard(ctx, event)
		if err != nil {
			return err
		}
		dispatch(notifier, result, cardgen.NotificationChallengeCard)
		return nil
	})
	router.Register(AnalyticsQueue, func(ctx context.Context, body []byte) error {
		event, err := DecodeMonthlySpending(AnalyticsQueue, body)
		if err != nil {
			return err
		}
		result, err := applier.ApplyMonthlySpendingAndCreditcard(ctx, event)
		if err != nil {
			return err
		}
		dispatch(notifier, result, cardgen.NotificationAnalytics)
		return nil
	})
	router.Register(realTimeQueue, func(ctx context.Context, body []byte) error {
		event, err := DecodeRealTimeCard(realTimeQueue, body)
		if err != nil {
			return err
		}
		result, err := applier.ApplyRealTimeCard(ctx, event)
		if err != nil {
			return err
		}
		dispatch(notifier, result, cardgen.NotificationRealTimeCard)
		return nil
	})

	return router
}

// dispatch runs the best-effort push phase. Duplicates are skipped: the first
// delivery already pushed, and the persisted state did not change.
func dispatch(notifier Notifier, result *cardgen.Result, message string) {
	if result.Duplicate {
		return
	}
	outcome := notifier.Notify(result.User.Email, message)
	switch outcome {
	case notify.NoSubscriber:
		log.Debugf("[MQ] User %s has no active channel, notification skipped", result.User.Email)
	case notify.Failed:
		log.Warnf("[MQ] All channels for user %s failed, notification lost", result.User.Email)
	}
}

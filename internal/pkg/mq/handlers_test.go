package mq

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintech-masoori/masoori/app/models"
	"github.com/fintech-masoori/masoori/internal/pkg/cardgen"
	"github.com/fintech-masoori/masoori/internal/pkg/notify"
)

// fakeApplier scripts the persistence phase
type fakeApplier struct {
	result *cardgen.Result
	err    error
	calls  int
}

func (f *fakeApplier) ApplyChallengeCard(ctx context.Context, event *cardgen.GeneratedChallengeCard) (*cardgen.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeApplier) ApplyMonthlySpendingAndCreditcard(ctx context.Context, event *cardgen.MonthlySpendingAndCreditcard) (*cardgen.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeApplier) ApplyRealTimeCard(ctx context.Context, event *cardgen.RealTimeCardResult) (*cardgen.Result, error) {
	f.calls++
	return f.result, f.err
}

// fakeNotifier records dispatches
type fakeNotifier struct {
	outcome notify.DispatchOutcome
	calls   []string
}

func (f *fakeNotifier) Notify(identity string, message string) notify.DispatchOutcome {
	f.calls = append(f.calls, identity+"|"+message)
	return f.outcome
}

const challengeBody = `{
	"userId": 42,
	"cardName": "7-day saver",
	"challenges": [{
		"name": "7-day saver",
		"achievementCondition": "save $50",
		"startTime": "2023-11-06T00:00:00Z",
		"endTime": "2023-11-13T00:00:00Z"
	}]
}`

func testUser() *models.User {
	return &models.User{ID: 42, Email: "tester@example.com"}
}

func TestPipelinePersistThenNotify(t *testing.T) {
	applier := &fakeApplier{result: &cardgen.Result{User: testUser(), ReferenceID: 1}}
	notifier := &fakeNotifier{outcome: notify.Delivered}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte(challengeBody))
	require.NoError(t, err)

	assert.Equal(t, 1, applier.calls)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "tester@example.com|"+cardgen.NotificationChallengeCard, notifier.calls[0])
}

// An offline user is the steady state: persistence succeeded, handler acks
func TestPipelineNoSubscriberIsSuccess(t *testing.T) {
	applier := &fakeApplier{result: &cardgen.Result{User: testUser(), ReferenceID: 1}}
	notifier := &fakeNotifier{outcome: notify.NoSubscriber}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte(challengeBody))
	assert.NoError(t, err)
}

// A failed push must never bubble up into message redelivery
func TestPipelinePushFailureContained(t *testing.T) {
	applier := &fakeApplier{result: &cardgen.Result{User: testUser(), ReferenceID: 1}}
	notifier := &fakeNotifier{outcome: notify.Failed}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte(challengeBody))
	assert.NoError(t, err)
}

// A redelivered event skips the push: the first delivery already notified
func TestPipelineDuplicateSkipsNotify(t *testing.T) {
	applier := &fakeApplier{result: &cardgen.Result{User: testUser(), Duplicate: true}}
	notifier := &fakeNotifier{outcome: notify.Delivered}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte(challengeBody))
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

// Persistence failure propagates and the push phase never starts
func TestPipelinePersistFailureBlocksNotify(t *testing.T) {
	applier := &fakeApplier{err: fmt.Errorf("user 999: %w", cardgen.ErrUnknownUser)}
	notifier := &fakeNotifier{outcome: notify.Delivered}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte(challengeBody))
	assert.ErrorIs(t, err, cardgen.ErrUnknownUser)
	assert.Empty(t, notifier.calls)
}

// A decode failure never reaches the applier
func TestPipelineDecodeFailureBlocksApply(t *testing.T) {
	applier := &fakeApplier{}
	notifier := &fakeNotifier{}
	router := NewPipelineRouter(applier, notifier, "")

	err := router.Handle(context.Background(), ChallengeQueue, []byte("not json"))

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Zero(t, applier.calls)
	assert.Empty(t, notifier.calls)
}

func TestPipelineQueues(t *testing.T) {
	router := NewPipelineRouter(&fakeApplier{}, &fakeNotifier{}, "tarot.res")
	assert.Equal(t, []string{AnalyticsQueue, ChallengeQueue, "tarot.res"}, router.Queues())

	// empty falls back to the default real-time queue
	router = NewPipelineRouter(&fakeApplier{}, &fakeNotifier{}, "")
	assert.Contains(t, router.Queues(), DefaultRealTimeQueue)
}

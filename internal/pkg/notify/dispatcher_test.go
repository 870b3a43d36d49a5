package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(sub *Subscriber) []string {
	var messages []string
	for {
		select {
		case message := <-sub.Messages():
			messages = append(messages, message)
		default:
			return messages
		}
	}
}

func TestNotifyNoSubscriber(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	outcome := dispatcher.Notify("offline@example.com", "ChallengeCard is generated")
	assert.Equal(t, NoSubscriber, outcome)
}

func TestNotifySingleChannel(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	sub := registry.Subscribe("a@example.com")
	outcome := dispatcher.Notify("a@example.com", "ChallengeCard is generated")

	assert.Equal(t, Delivered, outcome)
	assert.Equal(t, []string{"ChallengeCard is generated"}, drain(sub))
}

func TestNotifyFansOutToAllChannels(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	phone := registry.Subscribe("a@example.com")
	laptop := registry.Subscribe("a@example.com")

	outcome := dispatcher.Notify("a@example.com", "Tarot card is generated")

	assert.Equal(t, Delivered, outcome)
	assert.Equal(t, []string{"Tarot card is generated"}, drain(phone))
	assert.Equal(t, []string{"Tarot card is generated"}, drain(laptop))
}

// A dead handle is evicted while the healthy channel still gets the message
func TestNotifyEvictsFailedChannel(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	dead := registry.Subscribe("a@example.com")
	healthy := registry.Subscribe("a@example.com")

	// simulate a connection whose handler died without unsubscribing
	dead.close()

	outcome := dispatcher.Notify("a@example.com", "ChallengeCard is generated")

	assert.Equal(t, Delivered, outcome)
	assert.Equal(t, []string{"ChallengeCard is generated"}, drain(healthy))
	assert.Equal(t, 1, registry.Count("a@example.com"))
	assert.NotContains(t, registry.Channels("a@example.com"), dead)
}

func TestNotifyAllChannelsFailed(t *testing.T) {
	registry := NewRegistry()
	dispatcher := NewDispatcher(registry)

	sub := registry.Subscribe("a@example.com")
	sub.close()

	outcome := dispatcher.Notify("a@example.com", "ChallengeCard is generated")

	assert.Equal(t, Failed, outcome)
	assert.Zero(t, registry.Count("a@example.com"))
}

func TestSubscriberPushAfterClose(t *testing.T) {
	registry := NewRegistry()
	sub := registry.Subscribe("a@example.com")
	registry.Unsubscribe(sub)

	err := sub.push("late message")
	require.ErrorIs(t, err, ErrChannelClosed)
}

func TestDispatchOutcomeString(t *testing.T) {
	assert.Equal(t, "no_subscriber", NoSubscriber.String())
	assert.Equal(t, "delivered", Delivered.String())
	assert.Equal(t, "failed", Failed.String())
}

package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChallengeCard(t *testing.T) {
	valid := `{
		"userId": 42,
		"cardName": "7-day saver",
		"challenges": [{
			"name": "7-day saver",
			"achievementCondition": "save $50",
			"startTime": "2023-11-06T00:00:00Z",
			"endTime": "2023-11-13T00:00:00Z"
		}]
	}`

	event, err := DecodeChallengeCard(ChallengeQueue, []byte(valid))
	require.NoError(t, err)
	assert.Equal(t, uint(42), event.UserID)
	assert.Equal(t, "7-day saver", event.CardName)
	require.Len(t, event.Challenges, 1)
	assert.Equal(t, "save $50", event.Challenges[0].AchievementCondition)
}

func TestDecodeChallengeCardInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"userId": 42,`},
		{"Not JSON at all", `challenge card please`},
		{"Missing user id", `{"cardName": "x", "challenges": [{"name": "x", "achievementCondition": "y", "startTime": "2023-11-06T00:00:00Z", "endTime": "2023-11-13T00:00:00Z"}]}`},
		{"Zero user id", `{"userId": 0, "cardName": "x", "challenges": [{"name": "x", "achievementCondition": "y", "startTime": "2023-11-06T00:00:00Z", "endTime": "2023-11-13T00:00:00Z"}]}`},
		{"No challenges", `{"userId": 42, "cardName": "x", "challenges": []}`},
		{"Condition too long", `{"userId": 42, "cardName": "x", "challenges": [{"name": "x", "achievementCondition": "this condition is far longer than allowed", "startTime": "2023-11-06T00:00:00Z", "endTime": "2023-11-13T00:00:00Z"}]}`},
		{"Window ends before it starts", `{"userId": 42, "cardName": "x", "challenges": [{"name": "x", "achievementCondition": "y", "startTime": "2023-11-13T00:00:00Z", "endTime": "2023-11-06T00:00:00Z"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeChallengeCard(ChallengeQueue, []byte(tt.body))
			assert.Nil(t, event)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, ChallengeQueue, decodeErr.Queue)
		})
	}
}

func TestDecodeMonthlySpending(t *testing.T) {
	valid := `{
		"userId": 42,
		"month": "2023-11",
		"totalSpending": 123400,
		"categoryTotals": {"food": 45600},
		"creditCardId": 7,
		"creditCardName": "Cashback Plus"
	}`

	event, err := DecodeMonthlySpending(AnalyticsQueue, []byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "2023-11", event.Month)
	assert.Equal(t, int64(45600), event.CategoryTotals["food"])
	assert.Equal(t, uint(7), event.CreditCardID)

	_, err = DecodeMonthlySpending(AnalyticsQueue, []byte(`{"userId": 42, "month": "november", "creditCardId": 7}`))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRealTimeCard(t *testing.T) {
	event, err := DecodeRealTimeCard("tarot.res", []byte(`{"eventId": "evt-1", "userId": 42, "cardName": "The Tower"}`))
	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.EventID)
	assert.Equal(t, "The Tower", event.CardName)

	// event id is optional
	event, err = DecodeRealTimeCard("tarot.res", []byte(`{"userId": 42, "cardName": "The Tower"}`))
	require.NoError(t, err)
	assert.Empty(t, event.EventID)

	_, err = DecodeRealTimeCard("tarot.res", []byte(`{"userId": 42}`))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

package mq

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/fintech-masoori/masoori/internal/pkg/cardgen"
)

// Default queue names. The real-time queue name is producer-controlled and
// overridable via MQ_REALTIME_QUEUE.
const (
	ChallengeQueue       = "challenge.res"
	AnalyticsQueue       = "analytics.res"
	DefaultRealTimeQueue = "realtime.res"
)

var validate = validator.New()

// decodeEvent unmarshals a payload into the event shape for a queue and runs
// struct validation. Pure: no side effects, any failure is a *DecodeError.
func decodeEvent(queue string, body []byte, event interface{}) error {
	if err := json.Unmarshal(body, event); err != nil {
		return &DecodeError{Queue: queue, Err: err}
	}
	if err := validate.Struct(event); err != nil {
		return &DecodeError{Queue: queue, Err: err}
	}
	return nil
}

// DecodeChallengeCard decodes a challenge queue payload.
func DecodeChallengeCard(queue string, body []byte) (*cardgen.GeneratedChallengeCard, error) {
	var event cardgen.GeneratedChallengeCard
	if err := decodeEvent(queue, body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DecodeMonthlySpending decodes an analytics queue payload.
func DecodeMonthlySpending(queue string, body []byte) (*cardgen.MonthlySpendingAndCreditcard, error) {
	var event cardgen.MonthlySpendingAndCreditcard
	if err := decodeEvent(queue, body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DecodeRealTimeCard decodes a real-time queue payload.
func DecodeRealTimeCard(queue string, body []byte) (*cardgen.RealTimeCardResult, error) {
	var event cardgen.RealTimeCardResult
	if err := decodeEvent(queue, body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

package mq

import (
	"errors"
	"fmt"

	"github.com/fintech-masoori/masoori/app/models"
	"github.com/fintech-masoori/masoori/internal/pkg/cardgen"
)

// DecodeError marks a payload that could not be turned into a known event
// shape. Terminal: redelivering the same bytes can never succeed.
type DecodeError struct {
	Queue string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode message from queue %s: %v", e.Queue, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// deliveryAction is what the consumer does with a message after handling.
type deliveryAction int

const (
	actionAck deliveryAction = iota
	actionRetry
	actionDeadLetter
)

// classify maps a handler error to the broker action and, for dead-letters,
// the reason recorded with the message. Anything not explicitly terminal is
// assumed transient and retried; the consumer bounds the attempt count.
func classify(err error) (deliveryAction, string) {
	if err == nil {
		return actionAck, ""
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return actionDeadLetter, models.DEAD_LETTER_REASON_DECODE
	}
	if errors.Is(err, cardgen.ErrUnknownUser) {
		return actionDeadLetter, models.DEAD_LETTER_REASON_UNKNOWN_USER
	}
	return actionRetry, ""
}

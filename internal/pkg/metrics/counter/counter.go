package counter

import (
	"context"
	"strconv"

	"github.com/fintech-masoori/masoori/internal/pkg/cache"
)

const (
	processedKey     = "pipeline:counters:processed"
	deadLetterKey    = "pipeline:counters:deadletter"
	notificationsKey = "pipeline:counters:notifications"
)

// AddProcessedEvent increments the processed counter for a queue in Redis
func AddProcessedEvent(queue string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, processedKey, queue, 1).Err()
}

// AddDeadLetter increments the dead-letter counter for a queue in Redis
func AddDeadLetter(queue string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, deadLetterKey, queue, 1).Err()
}

// AddNotificationDelivered increments the delivered-notification counter
func AddNotificationDelivered() error {
	ctx := context.Background()
	return cache.GetClient().Incr(ctx, notificationsKey).Err()
}

// Snapshot returns the current pipeline counters keyed as
// "processed.<queue>", "deadletter.<queue>" and "notifications".
func Snapshot() (map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	result := make(map[string]int64)

	for prefix, key := range map[string]string{"processed": processedKey, "deadletter": deadLetterKey} {
		fields, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		for queue, raw := range fields {
			if count, err := strconv.ParseInt(raw, 10, 64); err == nil {
				result[prefix+"."+queue] = count
			}
		}
	}

	if raw, err := rdb.Get(ctx, notificationsKey).Result(); err == nil {
		if count, err := strconv.ParseInt(raw, 10, 64); err == nil {
			result["notifications"] = count
		}
	}

	return result, nil
}

package mq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fintech-masoori/masoori/app/models"
	"github.com/fintech-masoori/masoori/app/repository"
	"github.com/fintech-masoori/masoori/internal/pkg/cache"
	"github.com/fintech-masoori/masoori/internal/pkg/metrics/counter"
)

const (
	// attemptKeyPrefix tracks per-message delivery attempts in Redis
	attemptKeyPrefix = "mq:attempts:"
	attemptTTL       = 24 * time.Hour

	DefaultMaxAttempts = 3
	DefaultWorkers     = 3

	// handlerTimeout bounds one delivery end to end so a slow push or a
	// stalled store cannot pin a worker forever
	handlerTimeout = 30 * time.Second

	// retryBackoff is the per-attempt delay before a transient failure is
	// requeued, so an outage is not burned through in a hot loop
	retryBackoff = time.Second
)

// retryDelay grows linearly with the attempt count
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * retryBackoff
}

// Consumer subscribes the router's queues on the broker and drives deliveries
// through the pipeline with a pool of workers per queue. The broker delivers
// at least once with no ordering; the appliers' dedup keying makes that safe.
type Consumer struct {
	url         string
	router      *Router
	deadLetters repository.DeadLetterRepository
	workers     int
	maxAttempts int

	conn    *amqp.Connection
	channel *amqp.Channel
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewConsumer creates a consumer for all queues registered on the router
func NewConsumer(url string, router *Router, deadLetters repository.DeadLetterRepository, workers, maxAttempts int) *Consumer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Consumer{
		url:         url,
		router:      router,
		deadLetters: deadLetters,
		workers:     workers,
		maxAttempts: maxAttempts,
		stopCh:      make(chan struct{}),
	}
}

// Start connects to the broker and starts the consumer workers
func (c *Consumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Cap unacked deliveries at the worker pool size so the broker never
	// buffers more into this process than it can actually handle.
	if err := channel.Qos(c.workers, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	c.conn = conn
	c.channel = channel
	c.stopCh = make(chan struct{})
	c.running = true

	for _, queue := range c.router.Queues() {
		deliveries, err := channel.Consume(
			queue, // queue
			"",    // consumer tag, broker-generated
			false, // autoAck off, we ack after the handler decides
			false, // exclusive
			false, // noLocal
			false, // noWait
			nil,   // args
		)
		if err != nil {
			c.shutdownLocked()
			return fmt.Errorf("failed to consume queue %s: %w", queue, err)
		}

		log.Infof("[MQ] Consuming queue %s with %d workers", queue, c.workers)
		for i := 0; i < c.workers; i++ {
			c.wg.Add(1)
			go c.worker(queue, deliveries)
		}
	}

	return nil
}

// Stop drains the consumer: no new deliveries are picked up, in-flight
// handlers run to completion (persistence is never cut off mid-transaction),
// then the channel and connection close.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	log.Info("[MQ] Stopping consumer...")
	close(c.stopCh)
	c.shutdownLocked()
	log.Info("[MQ] Consumer stopped")
}

func (c *Consumer) shutdownLocked() {
	c.running = false
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	c.wg.Wait()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// worker drains one delivery stream until stop or channel close
func (c *Consumer) worker(queue string, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(queue, delivery)
		}
	}
}

// handleDelivery runs one message through the router and translates the
// outcome into a broker action.
func (c *Consumer) handleDelivery(queue string, delivery amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	err := c.router.Handle(ctx, queue, delivery.Body)
	action, reason := classify(err)

	switch action {
	case actionAck:
		counter.AddProcessedEvent(queue)
		if ackErr := delivery.Ack(false); ackErr != nil {
			log.Errorf("[MQ] Failed to ack message on %s: %v", queue, ackErr)
		}

	case actionDeadLetter:
		log.Errorf("[MQ] Terminal failure on %s: %v", queue, err)
		c.deadLetter(queue, delivery, reason, err, c.attempts(queue, delivery))
		if ackErr := delivery.Ack(false); ackErr != nil {
			log.Errorf("[MQ] Failed to ack dead-lettered message on %s: %v", queue, ackErr)
		}

	case actionRetry:
		attempts := c.recordAttempt(queue, delivery)
		if attempts >= c.maxAttempts {
			log.Errorf("[MQ] Giving up on %s message after %d attempts: %v", queue, attempts, err)
			c.deadLetter(queue, delivery, models.DEAD_LETTER_REASON_EXHAUSTED, err, attempts)
			if ackErr := delivery.Ack(false); ackErr != nil {
				log.Errorf("[MQ] Failed to ack exhausted message on %s: %v", queue, ackErr)
			}
			return
		}
		log.Warnf("[MQ] Transient failure on %s (attempt %d/%d), requeueing: %v", queue, attempts, c.maxAttempts, err)
		// hold the message briefly before requeueing; skipped on shutdown
		select {
		case <-time.After(retryDelay(attempts)):
		case <-c.stopCh:
		}
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			log.Errorf("[MQ] Failed to nack message on %s: %v", queue, nackErr)
		}
	}
}

// deadLetter persists the message for operator inspection. Losing the row on
// top of a terminal failure would drop the event silently, so a store error
// here is the one case we log at the highest level.
func (c *Consumer) deadLetter(queue string, delivery amqp.Delivery, reason string, cause error, attempts int) {
	counter.AddDeadLetter(queue)

	msg := &models.DeadLetterMessage{
		Queue:     queue,
		MessageID: messageID(delivery),
		Body:      string(delivery.Body),
		Reason:    reason,
		Attempts:  attempts,
	}
	if cause != nil {
		msg.Error = cause.Error()
	}
	// fresh context: the handler's may already be expired, and the row must
	// still land or the event is gone
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := c.deadLetters.Create(ctx, msg); err != nil {
		log.Errorf("[MQ] FAILED TO DEAD-LETTER message %s from %s (event lost): %v", msg.MessageID, queue, err)
	}
}

// recordAttempt counts a failed delivery attempt for a message in Redis.
// AMQP redelivery only carries a boolean flag, so the count lives here; a
// Redis outage degrades to the broker's unbounded redelivery rather than
// dropping messages early.
func (c *Consumer) recordAttempt(queue string, delivery amqp.Delivery) int {
	key := attemptKeyPrefix + queue + ":" + messageID(delivery)
	attempts, err := cache.IncrWithTTL(key, attemptTTL)
	if err != nil {
		log.Warnf("[MQ] Failed to count delivery attempt for %s: %v", key, err)
		return 1
	}
	return int(attempts)
}

// attempts reads the current attempt count without incrementing
func (c *Consumer) attempts(queue string, delivery amqp.Delivery) int {
	key := attemptKeyPrefix + queue + ":" + messageID(delivery)
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	attempts := 0
	fmt.Sscanf(val, "%d", &attempts)
	return attempts
}

// messageID identifies a logical message across redeliveries: the producer's
// message id when set, otherwise a hash of the body.
func messageID(delivery amqp.Delivery) string {
	if id, ok := delivery.Headers["x-event-id"].(string); ok && id != "" {
		return id
	}
	if delivery.MessageId != "" {
		return delivery.MessageId
	}
	sum := sha256.Sum256(delivery.Body)
	return hex.EncodeToString(sum[:8])
}

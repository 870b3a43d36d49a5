package mq

import (
	"context"
	"fmt"
	"sort"
)

// Handler processes one raw delivery from a queue: decode, persist, notify.
// The returned error decides the broker action (ack, requeue, dead-letter).
type Handler func(ctx context.Context, body []byte) error

// Router is a static queue-name to handler table. Each queue carries exactly
// one event shape, so routing never inspects the payload. The table is built
// once at startup; Register is not safe for use after Start.
type Router struct {
	handlers map[string]Handler
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a queue name. Registering the same queue twice
// is a programming error and panics.
func (r *Router) Register(queue string, handler Handler) {
	if queue == "" {
		panic("mq: cannot register handler for empty queue name")
	}
	if handler == nil {
		panic(fmt.Sprintf("mq: nil handler for queue %s", queue))
	}
	if _, exists := r.handlers[queue]; exists {
		panic(fmt.Sprintf("mq: handler already registered for queue %s", queue))
	}
	r.handlers[queue] = handler
}

// Queues returns the registered queue names in stable order
func (r *Router) Queues() []string {
	queues := make([]string, 0, len(r.handlers))
	for queue := range r.handlers {
		queues = append(queues, queue)
	}
	sort.Strings(queues)
	return queues
}

// Handle dispatches a delivery to the handler registered for its queue
func (r *Router) Handle(ctx context.Context, queue string, body []byte) error {
	handler, ok := r.handlers[queue]
	if !ok {
		return fmt.Errorf("mq: no handler registered for queue %s", queue)
	}
	return handler(ctx, body)
}

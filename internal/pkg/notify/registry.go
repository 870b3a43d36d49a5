package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	// subscriberBuffer absorbs short bursts so dispatch rarely blocks on a
	// reader that is between flushes
	subscriberBuffer = 8

	// pushTimeout bounds a single channel push; a reader that cannot drain
	// its buffer within this window is treated as dead
	pushTimeout = 2 * time.Second
)

var ErrChannelClosed = errors.New("push channel is closed")
var ErrChannelStalled = errors.New("push channel did not accept message in time")

// Subscriber is one open push connection for a user identity. A user with
// several devices holds several subscribers at once.
type Subscriber struct {
	identity  string
	messages  chan string
	done      chan struct{}
	closeOnce sync.Once
}

// Identity returns the user identity this subscriber belongs to
func (s *Subscriber) Identity() string {
	return s.identity
}

// Messages is the stream the connection handler drains
func (s *Subscriber) Messages() <-chan string {
	return s.messages
}

// Done is closed when the subscriber is evicted or the registry shuts down
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// push offers a message to the subscriber without ever blocking dispatch
// beyond pushTimeout. The messages channel is never closed; done signals
// closure, so a send can never panic.
func (s *Subscriber) push(message string) error {
	select {
	case <-s.done:
		return ErrChannelClosed
	default:
	}

	timer := time.NewTimer(pushTimeout)
	defer timer.Stop()

	select {
	case s.messages <- message:
		return nil
	case <-s.done:
		return ErrChannelClosed
	case <-timer.C:
		return ErrChannelStalled
	}
}

// Registry is the process-wide mapping from user identity to active push
// subscribers. Purely in-memory: it starts empty, entries come and go with
// connection open/close, and everything is lost on restart (clients
// re-subscribe). A single RWMutex guards the map; dispatch volume is one
// lookup per consumed message, far below where sharding would pay off.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make(map[string]map[*Subscriber]struct{}),
	}
}

var (
	globalRegistry *Registry
	registryOnce   sync.Once
)

// GetRegistry returns the process-wide registry (singleton)
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Subscribe registers a new push connection for an identity
func (r *Registry) Subscribe(identity string) *Subscriber {
	sub := &Subscriber{
		identity: identity,
		messages: make(chan string, subscriberBuffer),
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	set, ok := r.subscribers[identity]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.subscribers[identity] = set
	}
	set[sub] = struct{}{}
	count := len(set)
	r.mu.Unlock()

	log.Infof("[Notify] %s subscribed (%d active channels)", identity, count)
	return sub
}

// Unsubscribe removes a push connection and signals its handler to stop.
// Safe to call more than once; eviction and explicit disconnect may race.
func (r *Registry) Unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	if set, ok := r.subscribers[sub.identity]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(r.subscribers, sub.identity)
		}
	}
	r.mu.Unlock()

	sub.close()
}

// Channels returns the active subscribers for an identity
func (r *Registry) Channels(identity string) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.subscribers[identity]
	if len(set) == 0 {
		return nil
	}
	subs := make([]*Subscriber, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	return subs
}

// Count returns the number of active channels for an identity
func (r *Registry) Count(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[identity])
}

// Shutdown closes every subscriber and clears the registry
func (r *Registry) Shutdown() {
	r.mu.Lock()
	var all []*Subscriber
	for _, set := range r.subscribers {
		for sub := range set {
			all = append(all, sub)
		}
	}
	r.subscribers = make(map[string]map[*Subscriber]struct{})
	r.mu.Unlock()

	for _, sub := range all {
		sub.close()
	}
	if len(all) > 0 {
		log.Infof("[Notify] Registry shut down, %d channels closed", len(all))
	}
}

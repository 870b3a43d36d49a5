package notify

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/fintech-masoori/masoori/internal/pkg/metrics/counter"
)

// DispatchOutcome reports what happened to a notify call
type DispatchOutcome int

const (
	// NoSubscriber means the user has no open channel. The expected steady
	// state for offline users, never an error.
	NoSubscriber DispatchOutcome = iota
	// Delivered means at least one channel accepted the message
	Delivered
	// Failed means channels existed but every push failed
	Failed
)

func (o DispatchOutcome) String() string {
	switch o {
	case NoSubscriber:
		return "no_subscriber"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher fans a message out to every active channel of a user. Delivery
// is best effort, at most once per connected channel: a failed channel is
// evicted and logged, nothing is queued for offline users.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over a registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Notify pushes a message to all of the identity's channels. One channel
// failing never fails the call; the already-committed persistence behind this
// notification is in no way affected by the outcome.
func (d *Dispatcher) Notify(identity string, message string) DispatchOutcome {
	subs := d.registry.Channels(identity)
	if len(subs) == 0 {
		return NoSubscriber
	}

	delivered := 0
	for _, sub := range subs {
		if err := sub.push(message); err != nil {
			log.Warnf("[Notify] Evicting stale channel for %s: %v", identity, err)
			d.registry.Unsubscribe(sub)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return Failed
	}
	counter.AddNotificationDelivered()
	log.Infof("[Notify] Delivered to %d/%d channels for %s", delivered, len(subs), identity)
	return Delivered
}

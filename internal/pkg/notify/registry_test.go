package notify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry()

	assert.Zero(t, registry.Count("a@example.com"))

	sub := registry.Subscribe("a@example.com")
	require.NotNil(t, sub)
	assert.Equal(t, "a@example.com", sub.Identity())
	assert.Equal(t, 1, registry.Count("a@example.com"))

	registry.Unsubscribe(sub)
	assert.Zero(t, registry.Count("a@example.com"))

	// closed is signalled to the connection handler
	select {
	case <-sub.Done():
	default:
		t.Fatal("expected done channel to be closed after unsubscribe")
	}

	// unsubscribe twice is fine; eviction and disconnect can race
	registry.Unsubscribe(sub)
}

func TestRegistryMultipleChannels(t *testing.T) {
	registry := NewRegistry()

	phone := registry.Subscribe("a@example.com")
	laptop := registry.Subscribe("a@example.com")
	other := registry.Subscribe("b@example.com")

	assert.Equal(t, 2, registry.Count("a@example.com"))
	assert.Equal(t, 1, registry.Count("b@example.com"))
	assert.Len(t, registry.Channels("a@example.com"), 2)

	registry.Unsubscribe(phone)
	assert.Equal(t, 1, registry.Count("a@example.com"))
	assert.Equal(t, []*Subscriber{laptop}, registry.Channels("a@example.com"))

	registry.Unsubscribe(laptop)
	registry.Unsubscribe(other)
	assert.Nil(t, registry.Channels("a@example.com"))
}

func TestRegistryShutdown(t *testing.T) {
	registry := NewRegistry()

	subs := []*Subscriber{
		registry.Subscribe("a@example.com"),
		registry.Subscribe("a@example.com"),
		registry.Subscribe("b@example.com"),
	}

	registry.Shutdown()

	assert.Zero(t, registry.Count("a@example.com"))
	assert.Zero(t, registry.Count("b@example.com"))
	for _, sub := range subs {
		select {
		case <-sub.Done():
		default:
			t.Fatalf("expected subscriber %s to be closed after shutdown", sub.Identity())
		}
	}

	// the registry stays usable after a shutdown
	sub := registry.Subscribe("a@example.com")
	assert.Equal(t, 1, registry.Count("a@example.com"))
	registry.Unsubscribe(sub)
}

// Exercises the registry from many goroutines; run with -race
func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("user%d@example.com", n%4)
			for j := 0; j < 100; j++ {
				sub := registry.Subscribe(identity)
				registry.Channels(identity)
				registry.Count(identity)
				registry.Unsubscribe(sub)
			}
		}(i)
	}
	wg.Wait()

	for n := 0; n < 4; n++ {
		assert.Zero(t, registry.Count(fmt.Sprintf("user%d@example.com", n)))
	}
}

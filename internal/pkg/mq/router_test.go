package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterDispatch(t *testing.T) {
	router := NewRouter()

	var handled []string
	router.Register("a.res", func(ctx context.Context, body []byte) error {
		handled = append(handled, "a:"+string(body))
		return nil
	})
	router.Register("b.res", func(ctx context.Context, body []byte) error {
		handled = append(handled, "b:"+string(body))
		return nil
	})

	err := router.Handle(context.Background(), "b.res", []byte("payload"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"b:payload"}, handled)
}

func TestRouterUnknownQueue(t *testing.T) {
	router := NewRouter()
	err := router.Handle(context.Background(), "nobody.res", []byte("{}"))
	assert.Error(t, err)
}

func TestRouterHandlerErrorPropagates(t *testing.T) {
	router := NewRouter()
	boom := errors.New("boom")
	router.Register("a.res", func(ctx context.Context, body []byte) error {
		return boom
	})

	err := router.Handle(context.Background(), "a.res", nil)
	assert.ErrorIs(t, err, boom)
}

func TestRouterRegisterPanics(t *testing.T) {
	noop := func(ctx context.Context, body []byte) error { return nil }

	tests := []struct {
		name     string
		register func(r *Router)
	}{
		{"Duplicate queue", func(r *Router) {
			r.Register("a.res", noop)
			r.Register("a.res", noop)
		}},
		{"Empty queue name", func(r *Router) {
			r.Register("", noop)
		}},
		{"Nil handler", func(r *Router) {
			r.Register("a.res", nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() {
				tt.register(NewRouter())
			})
		})
	}
}

func TestRouterQueuesStableOrder(t *testing.T) {
	router := NewRouter()
	noop := func(ctx context.Context, body []byte) error { return nil }
	router.Register("c.res", noop)
	router.Register("a.res", noop)
	router.Register("b.res", noop)

	assert.Equal(t, []string{"a.res", "b.res", "c.res"}, router.Queues())
}

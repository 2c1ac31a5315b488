package bus

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("test.event", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("test.event", "tester", 123)))
	require.NoError(t, b.Publish(NewEvent("other.event", "tester", 456)))
	assert.Equal(t, []any{123}, got)
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		_, err := b.Subscribe("e", func(Event) error {
			order = append(order, name)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("e", "src", nil)))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("one")
	e2 := errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "src", nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(3), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, uint64(3), m.SubscribersActive)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("e", func(Event) error { count++; return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "e", sub.EventType())

	_ = b.Publish(NewEvent("e", "s", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	_ = b.Publish(NewEvent("e", "s", nil))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
	assert.Zero(t, b.GetMetrics().SubscribersActive)
}

func TestNilHandlerRejected(t *testing.T) {
	_, err := New().Subscribe("e", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	_, _ = b.Subscribe("e", func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("e", "s", j))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, count)
	assert.Equal(t, uint64(800), b.GetMetrics().Published)
}

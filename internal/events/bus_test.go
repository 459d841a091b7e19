package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var first, second []Unauthorized
	bus.SubscribeUnauthorized(func(ev Unauthorized) { first = append(first, ev) })
	bus.SubscribeUnauthorized(func(ev Unauthorized) { second = append(second, ev) })

	ev := Unauthorized{Status: 401, Method: "GET", URL: "/bookings/my"}
	bus.PublishUnauthorized(ev)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, ev, first[0])
	assert.Equal(t, ev, second[0])
}

func TestBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.PublishUnauthorized(Unauthorized{Status: 401, Method: "POST", URL: "/credits"})
	})
}

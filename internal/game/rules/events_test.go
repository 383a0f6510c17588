package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the types of the events it receives.
type recorder struct{ got []EventType }

func (r *recorder) listen(e Event) { r.got = append(r.got, e.Type) }

func TestEventBusFiltersByType(t *testing.T) {
	bus := NewEventBus()
	var all, damage recorder
	allHandle := bus.Subscribe(all.listen)
	damageHandle := bus.SubscribeTyped(EventDamagedPlayer, damage.listen)

	bus.Publish(NewEvent(EventCreatureSummoned, "imp", "imp", "p1"))
	bus.Publish(NewEventWithAmount(EventDamagedPlayer, "p2", "imp", "p1", 2))
	bus.Publish(NewEvent(EventCardDestroyed, "imp", "imp", "p1"))

	assert.Equal(t, []EventType{EventCreatureSummoned, EventDamagedPlayer, EventCardDestroyed}, all.got)
	assert.Equal(t, []EventType{EventDamagedPlayer}, damage.got)

	bus.Unsubscribe(damageHandle)
	bus.Publish(NewEventWithAmount(EventDamagedPlayer, "p2", "imp", "p1", 1))
	assert.Len(t, damage.got, 1, "unsubscribed listener")
	assert.Len(t, all.got, 4)

	bus.Unsubscribe(allHandle)
	bus.Unsubscribe(allHandle)
	bus.Publish(NewEvent(EventGameOver, "", "", ""))
	assert.Len(t, all.got, 4)
}

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	bus.Subscribe(func(Event) { order = append(order, "watchers") })
	bus.SubscribeTyped(EventCardPlayed, func(Event) { order = append(order, "triggers") })
	bus.Subscribe(func(Event) { order = append(order, "log") })

	bus.Publish(NewEvent(EventCardPlayed, "zap", "zap", "p1"))
	assert.Equal(t, []string{"watchers", "triggers", "log"}, order)
}

func TestEventBusListenerMaySubscribe(t *testing.T) {
	bus := NewEventBus()
	late := 0
	bus.Subscribe(func(e Event) {
		if e.Type == EventGameStarted {
			bus.SubscribeTyped(EventTurnStarted, func(Event) { late++ })
		}
	})
	bus.Publish(NewEvent(EventGameStarted, "", "", ""))
	assert.Zero(t, late)
	bus.Publish(NewEvent(EventTurnStarted, "", "", "p1"))
	assert.Equal(t, 1, late)
}

func TestEventBusIgnoresNilListener(t *testing.T) {
	bus := NewEventBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	assert.NotPanics(t, func() { bus.Publish(NewEvent(EventGameStarted, "", "", "")) })
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	evt := NewEventWithAmount(EventDamagedPlayer, "p1", "ogre", "p2", 5)
	evt.Metadata["source"] = "combat"

	assert.Equal(t, EventDamagedPlayer, evt.Type)
	assert.Equal(t, 5, evt.Amount)
	assert.Equal(t, "p1", evt.TargetID)
	assert.Equal(t, "ogre", evt.SourceID)
	assert.Equal(t, "p2", evt.Controller)
	assert.Equal(t, "p2", evt.PlayerID)
	require.NotNil(t, evt.Metadata)
	assert.False(t, evt.Timestamp.Before(before))
}

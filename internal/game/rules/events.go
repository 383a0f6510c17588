package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game/Turn events
	EventGameStarted  EventType = "GAME_STARTED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventGameOver     EventType = "GAME_OVER"

	// Card events
	EventDrewCard         EventType = "DREW_CARD"
	EventCardPlayed       EventType = "CARD_PLAYED"
	EventSpellCast        EventType = "SPELL_CAST"
	EventCreatureSummoned EventType = "CREATURE_SUMMONED"
	EventEquipmentPlayed  EventType = "EQUIPMENT_PLAYED"
	EventEquipped         EventType = "EQUIPPED"
	EventUnequipped       EventType = "UNEQUIPPED"
	EventCardDestroyed    EventType = "CARD_DESTROYED"
	EventDiscardedCard    EventType = "DISCARDED_CARD"

	// Resource/effect events
	EventEnergyGained  EventType = "ENERGY_GAINED"
	EventEnergySpent   EventType = "ENERGY_SPENT"
	EventEffectApplied EventType = "EFFECT_APPLIED"

	// Combat/damage events
	EventAttackerDeclared EventType = "ATTACKER_DECLARED"
	EventBlockerDeclared  EventType = "BLOCKER_DECLARED"
	EventDamagedCreature  EventType = "DAMAGED_CREATURE"
	EventDamagedPlayer    EventType = "DAMAGED_PLAYER"
)

// Event describes something that happened in the game.
type Event struct {
	Type       EventType
	TargetID   string            // ID of the target (card or player)
	SourceID   string            // ID of the card that caused the event
	Controller string            // Player ID of the controller
	PlayerID   string            // Player ID (often same as Controller, but can differ)
	Amount     int               // Numeric value (damage, energy, cards)
	Zone       Zone              // Zone the event relates to
	Turn       int               // Turn number when the event occurred
	Timestamp  time.Time         // When the event occurred
	Metadata   map[string]string // Additional metadata
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
// Listeners are invoked in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controllerID string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controllerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Amount = amount
	return evt
}

// Package events provides an in-process publish/subscribe bus for session events.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a kind of event
type EventType string

const (
	SessionCreated        EventType = "SESSION_CREATED"
	SessionDeleted        EventType = "SESSION_DELETED"
	SessionExpired        EventType = "SESSION_EXPIRED"
	PreferencesChanged    EventType = "PREFERENCES_CHANGED"
	WeightsChanged        EventType = "WEIGHTS_CHANGED"
	AllocationChanged     EventType = "ALLOCATION_CHANGED"
	KnowledgeLevelChanged EventType = "KNOWLEDGE_LEVEL_CHANGED"
	PortfolioValueChanged EventType = "PORTFOLIO_VALUE_CHANGED"
	ScenarioApplied       EventType = "SCENARIO_APPLIED"
	AdviceUpdated         EventType = "ADVICE_UPDATED"
)

// AllTypes lists every event type
var AllTypes = []EventType{
	SessionCreated,
	SessionDeleted,
	SessionExpired,
	PreferencesChanged,
	WeightsChanged,
	AllocationChanged,
	KnowledgeLevelChanged,
	PortfolioValueChanged,
	ScenarioApplied,
	AdviceUpdated,
}

// Event is a published occurrence
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// SessionID returns the session the event concerns
func (e *Event) SessionID() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Session()
}

// Handler receives events. Handlers run synchronously on the emitting goroutine
// and must not block.
type Handler func(*Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers
type Bus struct {
	subscribers map[EventType][]subscription
	nextID      uint64
	log         zerolog.Logger
	mu          sync.RWMutex
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventType][]subscription),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for the given types (every type when none given).
// The returned function removes the subscription.
func (b *Bus) Subscribe(handler Handler, types ...EventType) func() {
	if len(types) == 0 {
		types = AllTypes
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], subscription{id: id, handler: handler})
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, subs := range b.subscribers {
		kept := subs[:0]
		for _, s := range subs {
			if s.id != id {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.subscribers, t)
		} else {
			b.subscribers[t] = kept
		}
	}
}

// Emit publishes an event to every subscriber of its type
func (b *Bus) Emit(eventType EventType, module string, data EventData) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[eventType]))
	copy(subs, b.subscribers[eventType])
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Str("session_id", event.SessionID()).
		Int("subscribers", len(subs)).
		Msg("Emitting event")

	for _, s := range subs {
		s.handler(event)
	}
}

// SubscriberCount returns how many handlers listen for a type
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

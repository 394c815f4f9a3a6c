package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/transitpay/settlement/internal/domain/shared"
)

// EventSerializer turns settlement events into outbox payloads and back.
// Decoding needs the concrete type, so every event type stored in the
// outbox must be registered before the processor starts.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() any
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() any)}
}

// Register binds eventType to the concrete type of sample. A later call for
// the same name wins.
func (s *EventSerializer) Register(eventType string, sample shared.DomainEvent) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = func() any { return reflect.New(t).Interface() }
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event.EventType(), err)
	}
	return data, nil
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	target := factory()
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	evt, ok := target.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%T registered for %s is not a domain event", target, eventType)
	}
	return evt, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes lists the bound event names, sorted.
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.factories))
}

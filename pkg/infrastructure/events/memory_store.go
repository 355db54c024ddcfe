package events

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	maxEntries  int
	log         *slog.Logger
}

// NewInMemoryEventStore creates a store keeping at most maxEntries events
// (0 = unlimited). The oldest events are dropped first.
func NewInMemoryEventStore(logger *slog.Logger, maxEntries int) *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		maxEntries:  maxEntries,
		log:         logger.With(slog.String("component", "event_store")),
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	if streamID == "" {
		return fmt.Errorf("stream id cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++
	s.evictIfNeeded()

	go s.notifySubscribers(eventWithVersion)

	return nil
}

// evictIfNeeded drops the oldest events beyond the bound. Caller holds the lock.
func (s *InMemoryEventStore) evictIfNeeded() {
	if s.maxEntries <= 0 {
		return
	}
	for len(s.allEvents) > s.maxEntries {
		oldest := s.allEvents[0]
		s.allEvents = s.allEvents[1:]

		stream := s.streams[oldest.StreamID()]
		if len(stream) <= 1 {
			delete(s.streams, oldest.StreamID())
		} else {
			s.streams[oldest.StreamID()] = stream[1:]
		}
	}
}

// ReadEvents returns the events of a stream from a version on. Versions of
// evicted events are no longer readable.
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	result := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Version() >= fromVersion {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

// Len returns the number of retained events
func (s *InMemoryEventStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.allEvents)
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

func (s *InMemoryEventStore) notifySubscribers(event Event) {
	s.mutex.RLock()
	handlers := s.subscribers[event.Type()]
	s.mutex.RUnlock()

	for _, handler := range handlers {
		if handler.CanHandle(event.Type()) {
			go func(h EventHandler, e Event) {
				if err := h.Handle(e); err != nil {
					s.log.Warn("event handler failed",
						slog.String("event_type", e.Type()),
						slog.String("error", err.Error()))
				}
			}(handler, event)
		}
	}
}

// Export writes all retained events as a JSON array
func (s *InMemoryEventStore) Export(w io.Writer) error {
	events, _ := s.ReadAllEvents(0)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return nil
}

// WriteFile exports all retained events to path
func (s *InMemoryEventStore) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit file: %w", err)
	}
	defer f.Close()
	return s.Export(f)
}

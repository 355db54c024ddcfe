package events

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingHandler struct {
	mutex sync.Mutex
	seen  []string
	done  chan struct{}
}

func (h *recordingHandler) Handle(e Event) error {
	h.mutex.Lock()
	h.seen = append(h.seen, e.Type())
	h.mutex.Unlock()
	h.done <- struct{}{}
	return nil
}

func (h *recordingHandler) CanHandle(eventType string) bool {
	return eventType == ShortageIdentifiedEvent
}

func TestInMemoryEventStore_Versions(t *testing.T) {
	store := NewInMemoryEventStore(testLogger(), 0)
	run := NewRunID()

	result := entities.SimulationResult{ProductID: 1, TargetQuantity: decimal.NewFromInt(10)}
	for i := 0; i < 3; i++ {
		if err := store.AppendEvent(run, NewSimulationCompletedEvent(run, result, false)); err != nil {
			t.Fatalf("Failed to append event: %v", err)
		}
	}
	if err := store.AppendEvent("", NewEvent("x", "", nil)); err == nil {
		t.Errorf("Expected error for empty stream id")
	}

	events, err := store.ReadEvents(run, 2)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events from version 2, got %d", len(events))
	}
	if events[0].Version() != 2 || events[1].Version() != 3 {
		t.Errorf("Expected versions 2 and 3, got %d and %d", events[0].Version(), events[1].Version())
	}
	if events[0].ID() == events[1].ID() {
		t.Errorf("Expected unique event ids")
	}
}

func TestInMemoryEventStore_Bounded(t *testing.T) {
	store := NewInMemoryEventStore(testLogger(), 2)

	for i := 0; i < 5; i++ {
		_ = store.AppendEvent("run-a", NewEvent(ForecastCompletedEvent, "run-a", i))
	}
	if store.Len() != 2 {
		t.Fatalf("Expected 2 retained events, got %d", store.Len())
	}

	events, _ := store.ReadEvents("run-a", 0)
	if len(events) != 2 || events[0].Version() != 4 {
		t.Errorf("Expected the two newest events, got %d starting at version %d", len(events), events[0].Version())
	}
}

func TestInMemoryEventStore_Subscribe(t *testing.T) {
	store := NewInMemoryEventStore(testLogger(), 0)
	handler := &recordingHandler{done: make(chan struct{}, 1)}
	if err := store.Subscribe([]string{ShortageIdentifiedEvent}, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	line := entities.ShortageLine{
		BOMLine:  entities.BOMLine{IngredientCode: "SUGAR"},
		Shortage: decimal.NewFromInt(-5),
		Status:   entities.StatusShort,
	}
	_ = store.AppendEvent("run-b", NewShortageIdentifiedEvent("run-b", 1, line))

	select {
	case <-handler.done:
	case <-time.After(time.Second):
		t.Fatal("Expected handler to be notified")
	}
}

func TestInMemoryEventStore_Export(t *testing.T) {
	store := NewInMemoryEventStore(testLogger(), 0)
	_ = store.AppendEvent("run-c", NewAdviceGeneratedEvent("run-c", 7, false))

	var buf bytes.Buffer
	if err := store.Export(&buf); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	var exported []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if len(exported) != 1 || exported[0]["type"] != AdviceGeneratedEvent {
		t.Errorf("Expected one advice event, got %v", exported)
	}
}

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type cachedItem struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type failingValue struct{}

func (failingValue) MarshalJSON() ([]byte, error) { return nil, errors.New("cannot encode") }

type recordingLogger struct{ msgs []string }

func (l *recordingLogger) Error(msg string, _ error) { l.msgs = append(l.msgs, msg) }

func TestTyped_RoundTrip(t *testing.T) {
	backend := newMemory(t, 10, nil)
	items := NewTyped[cachedItem](backend, "item:", nil)

	if _, ok := items.Get("1"); ok {
		t.Fatal("Expected a miss")
	}

	items.Set("1", cachedItem{ID: "1", Name: "Pilot"})
	got, ok := items.Get("1")
	if !ok || got.Name != "Pilot" {
		t.Fatalf("Expected Pilot, got %+v (hit=%v)", got, ok)
	}
	if _, ok := backend.Get("item:1"); !ok {
		t.Error("Expected the entry to be stored under its prefix")
	}

	items.Delete("1")
	if _, ok := items.Get("1"); ok {
		t.Error("Expected a miss after Delete")
	}
}

func TestTyped_PrefixesDoNotCollide(t *testing.T) {
	backend := newMemory(t, 10, nil)
	a := NewTyped[cachedItem](backend, "a:", nil)
	b := NewTyped[cachedItem](backend, "b:", nil)

	a.Set("1", cachedItem{Name: "from a"})
	if _, ok := b.Get("1"); ok {
		t.Error("Expected prefixes to isolate values")
	}
}

func TestTyped_CorruptEntryIsDropped(t *testing.T) {
	backend := newMemory(t, 10, nil)
	logger := &recordingLogger{}
	items := NewTyped[cachedItem](backend, "item:", logger)

	backend.Set("item:1", []byte("{not json"))
	if _, ok := items.Get("1"); ok {
		t.Fatal("Expected a corrupt entry to be a miss")
	}
	if _, ok := backend.Get("item:1"); ok {
		t.Error("Expected the corrupt entry to be deleted")
	}
	if len(logger.msgs) != 1 {
		t.Errorf("Expected one logged failure, got %v", logger.msgs)
	}
}

func TestTyped_UnencodableValue(t *testing.T) {
	backend, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer backend.Close()

	logger := &recordingLogger{}
	values := NewTyped[failingValue](backend, "v:", logger)
	values.Set("1", failingValue{})

	if backend.Len() != 0 {
		t.Error("Expected nothing to be stored")
	}
	if len(logger.msgs) != 1 {
		t.Errorf("Expected one logged failure, got %v", logger.msgs)
	}
}

func TestZerologLogger(t *testing.T) {
	var l Logger = ZerologLogger{Logger: zerolog.Nop()}
	l.Error("boom", errors.New("test"))
}

package playback

import (
	"errors"
	"testing"
)

func readyState() State {
	return State{Phase: PhaseReady, ItemID: "b", PreviousID: "a", NextID: "c", Generation: 4}
}

func hasEffect[T Effect](effects []Effect) (T, bool) {
	for _, e := range effects {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestReduce_Load(t *testing.T) {
	s, effects := Reduce(readyState(), Load{ItemID: "x", MediaSourceID: "ms"})

	if s.Phase != PhaseLoading || s.ItemID != "x" || s.Generation != 5 {
		t.Errorf("unexpected state %+v", s)
	}
	if s.PreviousID != "" || s.NextID != "" {
		t.Errorf("Expected neighbors to be cleared, got %+v", s)
	}
	if _, ok := hasEffect[cancelWindow](effects); !ok {
		t.Error("Expected the previous window to be cancelled")
	}
	if stop, ok := hasEffect[stopReport](effects); !ok || stop.itemID != "b" {
		t.Errorf("Expected a stop report for b, got %+v", effects)
	}
	load, ok := hasEffect[loadSession](effects)
	if !ok || load.itemID != "x" || load.mediaSourceID != "ms" || load.generation != 5 {
		t.Errorf("unexpected load effect %+v", load)
	}
}

func TestReduce_LoadFromIdleDoesNotReportStop(t *testing.T) {
	_, effects := Reduce(State{}, Load{ItemID: "x"})
	if _, ok := hasEffect[stopReport](effects); ok {
		t.Error("Expected no stop report when nothing was playing")
	}
}

func TestReduce_Navigation(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"next", PlayNext{}, "c"},
		{"previous", PlayPrevious{}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, effects := Reduce(readyState(), tt.action)
			if s.ItemID != tt.want || s.Phase != PhaseLoading || s.Generation != 5 {
				t.Errorf("unexpected state %+v", s)
			}
			if load, ok := hasEffect[loadSession](effects); !ok || load.itemID != tt.want {
				t.Errorf("unexpected effects %+v", effects)
			}
		})
	}
}

func TestReduce_NavigationWithoutNeighbor(t *testing.T) {
	s := State{Phase: PhaseReady, ItemID: "b", Generation: 1}

	for _, a := range []Action{PlayNext{}, PlayPrevious{}} {
		next, effects := Reduce(s, a)
		if next != s || effects != nil {
			t.Errorf("%T: expected no transition, got %+v %+v", a, next, effects)
		}
	}

	loading := readyState()
	loading.Phase = PhaseLoading
	if next, effects := Reduce(loading, PlayNext{}); next != loading || effects != nil {
		t.Errorf("Expected navigation to be ignored while loading, got %+v", next)
	}
}

func TestReduce_CompletionsAndGenerations(t *testing.T) {
	loading := State{Phase: PhaseLoading, ItemID: "b", Generation: 7}
	session := &Session{}

	t.Run("loaded", func(t *testing.T) {
		s, effects := Reduce(loading, sessionLoaded{generation: 7, session: session})
		if s.Phase != PhaseReady {
			t.Errorf("Phase = %s, want ready", s.Phase)
		}
		if _, ok := hasEffect[startReport](effects); !ok {
			t.Error("Expected a start report")
		}
		if r, ok := hasEffect[resolveNeighbors](effects); !ok || r.generation != 7 {
			t.Errorf("Expected neighbor resolution for generation 7, got %+v", effects)
		}
	})

	t.Run("stale loaded", func(t *testing.T) {
		s, effects := Reduce(loading, sessionLoaded{generation: 6, session: session})
		if s != loading || effects != nil {
			t.Errorf("Expected stale completion to be dropped, got %+v", s)
		}
	})

	t.Run("failed", func(t *testing.T) {
		boom := errors.New("boom")
		s, effects := Reduce(loading, loadFailed{generation: 7, err: boom})
		if s.Phase != PhaseFailed || !errors.Is(s.Err, boom) || effects != nil {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("stale failure", func(t *testing.T) {
		if s, _ := Reduce(loading, loadFailed{generation: 3, err: errors.New("old")}); s.Phase != PhaseLoading {
			t.Errorf("Expected stale failure to be dropped, got %s", s.Phase)
		}
	})

	t.Run("neighbors", func(t *testing.T) {
		ready := State{Phase: PhaseReady, ItemID: "b", Generation: 7}
		s, _ := Reduce(ready, neighborsResolved{
			generation: 7,
			previous:   &Session{Item: testItem("a")},
		})
		if s.PreviousID != "a" || s.NextID != "" {
			t.Errorf("unexpected neighbors %+v", s)
		}
		if s.HasNext() || !s.HasPrevious() {
			t.Errorf("unexpected neighbor flags %+v", s)
		}
	})

	t.Run("stale neighbors", func(t *testing.T) {
		ready := State{Phase: PhaseReady, ItemID: "b", Generation: 8}
		s, _ := Reduce(ready, neighborsResolved{generation: 7, next: &Session{Item: testItem("c")}})
		if s.NextID != "" {
			t.Errorf("Expected stale neighbors to be dropped, got %+v", s)
		}
	})
}

func TestReduce_Selection(t *testing.T) {
	_, effects := Reduce(readyState(), SelectSubtitle{Index: 3})
	sel, ok := hasEffect[selectStream](effects)
	if !ok || sel.kind != StreamKindSubtitle || sel.index != 3 {
		t.Errorf("unexpected effects %+v", effects)
	}

	if _, effects := Reduce(State{Phase: PhaseLoading}, SelectAudio{Index: 1}); effects != nil {
		t.Errorf("Expected selection to be ignored while loading, got %+v", effects)
	}
}

func TestReduce_Stop(t *testing.T) {
	s, effects := Reduce(readyState(), Stop{})
	if s.Phase != PhaseIdle || s.ItemID != "" || s.Generation != 5 {
		t.Errorf("unexpected state %+v", s)
	}
	if stop, ok := hasEffect[stopReport](effects); !ok || stop.itemID != "b" {
		t.Errorf("Expected a stop report, got %+v", effects)
	}

	idle := State{Generation: 2}
	if next, effects := Reduce(idle, Stop{}); next != idle || effects != nil {
		t.Errorf("Expected stop to be a no-op when idle, got %+v", next)
	}
}

func TestReduce_IsPure(t *testing.T) {
	in := readyState()
	a, _ := Reduce(in, PlayNext{})
	b, _ := Reduce(in, PlayNext{})
	if a != b {
		t.Errorf("Expected identical transitions, got %+v and %+v", a, b)
	}
	if in != readyState() {
		t.Error("Expected Reduce not to modify its input")
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseIdle:    "idle",
		PhaseLoading: "loading",
		PhaseReady:   "ready",
		PhaseFailed:  "failed",
		Phase(42):    "idle",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

package playback

// Phase is the lifecycle phase of the playback window.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the previous/current/next window. Sessions themselves live in the
// Manager's arena; the state only names them.
type State struct {
	Phase      Phase
	ItemID     string
	PreviousID string
	NextID     string
	// Generation increases on every navigation. Completions tagged with an
	// older generation belong to a superseded window and are dropped.
	Generation uint64
	Err        error
}

// HasPrevious reports whether a previous episode is resolved.
func (s State) HasPrevious() bool { return s.Phase == PhaseReady && s.PreviousID != "" }

// HasNext reports whether a next episode is resolved.
func (s State) HasNext() bool { return s.Phase == PhaseReady && s.NextID != "" }

// Action is an input of Reduce.
type Action interface {
	action()
}

// Load starts playback of an item, replacing the current window.
type Load struct {
	ItemID        string
	MediaSourceID string
}

// PlayNext shifts the window forward.
type PlayNext struct{}

// PlayPrevious shifts the window backward.
type PlayPrevious struct{}

// SelectAudio changes the audio stream of the current item.
type SelectAudio struct{ Index int }

// SelectSubtitle changes the subtitle stream of the current item.
type SelectSubtitle struct{ Index int }

// Stop ends playback.
type Stop struct{}

// Completions fed back by the effect runner.
type (
	sessionLoaded struct {
		generation uint64
		session    *Session
	}
	loadFailed struct {
		generation uint64
		err        error
	}
	// neighborsResolved carries the sessions built for the adjacent
	// episodes. A nil session leaves its slot empty.
	neighborsResolved struct {
		generation uint64
		previous   *Session
		next       *Session
	}
)

func (Load) action()              {}
func (PlayNext) action()          {}
func (PlayPrevious) action()      {}
func (SelectAudio) action()       {}
func (SelectSubtitle) action()    {}
func (Stop) action()              {}
func (sessionLoaded) action()     {}
func (loadFailed) action()        {}
func (neighborsResolved) action() {}

// Effect is a side effect requested by Reduce and run by the Manager.
type Effect interface {
	effect()
}

type (
	// cancelWindow cancels the in-flight work of every older generation.
	cancelWindow struct{ generation uint64 }
	// loadSession builds the session of the current item.
	loadSession struct {
		generation    uint64
		itemID        string
		mediaSourceID string
	}
	// resolveNeighbors fetches the adjacent episodes and builds their sessions.
	resolveNeighbors struct {
		generation uint64
		itemID     string
	}
	startReport  struct{ itemID string }
	stopReport   struct{ itemID string }
	selectStream struct {
		kind  StreamKind
		index int
	}
)

func (cancelWindow) effect()     {}
func (loadSession) effect()      {}
func (resolveNeighbors) effect() {}
func (startReport) effect()      {}
func (stopReport) effect()       {}
func (selectStream) effect()     {}

// Reduce is the transition function of the playback window. It has no side
// effects: the effects it returns are run by the caller.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case Load:
		next := State{Phase: PhaseLoading, ItemID: a.ItemID, Generation: s.Generation + 1}
		effects := leave(s, next.Generation)
		return next, append(effects, loadSession{generation: next.Generation, itemID: a.ItemID, mediaSourceID: a.MediaSourceID})

	case PlayNext:
		if !s.HasNext() {
			return s, nil
		}
		return navigate(s, s.NextID)

	case PlayPrevious:
		if !s.HasPrevious() {
			return s, nil
		}
		return navigate(s, s.PreviousID)

	case SelectAudio:
		if s.Phase != PhaseReady {
			return s, nil
		}
		return s, []Effect{selectStream{kind: StreamKindAudio, index: a.Index}}

	case SelectSubtitle:
		if s.Phase != PhaseReady {
			return s, nil
		}
		return s, []Effect{selectStream{kind: StreamKindSubtitle, index: a.Index}}

	case Stop:
		if s.Phase == PhaseIdle {
			return s, nil
		}
		next := State{Phase: PhaseIdle, Generation: s.Generation + 1}
		return next, leave(s, next.Generation)

	case sessionLoaded:
		if a.generation != s.Generation || s.Phase != PhaseLoading {
			return s, nil
		}
		s.Phase = PhaseReady
		s.Err = nil
		return s, []Effect{
			startReport{itemID: s.ItemID},
			resolveNeighbors{generation: s.Generation, itemID: s.ItemID},
		}

	case loadFailed:
		if a.generation != s.Generation || s.Phase != PhaseLoading {
			return s, nil
		}
		s.Phase = PhaseFailed
		s.Err = a.err
		return s, nil

	case neighborsResolved:
		if a.generation != s.Generation || s.Phase != PhaseReady {
			return s, nil
		}
		s.PreviousID, s.NextID = "", ""
		if a.previous != nil {
			s.PreviousID = a.previous.Item.ID
		}
		if a.next != nil {
			s.NextID = a.next.Item.ID
		}
		return s, nil
	}

	return s, nil
}

// navigate moves the window onto a resolved neighbor.
func navigate(s State, itemID string) (State, []Effect) {
	next := State{Phase: PhaseLoading, ItemID: itemID, Generation: s.Generation + 1}
	effects := leave(s, next.Generation)
	return next, append(effects, loadSession{generation: next.Generation, itemID: itemID})
}

// leave returns the effects of abandoning the current window.
func leave(s State, generation uint64) []Effect {
	effects := []Effect{cancelWindow{generation: generation}}
	if s.Phase == PhaseReady {
		effects = append(effects, stopReport{itemID: s.ItemID})
	}
	return effects
}

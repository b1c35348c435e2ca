package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/config"
	"github.com/Belphemur/jellyplay/internal/metrics"
	"github.com/Belphemur/jellyplay/internal/models"
	"github.com/Belphemur/jellyplay/internal/profile"
)

// Fetcher is the part of the server API the Manager needs.
type Fetcher interface {
	GetItem(ctx context.Context, itemID string) (*models.BaseItem, error)
	GetPlaybackInfo(ctx context.Context, itemID string, req models.PlaybackInfoRequest) (*models.PlaybackInfoResponse, error)
	GetAdjacentEpisodes(ctx context.Context, seriesID, itemID string) ([]models.BaseItem, error)
}

// ManagerConfig holds the connection and user settings sessions are built with.
type ManagerConfig struct {
	BaseURL      string
	AccessToken  string
	DeviceID     string
	UserID       string
	MaxBitrate   int
	NativePlayer bool
	Preferences  Preferences
}

// Manager runs the playback reducer: it applies actions, runs the effects
// Reduce asks for and feeds their completions back.
//
// Sessions are kept in an arena keyed by item ID. The state only names the
// previous, current and next items, so neighbors never own each other.
type Manager struct {
	fetcher  Fetcher
	reporter *Reporter
	cfg      ManagerConfig

	mu       sync.Mutex
	state    State
	sessions map[string]*Session
	position int
	changed  chan struct{}

	// windowCtx is cancelled when its generation is superseded.
	windowCtx    context.Context
	windowCancel context.CancelFunc

	wg sync.WaitGroup
}

// NewManager creates an idle Manager. reporter may be nil to disable telemetry.
func NewManager(fetcher Fetcher, reporter *Reporter, cfg ManagerConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		fetcher:      fetcher,
		reporter:     reporter,
		cfg:          cfg,
		sessions:     make(map[string]*Session),
		changed:      make(chan struct{}),
		windowCtx:    ctx,
		windowCancel: cancel,
	}
}

// Dispatch applies an action.
func (m *Manager) Dispatch(a Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchLocked(a)
}

func (m *Manager) dispatchLocked(a Action) {
	logger := config.GetLogger()

	if gen, ok := completionGeneration(a); ok && gen != m.state.Generation {
		metrics.StaleCompletionsTotal.Inc()
		logger.Debug().Uint64("generation", gen).Uint64("current", m.state.Generation).Msg("Dropping stale completion")
		return
	}

	prev := m.state
	next, effects := Reduce(m.state, a)
	m.state = next

	switch a := a.(type) {
	case sessionLoaded:
		if next.Phase == PhaseReady && prev.Phase == PhaseLoading {
			m.sessions[a.session.Item.ID] = a.session
			metrics.PlaybackDecisionsTotal.WithLabelValues(a.session.StreamType.String()).Inc()
			logger.Info().
				Str("itemID", a.session.Item.ID).
				Str("mediaSourceID", a.session.MediaSource.ID).
				Str("streamType", a.session.StreamType.String()).
				Msg("Playback session ready")
		}
	case loadFailed:
		if next.Phase == PhaseFailed {
			metrics.PlaybackLoadFailuresTotal.WithLabelValues("primary").Inc()
			logger.Error().Err(a.err).Str("itemID", next.ItemID).Msg("Failed to load playback session")
			if !errors.Is(a.err, context.Canceled) {
				sentry.CaptureException(a.err)
			}
		}
	case neighborsResolved:
		if next.Phase == PhaseReady {
			m.storeNeighbors(a.previous, a.next)
		}
	}

	for _, e := range effects {
		m.run(e)
	}

	close(m.changed)
	m.changed = make(chan struct{})
}

func completionGeneration(a Action) (uint64, bool) {
	switch a := a.(type) {
	case sessionLoaded:
		return a.generation, true
	case loadFailed:
		return a.generation, true
	case neighborsResolved:
		return a.generation, true
	}
	return 0, false
}

// run executes one effect. m.mu must be held; network effects run in their
// own goroutine and report back through Dispatch.
func (m *Manager) run(e Effect) {
	switch e := e.(type) {
	case cancelWindow:
		m.windowCancel()
		m.windowCtx, m.windowCancel = context.WithCancel(context.Background())

	case loadSession:
		ctx := m.windowCtx
		if cached, ok := m.sessions[e.itemID]; ok && (e.mediaSourceID == "" || cached.MediaSource.ID == e.mediaSourceID) {
			m.spawn(func() { m.Dispatch(sessionLoaded{generation: e.generation, session: cached}) })
			return
		}
		m.spawn(func() {
			s, err := m.buildSession(ctx, e.itemID, e.mediaSourceID, nil)
			if err != nil {
				m.Dispatch(loadFailed{generation: e.generation, err: err})
				return
			}
			m.Dispatch(sessionLoaded{generation: e.generation, session: s})
		})

	case resolveNeighbors:
		current, ok := m.sessions[e.itemID]
		if !ok {
			return
		}
		ctx, item := m.windowCtx, current.Item
		m.spawn(func() { m.resolveNeighbors(ctx, e.generation, item) })

	case startReport:
		m.position = 0
		if s, ok := m.sessions[e.itemID]; ok && m.reporter != nil {
			m.reporter.Start(s.progressInfo(m.position, false))
		}

	case stopReport:
		if s, ok := m.sessions[e.itemID]; ok && m.reporter != nil {
			m.reporter.Stop(s.stopInfo(m.position))
		}

	case selectStream:
		current, ok := m.sessions[m.state.ItemID]
		if !ok {
			return
		}
		if err := current.Select(e.kind, e.index); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("kind", e.kind.String()).Msg("Ignoring invalid stream selection")
			return
		}
		if m.cfg.Preferences.SyncStreams {
			for _, id := range []string{m.state.PreviousID, m.state.NextID} {
				if neighbor, ok := m.sessions[id]; ok {
					syncInto(current, neighbor, e.kind)
				}
			}
		}
	}
}

func (m *Manager) spawn(f func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		f()
	}()
}

// buildSession fetches what a session needs and negotiates it. item may be
// passed when it is already known, skipping the item fetch.
func (m *Manager) buildSession(ctx context.Context, itemID, mediaSourceID string, item *models.BaseItem) (*Session, error) {
	if item == nil {
		fetched, err := m.fetcher.GetItem(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get item %s: %w", itemID, err)
		}
		item = fetched
	}

	deviceProfile := profile.Build(m.cfg.MaxBitrate, m.cfg.NativePlayer)
	req := models.PlaybackInfoRequest{
		UserID:              m.cfg.UserID,
		MaxStreamingBitrate: m.cfg.MaxBitrate,
		MediaSourceID:       mediaSourceID,
		DeviceProfile:       &deviceProfile,
		EnableDirectPlay:    true,
		EnableDirectStream:  true,
		EnableTranscoding:   true,
		AutoOpenLiveStream:  true,
	}
	if item.UserData != nil {
		req.StartTimeTicks = item.UserData.PlaybackPositionTicks
	}

	info, err := m.fetcher.GetPlaybackInfo(ctx, item.ID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback info for item %s: %w", item.ID, err)
	}

	return NewSession(SessionInput{
		BaseURL:       m.cfg.BaseURL,
		AccessToken:   m.cfg.AccessToken,
		DeviceID:      m.cfg.DeviceID,
		Item:          *item,
		Info:          *info,
		Profile:       deviceProfile,
		MediaSourceID: mediaSourceID,
		Preferences:   m.cfg.Preferences,
	})
}

// resolveNeighbors looks up the adjacent episodes of item and builds both
// neighbor sessions concurrently. Every failure here is non-fatal and only
// leaves the slot empty.
func (m *Manager) resolveNeighbors(ctx context.Context, generation uint64, item models.BaseItem) {
	logger := config.GetLogger()

	if !item.IsEpisode() {
		metrics.AdjacentLookupsTotal.WithLabelValues("not_episode").Inc()
		m.Dispatch(neighborsResolved{generation: generation})
		return
	}

	items, err := m.fetcher.GetAdjacentEpisodes(ctx, item.SeriesID, item.ID)
	if err != nil {
		if ctx.Err() == nil {
			metrics.AdjacentLookupsTotal.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Str("itemID", item.ID).Msg("Failed to look up adjacent episodes")
		}
		m.Dispatch(neighborsResolved{generation: generation})
		return
	}

	prevItem, nextItem := ResolveAdjacent(items, item.ID)

	var previous, next *Session
	var g errgroup.Group
	build := func(neighbor *models.BaseItem, slot **Session) {
		if neighbor == nil {
			return
		}
		g.Go(func() error {
			s, err := m.buildSession(ctx, neighbor.ID, "", neighbor)
			if err != nil {
				if ctx.Err() == nil {
					metrics.PlaybackLoadFailuresTotal.WithLabelValues("neighbor").Inc()
					logger.Warn().Err(err).Str("itemID", neighbor.ID).Msg("Failed to prepare adjacent episode")
				}
				return nil
			}
			*slot = s
			return nil
		})
	}
	build(prevItem, &previous)
	build(nextItem, &next)
	_ = g.Wait()

	metrics.AdjacentLookupsTotal.WithLabelValues(neighborResult(previous, next)).Inc()
	m.Dispatch(neighborsResolved{generation: generation, previous: previous, next: next})
}

func neighborResult(previous, next *Session) string {
	switch {
	case previous != nil && next != nil:
		return "both"
	case previous != nil:
		return "previous"
	case next != nil:
		return "next"
	default:
		return "none"
	}
}

// storeNeighbors replaces the arena with the current window. m.mu must be held.
func (m *Manager) storeNeighbors(previous, next *Session) {
	current := m.sessions[m.state.ItemID]
	sessions := make(map[string]*Session, 3)
	if current != nil {
		sessions[current.Item.ID] = current
	}
	for _, s := range []*Session{previous, next} {
		if s == nil {
			continue
		}
		if current != nil && m.cfg.Preferences.SyncStreams {
			syncInto(current, s, StreamKindAudio)
			syncInto(current, s, StreamKindSubtitle)
		}
		sessions[s.Item.ID] = s
	}
	m.sessions = sessions
}

// syncInto applies the selection of source to its equivalent stream in
// target. It does not propagate any further.
func syncInto(source, target *Session, kind StreamKind) {
	index, ok := SyncSelection(source.Streams(kind), source.Selected(kind), target.Streams(kind))
	if !ok {
		return
	}
	if err := target.Select(kind, index); err != nil {
		logger := config.GetLogger()
		logger.Debug().Err(err).Str("itemID", target.Item.ID).Msg("Failed to sync stream selection")
	}
}

// Load starts playback of an item and returns the generation of the new window.
func (m *Manager) Load(itemID, mediaSourceID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchLocked(Load{ItemID: itemID, MediaSourceID: mediaSourceID})
	return m.state.Generation
}

// PlayNext moves to the next episode. It fails when no next episode is resolved.
func (m *Manager) PlayNext() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HasNext() {
		return 0, &apperrors.ErrNoNeighbor{Direction: "next", ItemID: m.state.ItemID}
	}
	m.dispatchLocked(PlayNext{})
	return m.state.Generation, nil
}

// PlayPrevious moves to the previous episode. It fails when no previous episode is resolved.
func (m *Manager) PlayPrevious() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HasPrevious() {
		return 0, &apperrors.ErrNoNeighbor{Direction: "previous", ItemID: m.state.ItemID}
	}
	m.dispatchLocked(PlayPrevious{})
	return m.state.Generation, nil
}

// SelectAudio selects an audio stream of the current item.
func (m *Manager) SelectAudio(index int) error {
	return m.selectStream(StreamKindAudio, index)
}

// SelectSubtitle selects a subtitle stream of the current item, or none with NoStream.
func (m *Manager) SelectSubtitle(index int) error {
	return m.selectStream(StreamKindSubtitle, index)
}

func (m *Manager) selectStream(kind StreamKind, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.currentLocked()
	if err != nil {
		return err
	}
	if !(kind == StreamKindSubtitle && index == NoStream) && !hasIndex(current.Streams(kind), index) {
		return apperrors.NewNotFoundError(kind.String()+" stream", index)
	}
	if kind == StreamKindSubtitle {
		m.dispatchLocked(SelectSubtitle{Index: index})
	} else {
		m.dispatchLocked(SelectAudio{Index: index})
	}
	return nil
}

// ReportProgress records the playback position of the current item and
// schedules a progress report.
func (m *Manager) ReportProgress(positionSeconds int, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.currentLocked()
	if err != nil {
		return err
	}
	m.position = positionSeconds
	if m.reporter != nil {
		m.reporter.Progress(current.progressInfo(positionSeconds, paused))
	}
	return nil
}

// Stop ends playback at positionSeconds and empties the arena.
func (m *Manager) Stop(positionSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.position = positionSeconds
	m.dispatchLocked(Stop{})
	m.sessions = make(map[string]*Session)
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the current session.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.currentLocked()
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Session returns a copy of a session of the window, or nil.
func (m *Manager) Session(itemID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[itemID]; ok {
		return s.Clone()
	}
	return nil
}

func (m *Manager) currentLocked() (*Session, error) {
	if m.state.Phase != PhaseReady {
		return nil, apperrors.NewNotFoundError("playback session", nil)
	}
	s, ok := m.sessions[m.state.ItemID]
	if !ok {
		return nil, apperrors.NewNotFoundError("playback session", m.state.ItemID)
	}
	return s, nil
}

// AwaitSettled blocks until the window of generation leaves the loading
// phase or is superseded, and returns the state at that point.
func (m *Manager) AwaitSettled(ctx context.Context, generation uint64) (State, error) {
	for {
		m.mu.Lock()
		s, changed := m.state, m.changed
		m.mu.Unlock()

		if s.Generation != generation || s.Phase != PhaseLoading {
			return s, nil
		}

		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-changed:
		}
	}
}

// Wait blocks until every effect started so far, and those they started, completed.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels in-flight work and waits for it.
func (m *Manager) Close() {
	m.mu.Lock()
	m.windowCancel()
	m.mu.Unlock()
	m.wg.Wait()
}

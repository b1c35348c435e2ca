package grpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/models"
	"github.com/Belphemur/jellyplay/internal/playback"
	"github.com/Belphemur/jellyplay/internal/testutil"
)

// fakeFetcher serves a three episode series s1 (e1, e2, e3) and a movie m1.
type fakeFetcher struct {
	mu      sync.Mutex
	items   map[string]models.BaseItem
	order   []string
	infoErr error
}

func newFakeFetcher() *fakeFetcher {
	f := &fakeFetcher{items: make(map[string]models.BaseItem)}
	for _, item := range testutil.GenerateSeason("s1", "The Show", "e", 3) {
		f.items[item.ID] = item
		f.order = append(f.order, item.ID)
	}
	f.items["m1"] = testutil.GenerateMovie("m1", "The Movie", 2020)
	return f
}

func (f *fakeFetcher) GetItem(_ context.Context, itemID string) (*models.BaseItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return nil, apperrors.NewItemNotFoundError(itemID)
	}
	return &item, nil
}

func (f *fakeFetcher) GetPlaybackInfo(_ context.Context, itemID string, _ models.PlaybackInfoRequest) (*models.PlaybackInfoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &models.PlaybackInfoResponse{
		MediaSources:  f.items[itemID].MediaSources,
		PlaySessionID: "ps-" + itemID,
	}, nil
}

func (f *fakeFetcher) GetAdjacentEpisodes(_ context.Context, _, itemID string) ([]models.BaseItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range f.order {
		if id != itemID {
			continue
		}
		var out []models.BaseItem
		for j := i - 1; j <= i+1; j++ {
			if j >= 0 && j < len(f.order) {
				out = append(out, f.items[f.order[j]])
			}
		}
		return out, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T, f *fakeFetcher) (PlaybackServiceServer, *playback.Manager) {
	t.Helper()
	m := playback.NewManager(f, nil, playback.ManagerConfig{
		BaseURL:     "http://jf.local",
		AccessToken: "tok",
		DeviceID:    "dev",
		UserID:      "user",
		MaxBitrate:  10_000_000,
	})
	t.Cleanup(m.Close)
	return NewServer(m, ServerConfig{BaseURL: "http://jf.local", MaxBitrate: 10_000_000, PosterWidth: 300}), m
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func field(s *structpb.Struct, path ...string) *structpb.Value {
	v := structpb.NewStructValue(s)
	for _, p := range path {
		v = v.GetStructValue().GetFields()[p]
	}
	return v
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Errorf("code = %v, want %v (err: %v)", got, want, err)
	}
}

// openSettled opens itemID and waits for the neighbor lookup to finish.
func openSettled(t *testing.T, srv PlaybackServiceServer, m *playback.Manager, itemID string) *structpb.Struct {
	t.Helper()
	out, err := srv.Open(context.Background(), mustStruct(t, map[string]any{"itemId": itemID}))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", itemID, err)
	}
	m.Wait()
	return out
}

func TestServer_Open(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())

	out := openSettled(t, srv, m, "e2")
	if got := field(out, "state", "phase").GetStringValue(); got != "ready" {
		t.Errorf("phase = %q, want ready", got)
	}
	if got := field(out, "session", "playSessionId").GetStringValue(); got != "ps-e2" {
		t.Errorf("playSessionId = %q", got)
	}
	if got := field(out, "session", "streamType").GetStringValue(); got != "directPlay" {
		t.Errorf("streamType = %q, want directPlay", got)
	}
	if got := field(out, "artwork", "current", "title").GetStringValue(); got != "The Show" {
		t.Errorf("current title = %q", got)
	}

	state, err := srv.State(context.Background(), mustStruct(t, nil))
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if !field(state, "state", "hasNext").GetBoolValue() || !field(state, "state", "hasPrevious").GetBoolValue() {
		t.Errorf("Expected both neighbors, got %v", field(state, "state"))
	}
	if got := field(state, "artwork", "next", "subtitle").GetStringValue(); got != "S1:E3 · Episode 3" {
		t.Errorf("next subtitle = %q", got)
	}
}

func TestServer_OpenErrors(t *testing.T) {
	t.Run("missing item id", func(t *testing.T) {
		srv, _ := newTestServer(t, newFakeFetcher())
		_, err := srv.Open(context.Background(), mustStruct(t, nil))
		assertCode(t, err, codes.InvalidArgument)
	})

	t.Run("unknown item", func(t *testing.T) {
		srv, _ := newTestServer(t, newFakeFetcher())
		_, err := srv.Open(context.Background(), mustStruct(t, map[string]any{"itemId": "nope"}))
		assertCode(t, err, codes.NotFound)
	})

	t.Run("no media source", func(t *testing.T) {
		f := newFakeFetcher()
		f.infoErr = &apperrors.ErrNoMediaSource{ItemID: "m1"}
		srv, _ := newTestServer(t, f)
		_, err := srv.Open(context.Background(), mustStruct(t, map[string]any{"itemId": "m1"}))
		assertCode(t, err, codes.FailedPrecondition)
	})

	t.Run("server failure", func(t *testing.T) {
		f := newFakeFetcher()
		f.infoErr = errors.New("boom")
		srv, _ := newTestServer(t, f)
		_, err := srv.Open(context.Background(), mustStruct(t, map[string]any{"itemId": "m1"}))
		assertCode(t, err, codes.Internal)
	})
}

func TestServer_OpenWithoutWait(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())

	out, err := srv.Open(context.Background(), mustStruct(t, map[string]any{"itemId": "m1", "wait": false}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := field(out, "state", "itemId").GetStringValue(); got != "m1" {
		t.Errorf("itemId = %q, want m1", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := m.AwaitSettled(ctx, m.State().Generation); err != nil {
		t.Fatalf("AwaitSettled: %v", err)
	}
	if m.State().Phase != playback.PhaseReady {
		t.Errorf("phase = %s, want ready", m.State().Phase)
	}
}

func TestServer_Navigation(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())
	openSettled(t, srv, m, "e1")

	_, err := srv.PlayPrevious(context.Background(), mustStruct(t, nil))
	assertCode(t, err, codes.FailedPrecondition)

	out, err := srv.PlayNext(context.Background(), mustStruct(t, nil))
	if err != nil {
		t.Fatalf("PlayNext failed: %v", err)
	}
	if got := field(out, "state", "itemId").GetStringValue(); got != "e2" {
		t.Errorf("itemId = %q, want e2", got)
	}
	m.Wait()

	out, err = srv.PlayPrevious(context.Background(), mustStruct(t, nil))
	if err != nil {
		t.Fatalf("PlayPrevious failed: %v", err)
	}
	if got := field(out, "state", "itemId").GetStringValue(); got != "e1" {
		t.Errorf("itemId = %q, want e1", got)
	}
}

func TestServer_SelectStreams(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())
	openSettled(t, srv, m, "e1")

	out, err := srv.SelectAudio(context.Background(), mustStruct(t, map[string]any{"index": 2}))
	if err != nil {
		t.Fatalf("SelectAudio failed: %v", err)
	}
	if got := field(out, "session", "selectedAudioIndex").GetNumberValue(); got != 2 {
		t.Errorf("selectedAudioIndex = %v, want 2", got)
	}

	out, err = srv.SelectSubtitle(context.Background(), mustStruct(t, map[string]any{"index": -1}))
	if err != nil {
		t.Fatalf("SelectSubtitle(-1) failed: %v", err)
	}
	if got := field(out, "session", "selectedSubtitleIndex").GetNumberValue(); got != -1 {
		t.Errorf("selectedSubtitleIndex = %v, want -1", got)
	}

	_, err = srv.SelectAudio(context.Background(), mustStruct(t, map[string]any{"index": 9}))
	assertCode(t, err, codes.NotFound)

	_, err = srv.SelectAudio(context.Background(), mustStruct(t, nil))
	assertCode(t, err, codes.InvalidArgument)

	_, err = srv.SelectSubtitle(context.Background(), mustStruct(t, map[string]any{"index": 1.5}))
	assertCode(t, err, codes.InvalidArgument)
}

func TestServer_ProgressAndChapters(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())

	_, err := srv.ReportProgress(context.Background(), mustStruct(t, map[string]any{"positionSeconds": 1}))
	assertCode(t, err, codes.NotFound)

	openSettled(t, srv, m, "e1")

	out, err := srv.ReportProgress(context.Background(), mustStruct(t, map[string]any{"positionSeconds": 75, "paused": true}))
	if err != nil {
		t.Fatalf("ReportProgress failed: %v", err)
	}
	if got := field(out, "chapter", "chapter", "Name").GetStringValue(); got != "Part 1" {
		t.Errorf("chapter = %q, want Part 1", got)
	}

	out, err = srv.ChapterAt(context.Background(), mustStruct(t, map[string]any{"seconds": 10}))
	if err != nil {
		t.Fatalf("ChapterAt failed: %v", err)
	}
	if got := field(out, "chapter", "end").GetNumberValue(); got != 60 {
		t.Errorf("chapter end = %v, want 60", got)
	}

	out, err = srv.ChapterAt(context.Background(), mustStruct(t, map[string]any{"seconds": 9999}))
	if err != nil {
		t.Fatalf("ChapterAt failed: %v", err)
	}
	if _, isNull := field(out, "chapter").GetKind().(*structpb.Value_NullValue); !isNull {
		t.Errorf("Expected a null chapter past the runtime, got %v", field(out, "chapter"))
	}

	_, err = srv.ChapterAt(context.Background(), mustStruct(t, map[string]any{"seconds": "ten"}))
	assertCode(t, err, codes.InvalidArgument)
}

func TestServer_Stop(t *testing.T) {
	srv, m := newTestServer(t, newFakeFetcher())
	openSettled(t, srv, m, "m1")

	out, err := srv.Stop(context.Background(), mustStruct(t, map[string]any{"positionSeconds": 30}))
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := field(out, "state", "phase").GetStringValue(); got != "idle" {
		t.Errorf("phase = %q, want idle", got)
	}
	if _, ok := out.GetFields()["session"]; ok {
		t.Error("Expected no session after Stop")
	}
}

func TestServer_BuildDeviceProfile(t *testing.T) {
	srv, _ := newTestServer(t, newFakeFetcher())

	out, err := srv.BuildDeviceProfile(context.Background(), mustStruct(t, nil))
	if err != nil {
		t.Fatalf("BuildDeviceProfile failed: %v", err)
	}
	if got := field(out, "MaxStreamingBitrate").GetNumberValue(); got != 10_000_000 {
		t.Errorf("MaxStreamingBitrate = %v, want the configured bitrate", got)
	}

	out, err = srv.BuildDeviceProfile(context.Background(), mustStruct(t, map[string]any{"maxBitrate": 4_000_000, "nativePlayer": true}))
	if err != nil {
		t.Fatalf("BuildDeviceProfile failed: %v", err)
	}
	if got := field(out, "MaxStreamingBitrate").GetNumberValue(); got != 4_000_000 {
		t.Errorf("MaxStreamingBitrate = %v, want 4000000", got)
	}
	if len(field(out, "DirectPlayProfiles").GetListValue().GetValues()) == 0 {
		t.Error("Expected direct play profiles")
	}
}

func TestServer_ToStatus(t *testing.T) {
	s := &server{logger: zerolog.Nop()}
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", apperrors.NewItemNotFoundError("x"), codes.NotFound},
		{"wrapped not found", fmt.Errorf("load: %w", apperrors.NewItemNotFoundError("x")), codes.NotFound},
		{"no neighbor", &apperrors.ErrNoNeighbor{Direction: "next"}, codes.FailedPrecondition},
		{"no media source", &apperrors.ErrNoMediaSource{}, codes.FailedPrecondition},
		{"canceled", context.Canceled, codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unexpected status", &apperrors.ErrUnexpectedStatus{StatusCode: 500}, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, s.toStatus(tt.err, "op"), tt.want)
		})
	}
}

package grpc

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/jellyplay/internal/playback"
	"github.com/Belphemur/jellyplay/internal/poster"
)

// toStruct converts any JSON-encodable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}
	return out, nil
}

type stateView struct {
	Phase       string `json:"phase"`
	ItemID      string `json:"itemId,omitempty"`
	PreviousID  string `json:"previousId,omitempty"`
	NextID      string `json:"nextId,omitempty"`
	Generation  uint64 `json:"generation"`
	HasPrevious bool   `json:"hasPrevious"`
	HasNext     bool   `json:"hasNext"`
	Error       string `json:"error,omitempty"`
}

func convertState(s playback.State) stateView {
	v := stateView{
		Phase:       s.Phase.String(),
		ItemID:      s.ItemID,
		PreviousID:  s.PreviousID,
		NextID:      s.NextID,
		Generation:  s.Generation,
		HasPrevious: s.HasPrevious(),
		HasNext:     s.HasNext(),
	}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return v
}

type cardView struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Images   []string `json:"images"`
}

func convertCard(p poster.Poster, baseURL string, maxWidth int) *cardView {
	return &cardView{
		Title:    p.DisplayTitle(),
		Subtitle: p.Subtitle(),
		Images:   poster.URLs(p, baseURL, maxWidth),
	}
}

type artworkView struct {
	Current  *cardView `json:"current,omitempty"`
	Previous *cardView `json:"previous,omitempty"`
	Next     *cardView `json:"next,omitempty"`
}

type planView struct {
	State   stateView         `json:"state"`
	Session *playback.Session `json:"session,omitempty"`
	Artwork artworkView       `json:"artwork"`
}

// window is the current session and its neighbors, any of which may be nil.
type window struct {
	current, previous, next *playback.Session
}

func (s *server) convertPlan(state playback.State, w window) planView {
	plan := planView{State: convertState(state), Session: w.current}
	if w.current != nil {
		plan.Artwork.Current = convertCard(poster.New(w.current.Item, poster.ShapePortrait), s.cfg.BaseURL, s.cfg.PosterWidth)
	}
	if w.previous != nil {
		plan.Artwork.Previous = convertCard(poster.New(w.previous.Item, poster.ShapeLandscape), s.cfg.BaseURL, s.cfg.PosterWidth)
	}
	if w.next != nil {
		plan.Artwork.Next = convertCard(poster.New(w.next.Item, poster.ShapeLandscape), s.cfg.BaseURL, s.cfg.PosterWidth)
	}
	return plan
}

// stringField returns the string value of key, or "".
func stringField(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// boolField returns the bool value of key, or def when absent.
func boolField(in *structpb.Struct, key string, def bool) bool {
	v, ok := in.GetFields()[key]
	if !ok {
		return def
	}
	return v.GetBoolValue()
}

// intField returns the integral number stored under key. ok is false when
// the key is absent.
func intField(in *structpb.Struct, key string) (value int, ok bool, err error) {
	v, present := in.GetFields()[key]
	if !present {
		return 0, false, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, true, fmt.Errorf("%s must be an integer, got %v", key, f)
	}
	return int(f), true, nil
}

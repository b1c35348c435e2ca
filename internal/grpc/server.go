package grpc

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/config"
	"github.com/Belphemur/jellyplay/internal/playback"
	"github.com/Belphemur/jellyplay/internal/profile"
)

// Player is the playback window driven by the service. *playback.Manager implements it.
type Player interface {
	Load(itemID, mediaSourceID string) uint64
	PlayNext() (uint64, error)
	PlayPrevious() (uint64, error)
	SelectAudio(index int) error
	SelectSubtitle(index int) error
	ReportProgress(positionSeconds int, paused bool) error
	Stop(positionSeconds int)
	State() playback.State
	Current() (*playback.Session, error)
	Session(itemID string) *playback.Session
	AwaitSettled(ctx context.Context, generation uint64) (playback.State, error)
}

// ServerConfig holds what the service needs besides the player.
type ServerConfig struct {
	BaseURL      string
	MaxBitrate   int
	NativePlayer bool
	// PosterWidth is the maxWidth requested for artwork. Zero lets the server choose.
	PosterWidth int
}

type server struct {
	player Player
	cfg    ServerConfig
	logger zerolog.Logger
}

// NewServer creates the playback service.
func NewServer(p Player, cfg ServerConfig) PlaybackServiceServer {
	return &server{
		player: p,
		cfg:    cfg,
		logger: config.GetLogger(),
	}
}

func (s *server) BuildDeviceProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	maxBitrate := s.cfg.MaxBitrate
	if v, ok, err := intField(req, "maxBitrate"); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	} else if ok && v > 0 {
		maxBitrate = v
	}
	native := boolField(req, "nativePlayer", s.cfg.NativePlayer)

	s.logger.Debug().Int("max_bitrate", maxBitrate).Bool("native_player", native).Msg("BuildDeviceProfile called")
	return s.respond(profile.Build(maxBitrate, native))
}

func (s *server) Open(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID := stringField(req, "itemId")
	if itemID == "" {
		return nil, status.Error(codes.InvalidArgument, "itemId is required")
	}
	mediaSourceID := stringField(req, "mediaSourceId")

	s.logger.Debug().Str("item_id", itemID).Str("media_source_id", mediaSourceID).Msg("Open called")
	gen := s.player.Load(itemID, mediaSourceID)
	return s.settle(ctx, req, gen)
}

func (s *server) PlayNext(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gen, err := s.player.PlayNext()
	if err != nil {
		return nil, s.toStatus(err, "failed to play next episode")
	}
	return s.settle(ctx, req, gen)
}

func (s *server) PlayPrevious(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gen, err := s.player.PlayPrevious()
	if err != nil {
		return nil, s.toStatus(err, "failed to play previous episode")
	}
	return s.settle(ctx, req, gen)
}

func (s *server) SelectAudio(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.selectStream(req, playback.StreamKindAudio, s.player.SelectAudio)
}

func (s *server) SelectSubtitle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.selectStream(req, playback.StreamKindSubtitle, s.player.SelectSubtitle)
}

func (s *server) selectStream(req *structpb.Struct, kind playback.StreamKind, apply func(int) error) (*structpb.Struct, error) {
	index, ok, err := intField(req, "index")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "index is required")
	}

	s.logger.Debug().Str("kind", kind.String()).Int("index", index).Msg("Select stream called")
	if err := apply(index); err != nil {
		return nil, s.toStatus(err, "failed to select "+kind.String()+" stream")
	}
	return s.respond(s.convertPlan(s.player.State(), s.window()))
}

func (s *server) ReportProgress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	position, ok, err := intField(req, "positionSeconds")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "positionSeconds is required")
	}
	if err := s.player.ReportProgress(position, boolField(req, "paused", false)); err != nil {
		return nil, s.toStatus(err, "failed to report progress")
	}
	return s.chapterResponse(position)
}

func (s *server) Stop(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	position, _, err := intField(req, "positionSeconds")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Debug().Int("position_seconds", position).Msg("Stop called")
	s.player.Stop(position)
	return s.respond(planView{State: convertState(s.player.State())})
}

func (s *server) ChapterAt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	seconds, ok, err := intField(req, "seconds")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "seconds is required")
	}
	return s.chapterResponse(seconds)
}

func (s *server) State(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.respond(s.convertPlan(s.player.State(), s.window()))
}

// settle waits for a load of generation gen unless the request sets wait to
// false, then answers with the plan.
func (s *server) settle(ctx context.Context, req *structpb.Struct, gen uint64) (*structpb.Struct, error) {
	state := s.player.State()
	if boolField(req, "wait", true) {
		var err error
		if state, err = s.player.AwaitSettled(ctx, gen); err != nil {
			return nil, s.toStatus(err, "playback did not settle")
		}
		if state.Generation != gen {
			return nil, status.Error(codes.Aborted, "superseded by a newer request")
		}
		if state.Phase == playback.PhaseFailed {
			return nil, s.toStatus(state.Err, "failed to load item")
		}
	}
	return s.respond(s.convertPlan(state, s.window()))
}

func (s *server) window() window {
	state := s.player.State()
	var w window
	if current, err := s.player.Current(); err == nil {
		w.current = current
	}
	if state.PreviousID != "" {
		w.previous = s.player.Session(state.PreviousID)
	}
	if state.NextID != "" {
		w.next = s.player.Session(state.NextID)
	}
	return w
}

func (s *server) chapterResponse(seconds int) (*structpb.Struct, error) {
	current, err := s.player.Current()
	if err != nil {
		return nil, s.toStatus(err, "no current session")
	}
	return s.respond(struct {
		Seconds int                    `json:"seconds"`
		Chapter *playback.ChapterRange `json:"chapter"`
	}{seconds, current.ChapterAt(seconds)})
}

func (s *server) respond(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build response")
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus maps playback errors to gRPC codes.
func (s *server) toStatus(err error, msg string) error {
	code := codes.Internal
	switch {
	case errors.Is(err, &apperrors.ErrNotFound{}):
		code = codes.NotFound
	case errors.Is(err, &apperrors.ErrNoNeighbor{}), errors.Is(err, &apperrors.ErrNoMediaSource{}):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	if code == codes.Internal {
		s.logger.Error().Err(err).Msg(msg)
	}
	return status.Errorf(code, "%s: %v", msg, err)
}

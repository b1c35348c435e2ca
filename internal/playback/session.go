// Package playback negotiates how an item is played: stream type, stream
// URLs, audio and subtitle selection, chapters, and the previous/current/next
// episode window driven by a reducer.
package playback

import (
	"fmt"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/models"
)

// Preferences are the user settings that influence stream selection.
type Preferences struct {
	SubtitleLanguage string
	AudioLanguage    string
	// SyncStreams re-applies audio and subtitle selections to the neighbor episodes.
	SyncStreams bool
}

// SessionInput is everything NewSession needs: the full item, the server's
// playback info answer and the profile the request was made with.
type SessionInput struct {
	BaseURL     string
	AccessToken string
	DeviceID    string

	Item          models.BaseItem
	Info          models.PlaybackInfoResponse
	Profile       models.DeviceProfile
	MediaSourceID string
	Preferences   Preferences
}

// Session is the negotiated playback of one item. It is not safe for
// concurrent use; the Manager serializes access to the sessions it owns.
type Session struct {
	Item          models.BaseItem    `json:"item"`
	MediaSource   models.MediaSource `json:"mediaSource"`
	PlaySessionID string             `json:"playSessionId"`
	StreamType    models.StreamType  `json:"streamType"`

	VideoStreams    []models.MediaStream `json:"videoStreams"`
	AudioStreams    []models.MediaStream `json:"audioStreams"`
	SubtitleStreams []models.MediaStream `json:"subtitleStreams"`

	// PlayerAudioTracks and PlayerSubtitleTracks carry the same streams with
	// indexes re-based to the player's track numbering.
	PlayerAudioTracks    []models.MediaStream `json:"playerAudioTracks"`
	PlayerSubtitleTracks []models.MediaStream `json:"playerSubtitleTracks"`

	SelectedAudioIndex    int `json:"selectedAudioIndex"`
	SelectedSubtitleIndex int `json:"selectedSubtitleIndex"`

	SubtitleMethods map[int]models.SubtitleDeliveryMethod `json:"subtitleMethods"`

	DirectStreamURL string         `json:"directStreamUrl"`
	HLSStreamURL    string         `json:"hlsStreamUrl"`
	Chapters        []ChapterRange `json:"chapters,omitempty"`
}

// NewSession builds the playback session of a successful playback info request.
//
// The media source is the one requested by MediaSourceID, or the first one the
// server returned. An error is returned when the response carries no source,
// when the requested one is missing, or when the server reported an error code.
func NewSession(in SessionInput) (*Session, error) {
	source, err := selectMediaSource(in.Item.ID, in.Info, in.MediaSourceID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Item:            in.Item,
		MediaSource:     source,
		PlaySessionID:   in.Info.PlaySessionID,
		StreamType:      decideStreamType(source),
		VideoStreams:    source.StreamsOfType(models.MediaStreamVideo),
		AudioStreams:    source.StreamsOfType(models.MediaStreamAudio),
		SubtitleStreams: source.StreamsOfType(models.MediaStreamSubtitle),
		SubtitleMethods: make(map[int]models.SubtitleDeliveryMethod),
	}

	s.PlayerAudioTracks = AdjustAudioForExternalSubtitles(source.MediaStreams)
	s.PlayerSubtitleTracks = AdjustExternalSubtitleIndexes(source.MediaStreams)

	for _, st := range s.SubtitleStreams {
		s.SubtitleMethods[st.Index] = DeliveryMethodFor(st, in.Profile)
	}

	s.SelectedAudioIndex = DefaultAudioIndex(s.AudioStreams, source.DefaultAudioStreamIndex, in.Preferences.AudioLanguage)
	s.SelectedSubtitleIndex = DefaultSubtitleIndex(s.SubtitleStreams, source.DefaultSubtitleStreamIndex, in.Preferences.SubtitleLanguage)

	videoIndex := NoStream
	if len(s.VideoStreams) > 0 {
		videoIndex = s.VideoStreams[0].Index
	}
	params := StreamParams{
		BaseURL:          in.BaseURL,
		ItemID:           in.Item.ID,
		MediaSourceID:    source.ID,
		ETag:             source.ETag,
		PlaySessionID:    in.Info.PlaySessionID,
		DeviceID:         in.DeviceID,
		AccessToken:      in.AccessToken,
		AudioCodecs:      codecsOf(s.AudioStreams),
		VideoCodecs:      codecsOf(s.VideoStreams),
		VideoStreamIndex: videoIndex,
	}
	s.DirectStreamURL = DirectStreamURL(params)
	s.HLSStreamURL = HLSStreamURL(params)

	if err := s.applySubtitleURL(); err != nil {
		return nil, err
	}

	runtime := in.Item.RuntimeSeconds()
	if runtime == 0 {
		runtime = models.TicksToSeconds(source.RunTimeTicks)
	}
	s.Chapters = BuildChapterRanges(in.Item.Chapters, runtime)

	return s, nil
}

func selectMediaSource(itemID string, info models.PlaybackInfoResponse, mediaSourceID string) (models.MediaSource, error) {
	if info.ErrorCode != "" {
		return models.MediaSource{}, &apperrors.ErrNoMediaSource{ItemID: itemID, ErrorCode: info.ErrorCode}
	}
	if len(info.MediaSources) == 0 {
		return models.MediaSource{}, &apperrors.ErrNoMediaSource{ItemID: itemID}
	}
	if mediaSourceID == "" {
		return info.MediaSources[0], nil
	}
	for _, ms := range info.MediaSources {
		if ms.ID == mediaSourceID {
			return ms, nil
		}
	}
	return models.MediaSource{}, &apperrors.ErrNoMediaSource{ItemID: itemID, MediaSourceID: mediaSourceID}
}

// decideStreamType maps the server's capability flags to a stream type.
// A transcoding URL means the server already decided to transcode.
func decideStreamType(source models.MediaSource) models.StreamType {
	switch {
	case source.TranscodingURL != "":
		return models.StreamTypeTranscode
	case source.SupportsDirectPlay:
		return models.StreamTypeDirectPlay
	case source.SupportsDirectStream:
		return models.StreamTypeDirectStream
	default:
		return models.StreamTypeTranscode
	}
}

// ActiveURL returns the URL the renderer should open: the HLS playlist when
// transcoding, the static stream otherwise.
func (s *Session) ActiveURL() string {
	if s.StreamType == models.StreamTypeTranscode {
		return s.HLSStreamURL
	}
	return s.DirectStreamURL
}

// RuntimeSeconds returns the runtime of the item, falling back to the media source.
func (s *Session) RuntimeSeconds() int {
	if r := s.Item.RuntimeSeconds(); r > 0 {
		return r
	}
	return models.TicksToSeconds(s.MediaSource.RunTimeTicks)
}

// ChapterAt returns the chapter playing at seconds, or nil.
func (s *Session) ChapterAt(seconds int) *ChapterRange {
	return ChapterAt(s.Chapters, seconds)
}

// Streams returns the streams of one kind.
func (s *Session) Streams(kind StreamKind) []models.MediaStream {
	if kind == StreamKindSubtitle {
		return s.SubtitleStreams
	}
	return s.AudioStreams
}

// Selected returns the selected index of one kind.
func (s *Session) Selected(kind StreamKind) int {
	if kind == StreamKindSubtitle {
		return s.SelectedSubtitleIndex
	}
	return s.SelectedAudioIndex
}

// Select changes the audio or subtitle selection. Subtitles accept NoStream.
// Selecting an embedded subtitle that has to be burned in rewrites the direct stream URL.
func (s *Session) Select(kind StreamKind, index int) error {
	if kind == StreamKindSubtitle {
		if index != NoStream && !hasIndex(s.SubtitleStreams, index) {
			return apperrors.NewNotFoundError("subtitle stream", index)
		}
		s.SelectedSubtitleIndex = index
		return s.applySubtitleURL()
	}

	if !hasIndex(s.AudioStreams, index) {
		return apperrors.NewNotFoundError("audio stream", index)
	}
	s.SelectedAudioIndex = index
	return nil
}

// applySubtitleURL keeps the burn-in parameters of the direct stream URL in
// line with the selected subtitle.
func (s *Session) applySubtitleURL() error {
	index := NoStream
	if st, ok := streamByIndex(s.SubtitleStreams, s.SelectedSubtitleIndex); ok && !st.IsExternal &&
		s.SubtitleMethods[st.Index] == models.SubtitleEncode {
		index = st.Index
	}
	rewritten, err := WithEmbeddedSubtitle(s.DirectStreamURL, index)
	if err != nil {
		return fmt.Errorf("failed to apply subtitle %d: %w", s.SelectedSubtitleIndex, err)
	}
	s.DirectStreamURL = rewritten
	return nil
}

// Clone returns a deep copy that can be handed out while the original keeps changing.
func (s *Session) Clone() *Session {
	c := *s
	c.VideoStreams = append([]models.MediaStream(nil), s.VideoStreams...)
	c.AudioStreams = append([]models.MediaStream(nil), s.AudioStreams...)
	c.SubtitleStreams = append([]models.MediaStream(nil), s.SubtitleStreams...)
	c.PlayerAudioTracks = append([]models.MediaStream(nil), s.PlayerAudioTracks...)
	c.PlayerSubtitleTracks = append([]models.MediaStream(nil), s.PlayerSubtitleTracks...)
	c.Chapters = append([]ChapterRange(nil), s.Chapters...)
	c.SubtitleMethods = make(map[int]models.SubtitleDeliveryMethod, len(s.SubtitleMethods))
	for k, v := range s.SubtitleMethods {
		c.SubtitleMethods[k] = v
	}
	return &c
}

// progressInfo builds a progress or start report for the session.
func (s *Session) progressInfo(positionSeconds int, paused bool) models.PlaybackProgressInfo {
	audio, subtitle := s.SelectedAudioIndex, s.SelectedSubtitleIndex
	return models.PlaybackProgressInfo{
		ItemID:              s.Item.ID,
		MediaSourceID:       s.MediaSource.ID,
		PlaySessionID:       s.PlaySessionID,
		PositionTicks:       models.SecondsToTicks(positionSeconds),
		IsPaused:            paused,
		CanSeek:             true,
		AudioStreamIndex:    &audio,
		SubtitleStreamIndex: &subtitle,
		PlayMethod:          s.StreamType.PlayMethod(),
	}
}

func (s *Session) stopInfo(positionSeconds int) models.PlaybackStopInfo {
	return models.PlaybackStopInfo{
		ItemID:        s.Item.ID,
		MediaSourceID: s.MediaSource.ID,
		PlaySessionID: s.PlaySessionID,
		PositionTicks: models.SecondsToTicks(positionSeconds),
	}
}

package playback

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/Belphemur/jellyplay/internal/models"
)

// NoStream is the selection index meaning "no stream selected".
const NoStream = -1

// StreamKind tells audio and subtitle selections apart.
type StreamKind int

const (
	StreamKindAudio StreamKind = iota
	StreamKindSubtitle
)

// String returns the string representation of the stream kind
func (k StreamKind) String() string {
	if k == StreamKindSubtitle {
		return "subtitle"
	}
	return "audio"
}

// PlayerTrackIndexes maps server stream indexes to the player's track
// numbers.
//
// The server numbers external subtitles before the container streams while the
// player opens the container first and attaches sidecar files afterwards. Video,
// audio and embedded subtitle streams therefore take consecutive tracks from 0
// in server index order, whatever their layout, and external subtitles follow
// the last container track in their original order. Streams of any other type
// get no track.
func PlayerTrackIndexes(streams []models.MediaStream) map[int]int {
	var container, external []models.MediaStream
	for _, s := range streams {
		switch {
		case s.Type == models.MediaStreamSubtitle && s.IsExternal:
			external = append(external, s)
		case s.Type == models.MediaStreamVideo, s.Type == models.MediaStreamAudio, s.Type == models.MediaStreamSubtitle:
			container = append(container, s)
		}
	}
	sort.SliceStable(container, func(i, j int) bool {
		return container[i].Index < container[j].Index
	})

	tracks := make(map[int]int, len(container)+len(external))
	next := 0
	for _, s := range append(container, external...) {
		tracks[s.Index] = next
		next++
	}
	return tracks
}

// AdjustAudioForExternalSubtitles returns the audio streams of streams with
// their indexes re-based to player tracks. Container tracks are counted
// without the external subtitles the server numbers first, so audio shifts
// down by however many of them precede it.
func AdjustAudioForExternalSubtitles(streams []models.MediaStream) []models.MediaStream {
	return rebase(streams, models.MediaStreamAudio)
}

// AdjustExternalSubtitleIndexes returns the subtitle streams of streams with
// their indexes re-based to player tracks. Embedded subtitles keep their place
// among the container tracks and external ones come after all of them.
func AdjustExternalSubtitleIndexes(streams []models.MediaStream) []models.MediaStream {
	return rebase(streams, models.MediaStreamSubtitle)
}

func rebase(streams []models.MediaStream, t models.MediaStreamType) []models.MediaStream {
	tracks := PlayerTrackIndexes(streams)
	var adjusted []models.MediaStream
	for _, s := range streams {
		if s.Type != t {
			continue
		}
		s.Index = tracks[s.Index]
		adjusted = append(adjusted, s)
	}
	return adjusted
}

// DefaultSubtitleIndex picks the subtitle to enable when playback starts:
// the server's default when it names an existing stream, then the stream
// flagged default, then the first stream in preferredLanguage. NoStream is
// returned when nothing matches.
func DefaultSubtitleIndex(streams []models.MediaStream, serverDefault *int, preferredLanguage string) int {
	return selectDefault(streams, serverDefault, preferredLanguage)
}

// DefaultAudioIndex follows the same order as DefaultSubtitleIndex but falls
// back to the first audio stream, so audio is only NoStream for silent sources.
func DefaultAudioIndex(streams []models.MediaStream, serverDefault *int, preferredLanguage string) int {
	if index := selectDefault(streams, serverDefault, preferredLanguage); index != NoStream {
		return index
	}
	if len(streams) > 0 {
		return streams[0].Index
	}
	return NoStream
}

func selectDefault(streams []models.MediaStream, serverDefault *int, preferredLanguage string) int {
	if serverDefault != nil && hasIndex(streams, *serverDefault) {
		return *serverDefault
	}
	for _, s := range streams {
		if s.IsDefault {
			return s.Index
		}
	}
	if preferredLanguage != "" {
		for _, s := range streams {
			if SameLanguage(s.Language, preferredLanguage) {
				return s.Index
			}
		}
	}
	return NoStream
}

// SameLanguage compares two language codes, treating the ISO 639-1 and
// ISO 639-2 spellings of a language as equal ("en", "eng" and "en-US" match).
// Unparseable codes only match themselves, case-insensitively.
func SameLanguage(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	baseA, confA := ta.Base()
	baseB, confB := tb.Base()
	if confA == language.No || confB == language.No {
		return false
	}
	return baseA == baseB
}

// DeliveryMethodFor decides how a subtitle stream reaches the player.
//
// A delivery method set by the server wins. Otherwise the first subtitle
// profile matching the stream codec is used in profile order; external
// streams prefer an External entry, embedded streams never use one. Streams
// the profile does not cover are burned in.
func DeliveryMethodFor(stream models.MediaStream, profile models.DeviceProfile) models.SubtitleDeliveryMethod {
	if stream.DeliveryMethod != "" {
		return models.SubtitleDeliveryMethod(stream.DeliveryMethod)
	}

	if stream.IsExternal {
		for _, sp := range profile.SubtitleProfiles {
			if sp.Method == models.SubtitleExternal && strings.EqualFold(sp.Format, stream.Codec) {
				return sp.Method
			}
		}
	}
	for _, sp := range profile.SubtitleProfiles {
		if sp.Method == models.SubtitleExternal && !stream.IsExternal {
			continue
		}
		if strings.EqualFold(sp.Format, stream.Codec) {
			return sp.Method
		}
	}
	return models.SubtitleEncode
}

// SyncSelection finds the stream in target equivalent to the one selected in
// source. Indexes are not stable across items, so streams are matched by
// display title and language together. Selecting nothing syncs to nothing.
// ok is false when target has no equivalent stream.
func SyncSelection(source []models.MediaStream, selectedIndex int, target []models.MediaStream) (index int, ok bool) {
	if selectedIndex == NoStream {
		return NoStream, true
	}
	selected, found := streamByIndex(source, selectedIndex)
	if !found {
		return NoStream, false
	}
	for _, s := range target {
		if s.DisplayTitle == selected.DisplayTitle && strings.EqualFold(s.Language, selected.Language) {
			return s.Index, true
		}
	}
	return NoStream, false
}

func hasIndex(streams []models.MediaStream, index int) bool {
	_, ok := streamByIndex(streams, index)
	return ok
}

func streamByIndex(streams []models.MediaStream, index int) (models.MediaStream, bool) {
	for _, s := range streams {
		if s.Index == index {
			return s, true
		}
	}
	return models.MediaStream{}, false
}

func codecsOf(streams []models.MediaStream) []string {
	codecs := make([]string, 0, len(streams))
	for _, s := range streams {
		codecs = append(codecs, s.Codec)
	}
	return codecs
}

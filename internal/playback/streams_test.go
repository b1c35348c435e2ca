package playback

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Belphemur/jellyplay/internal/models"
	"github.com/Belphemur/jellyplay/internal/profile"
)

func intPtr(v int) *int { return &v }

func indexes(streams []models.MediaStream) []int {
	out := make([]int, len(streams))
	for i, s := range streams {
		out[i] = s.Index
	}
	return out
}

// sourceWithExternals mirrors the server numbering: external subtitles first,
// then the container streams.
func sourceWithExternals() models.MediaSource {
	return models.MediaSource{
		ID: "ms1",
		MediaStreams: []models.MediaStream{
			{Index: 0, Type: models.MediaStreamSubtitle, Codec: "subrip", Language: "eng", DisplayTitle: "English - SRT - External", IsExternal: true},
			{Index: 1, Type: models.MediaStreamSubtitle, Codec: "ass", Language: "fre", DisplayTitle: "French - ASS - External", IsExternal: true},
			{Index: 2, Type: models.MediaStreamVideo, Codec: "h264"},
			{Index: 3, Type: models.MediaStreamAudio, Codec: "aac", Language: "eng", DisplayTitle: "English - AAC - Stereo"},
			{Index: 4, Type: models.MediaStreamAudio, Codec: "ac3", Language: "jpn", DisplayTitle: "Japanese - AC3 - 5.1"},
			{Index: 5, Type: models.MediaStreamSubtitle, Codec: "pgssub", Language: "eng", DisplayTitle: "English - PGS"},
			{Index: 6, Type: models.MediaStreamSubtitle, Codec: "subrip", Language: "spa", DisplayTitle: "Spanish - SRT"},
		},
	}
}

func TestAdjustAudioForExternalSubtitles(t *testing.T) {
	source := sourceWithExternals()

	adjusted := AdjustAudioForExternalSubtitles(source.MediaStreams)
	if diff := cmp.Diff([]int{1, 2}, indexes(adjusted)); diff != "" {
		t.Errorf("audio indexes mismatch (-want +got):\n%s", diff)
	}
	for _, s := range adjusted {
		if s.Type != models.MediaStreamAudio {
			t.Errorf("unexpected %s stream in audio tracks", s.Type)
		}
	}
	if source.MediaStreams[3].Index != 3 {
		t.Error("Expected the input slice to be left untouched")
	}
}

func TestAdjustExternalSubtitleIndexes(t *testing.T) {
	adjusted := AdjustExternalSubtitleIndexes(sourceWithExternals().MediaStreams)

	// Video is track 0, audio 1-2, embedded subtitles 3-4, externals 5-6.
	got := map[string]int{}
	for _, s := range adjusted {
		got[s.DisplayTitle] = s.Index
	}
	want := map[string]int{
		"English - PGS":            3,
		"Spanish - SRT":            4,
		"English - SRT - External": 5,
		"French - ASS - External":  6,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subtitle indexes mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjust_NoCollisionAndOrderPreserved(t *testing.T) {
	tests := []struct {
		name      string
		streams   []models.MediaStream
		wantAudio []int
		wantSubs  []int
	}{
		{
			name:      "externals first",
			streams:   sourceWithExternals().MediaStreams,
			wantAudio: []int{1, 2},
			wantSubs:  []int{5, 6, 3, 4},
		},
		{
			name: "subtitle before audio",
			streams: []models.MediaStream{
				{Index: 0, Type: models.MediaStreamVideo, Codec: "h264"},
				{Index: 1, Type: models.MediaStreamSubtitle, Codec: "subrip"},
				{Index: 2, Type: models.MediaStreamAudio, Codec: "aac"},
			},
			wantAudio: []int{2},
			wantSubs:  []int{1},
		},
		{
			name: "two video streams",
			streams: []models.MediaStream{
				{Index: 0, Type: models.MediaStreamVideo, Codec: "h264"},
				{Index: 1, Type: models.MediaStreamVideo, Codec: "mjpeg"},
				{Index: 2, Type: models.MediaStreamAudio, Codec: "aac"},
				{Index: 3, Type: models.MediaStreamSubtitle, Codec: "subrip"},
			},
			wantAudio: []int{2},
			wantSubs:  []int{3},
		},
		{
			name: "interleaved with externals",
			streams: []models.MediaStream{
				{Index: 0, Type: models.MediaStreamSubtitle, Codec: "ass", IsExternal: true, DisplayTitle: "first"},
				{Index: 1, Type: models.MediaStreamSubtitle, Codec: "subrip", IsExternal: true, DisplayTitle: "second"},
				{Index: 2, Type: models.MediaStreamVideo, Codec: "h264"},
				{Index: 3, Type: models.MediaStreamSubtitle, Codec: "pgssub"},
				{Index: 4, Type: models.MediaStreamAudio, Codec: "aac"},
				{Index: 5, Type: models.MediaStreamSubtitle, Codec: "subrip"},
				{Index: 6, Type: models.MediaStreamAudio, Codec: "ac3"},
			},
			wantAudio: []int{2, 4},
			wantSubs:  []int{5, 6, 1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio := AdjustAudioForExternalSubtitles(tt.streams)
			subs := AdjustExternalSubtitleIndexes(tt.streams)

			if diff := cmp.Diff(tt.wantAudio, indexes(audio)); diff != "" {
				t.Errorf("audio indexes mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantSubs, indexes(subs)); diff != "" {
				t.Errorf("subtitle indexes mismatch (-want +got):\n%s", diff)
			}

			seen := map[int]bool{}
			for _, s := range append(audio, subs...) {
				if seen[s.Index] {
					t.Errorf("index %d collides", s.Index)
				}
				seen[s.Index] = true
			}

			last := -1
			for _, s := range subs {
				if !s.IsExternal {
					continue
				}
				if s.Index <= last {
					t.Errorf("external subtitle order not preserved: %d after %d", s.Index, last)
				}
				last = s.Index
			}
		})
	}
}

func TestPlayerTrackIndexes_SkipsUnknownTypes(t *testing.T) {
	tracks := PlayerTrackIndexes([]models.MediaStream{
		{Index: 0, Type: models.MediaStreamVideo},
		{Index: 1, Type: models.MediaStreamType("EmbeddedImage")},
		{Index: 2, Type: models.MediaStreamAudio},
	})
	want := map[int]int{0: 0, 2: 1}
	if diff := cmp.Diff(want, tracks); diff != "" {
		t.Errorf("PlayerTrackIndexes() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultSubtitleIndex(t *testing.T) {
	subs := sourceWithExternals().StreamsOfType(models.MediaStreamSubtitle)
	flagged := append([]models.MediaStream(nil), subs...)
	flagged[3].IsDefault = true

	tests := []struct {
		name          string
		streams       []models.MediaStream
		serverDefault *int
		language      string
		want          int
	}{
		{"server default wins", flagged, intPtr(1), "spa", 1},
		{"invalid server default ignored", flagged, intPtr(42), "", 6},
		{"default flag", flagged, nil, "eng", 6},
		{"language match", subs, nil, "spa", 6},
		{"two letter language", subs, nil, "es", 6},
		{"regional language", subs, nil, "en-US", 0},
		{"no match", subs, nil, "deu", NoStream},
		{"no language", subs, nil, "", NoStream},
		{"no streams", nil, nil, "eng", NoStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultSubtitleIndex(tt.streams, tt.serverDefault, tt.language); got != tt.want {
				t.Errorf("DefaultSubtitleIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultAudioIndex_FallsBackToFirst(t *testing.T) {
	audio := sourceWithExternals().StreamsOfType(models.MediaStreamAudio)

	if got := DefaultAudioIndex(audio, nil, "deu"); got != 3 {
		t.Errorf("DefaultAudioIndex() = %d, want 3", got)
	}
	if got := DefaultAudioIndex(audio, nil, "ja"); got != 4 {
		t.Errorf("DefaultAudioIndex(ja) = %d, want 4", got)
	}
	if got := DefaultAudioIndex(nil, nil, "eng"); got != NoStream {
		t.Errorf("DefaultAudioIndex(nil) = %d, want NoStream", got)
	}
}

func TestSameLanguage(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"eng", "en", true},
		{"en-US", "eng", true},
		{"spa", "es", true},
		{"jpn", "ja", true},
		{"eng", "fre", false},
		{"", "eng", false},
		{"xx-invalid-tag-!!", "xx-invalid-tag-!!", true},
	}
	for _, tt := range tests {
		if got := SameLanguage(tt.a, tt.b); got != tt.want {
			t.Errorf("SameLanguage(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDeliveryMethodFor(t *testing.T) {
	native := profile.Build(10_000_000, true)
	software := profile.Build(10_000_000, false)

	tests := []struct {
		name    string
		stream  models.MediaStream
		profile models.DeviceProfile
		want    models.SubtitleDeliveryMethod
	}{
		{"server method wins", models.MediaStream{Codec: "pgssub", DeliveryMethod: "External"}, native, models.SubtitleExternal},
		{"native bitmap burned in", models.MediaStream{Codec: "pgssub"}, native, models.SubtitleEncode},
		{"native vtt over hls", models.MediaStream{Codec: "vtt"}, native, models.SubtitleHls},
		{"native ttml embedded", models.MediaStream{Codec: "TTML"}, native, models.SubtitleEmbed},
		{"native unknown format", models.MediaStream{Codec: "subrip"}, native, models.SubtitleEncode},
		{"software embedded", models.MediaStream{Codec: "subrip"}, software, models.SubtitleEmbed},
		{"software external prefers external", models.MediaStream{Codec: "subrip", IsExternal: true}, software, models.SubtitleExternal},
		{"software unknown format", models.MediaStream{Codec: "mystery"}, software, models.SubtitleEncode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeliveryMethodFor(tt.stream, tt.profile); got != tt.want {
				t.Errorf("DeliveryMethodFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSyncSelection(t *testing.T) {
	source := sourceWithExternals().StreamsOfType(models.MediaStreamSubtitle)
	target := []models.MediaStream{
		{Index: 9, Type: models.MediaStreamSubtitle, Language: "spa", DisplayTitle: "Spanish - SRT"},
		{Index: 7, Type: models.MediaStreamSubtitle, Language: "eng", DisplayTitle: "English - PGS"},
		{Index: 8, Type: models.MediaStreamSubtitle, Language: "eng", DisplayTitle: "English - Forced"},
	}

	tests := []struct {
		name     string
		selected int
		target   []models.MediaStream
		want     int
		wantOK   bool
	}{
		{"matched by title and language", 5, target, 7, true},
		{"index differs across items", 6, target, 9, true},
		{"none syncs to none", NoStream, target, NoStream, true},
		{"no equivalent", 1, target, NoStream, false},
		{"unknown selection", 42, target, NoStream, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SyncSelection(source, tt.selected, tt.target)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SyncSelection() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSyncSelection_RequiresBothTitleAndLanguage(t *testing.T) {
	source := []models.MediaStream{{Index: 1, Language: "eng", DisplayTitle: "Commentary"}}
	target := []models.MediaStream{
		{Index: 1, Language: "fre", DisplayTitle: "Commentary"},
		{Index: 2, Language: "eng", DisplayTitle: "Main"},
	}

	if got, ok := SyncSelection(source, 1, target); ok {
		t.Errorf("Expected no match, got %d", got)
	}
}

package testutil

import (
	"fmt"

	"github.com/Belphemur/jellyplay/internal/models"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// EpisodeOptions contains options for generating an episode item
type EpisodeOptions struct {
	ID             string
	Name           string // Defaults to "Episode N"
	SeriesID       string
	SeriesName     string
	Season         int
	Episode        int
	RuntimeSeconds int // Defaults to 600
	// ChapterStarts are chapter start positions in seconds. Defaults to 0 and 60.
	ChapterStarts []int
	DirectPlay    *bool // Defaults to true
}

// DefaultStreams is the stream layout of generated media sources: one video,
// an English and a Japanese audio track, and one English subtitle.
func DefaultStreams() []models.MediaStream {
	return []models.MediaStream{
		{Index: 0, Type: models.MediaStreamVideo, Codec: "h264"},
		{Index: 1, Type: models.MediaStreamAudio, Codec: "aac", Language: "eng", DisplayTitle: "English"},
		{Index: 2, Type: models.MediaStreamAudio, Codec: "ac3", Language: "jpn", DisplayTitle: "Japanese"},
		{Index: 3, Type: models.MediaStreamSubtitle, Codec: "subrip", Language: "eng", DisplayTitle: "English"},
	}
}

// GenerateEpisode builds an episode the way the server returns it with
// Chapters and MediaSources fields requested.
func GenerateEpisode(opts EpisodeOptions) models.BaseItem {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("Episode %d", opts.Episode)
	}
	if opts.RuntimeSeconds == 0 {
		opts.RuntimeSeconds = 600
	}
	if opts.ChapterStarts == nil {
		opts.ChapterStarts = []int{0, 60}
	}
	directPlay := true
	if opts.DirectPlay != nil {
		directPlay = *opts.DirectPlay
	}

	chapters := make([]models.ChapterInfo, 0, len(opts.ChapterStarts))
	for i, start := range opts.ChapterStarts {
		name := fmt.Sprintf("Part %d", i)
		if i == 0 {
			name = "Intro"
		}
		chapters = append(chapters, models.ChapterInfo{Name: name, StartPositionTicks: models.SecondsToTicks(start)})
	}

	return models.BaseItem{
		ID:                opts.ID,
		Name:              opts.Name,
		Type:              models.ItemTypeEpisode,
		SeriesID:          opts.SeriesID,
		SeriesName:        opts.SeriesName,
		ParentIndexNumber: IntPtr(opts.Season),
		IndexNumber:       IntPtr(opts.Episode),
		RunTimeTicks:      models.SecondsToTicks(opts.RuntimeSeconds),
		ImageTags:         map[string]string{"Primary": "tag-" + opts.ID},
		Chapters:          chapters,
		MediaSources: []models.MediaSource{{
			ID:                 "ms-" + opts.ID,
			Container:          "mkv",
			SupportsDirectPlay: directPlay,
			MediaStreams:       DefaultStreams(),
		}},
	}
}

// GenerateSeason builds count consecutive episodes of season 1 with IDs
// prefix1..prefixN.
func GenerateSeason(seriesID, seriesName, prefix string, count int) []models.BaseItem {
	items := make([]models.BaseItem, 0, count)
	for i := 1; i <= count; i++ {
		items = append(items, GenerateEpisode(EpisodeOptions{
			ID:         fmt.Sprintf("%s%d", prefix, i),
			SeriesID:   seriesID,
			SeriesName: seriesName,
			Season:     1,
			Episode:    i,
		}))
	}
	return items
}

// GenerateMovie builds a direct-playable movie without streams or chapters.
func GenerateMovie(id, name string, year int) models.BaseItem {
	return models.BaseItem{
		ID:             id,
		Name:           name,
		Type:           models.ItemTypeMovie,
		ProductionYear: year,
		RunTimeTicks:   models.SecondsToTicks(5400),
		MediaSources:   []models.MediaSource{{ID: "ms-" + id, SupportsDirectPlay: true}},
	}
}

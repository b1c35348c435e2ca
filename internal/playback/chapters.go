package playback

import (
	"sort"

	"github.com/Belphemur/jellyplay/internal/models"
)

// ChapterRange is a chapter with the half-open span [Start, End) it covers, in seconds.
type ChapterRange struct {
	Chapter models.ChapterInfo `json:"chapter"`
	Start   int                `json:"start"`
	End     int                `json:"end"`
}

// Contains reports whether seconds falls inside the range.
func (r ChapterRange) Contains(seconds int) bool {
	return seconds >= r.Start && seconds < r.End
}

// BuildChapterRanges pairs every chapter with the start of the next one, the
// last chapter ending at runtimeSeconds.
//
// The result partitions [0, runtimeSeconds): chapters are ordered by start,
// the first range is stretched back to 0, chapters starting at or after the
// runtime are dropped and chapters sharing a start collapse into the last one.
// A nil slice is returned when there are no chapters or no runtime.
func BuildChapterRanges(chapters []models.ChapterInfo, runtimeSeconds int) []ChapterRange {
	if len(chapters) == 0 || runtimeSeconds <= 0 {
		return nil
	}

	sorted := make([]models.ChapterInfo, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPositionTicks < sorted[j].StartPositionTicks
	})

	ranges := make([]ChapterRange, 0, len(sorted))
	for _, chapter := range sorted {
		start := models.TicksToSeconds(chapter.StartPositionTicks)
		if len(ranges) == 0 {
			start = 0
		}
		if start >= runtimeSeconds {
			break
		}
		if n := len(ranges); n > 0 {
			if ranges[n-1].Start == start {
				ranges[n-1].Chapter = chapter
				continue
			}
			ranges[n-1].End = start
		}
		ranges = append(ranges, ChapterRange{Chapter: chapter, Start: start, End: runtimeSeconds})
	}

	return ranges
}

// ChapterAt returns the range containing seconds, or nil when seconds lies
// outside the ranges. Ranges must come from BuildChapterRanges.
func ChapterAt(ranges []ChapterRange, seconds int) *ChapterRange {
	i := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].End > seconds
	})
	if i == len(ranges) || !ranges[i].Contains(seconds) {
		return nil
	}
	r := ranges[i]
	return &r
}

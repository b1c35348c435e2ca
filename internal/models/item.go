package models

// Item types returned by the server that matter for playback.
const (
	ItemTypeEpisode = "Episode"
	ItemTypeMovie   = "Movie"
	ItemTypeSeries  = "Series"
	ItemTypeSeason  = "Season"
)

// BaseItem is the subset of the server's BaseItemDto consumed by the playback core.
type BaseItem struct {
	ID                      string            `json:"Id"`
	Name                    string            `json:"Name"`
	Type                    string            `json:"Type"`
	SeriesID                string            `json:"SeriesId,omitempty"`
	SeriesName              string            `json:"SeriesName,omitempty"`
	SeasonID                string            `json:"SeasonId,omitempty"`
	ParentIndexNumber       *int              `json:"ParentIndexNumber,omitempty"` // season number
	IndexNumber             *int              `json:"IndexNumber,omitempty"`       // episode number
	ProductionYear          int               `json:"ProductionYear,omitempty"`
	RunTimeTicks            int64             `json:"RunTimeTicks,omitempty"`
	Chapters                []ChapterInfo     `json:"Chapters,omitempty"`
	MediaSources            []MediaSource     `json:"MediaSources,omitempty"`
	ImageTags               map[string]string `json:"ImageTags,omitempty"`
	BackdropImageTags       []string          `json:"BackdropImageTags,omitempty"`
	SeriesPrimaryImageTag   string            `json:"SeriesPrimaryImageTag,omitempty"`
	ParentBackdropItemID    string            `json:"ParentBackdropItemId,omitempty"`
	ParentBackdropImageTags []string          `json:"ParentBackdropImageTags,omitempty"`
	ParentThumbItemID       string            `json:"ParentThumbItemId,omitempty"`
	ParentThumbImageTag     string            `json:"ParentThumbImageTag,omitempty"`
	UserData                *UserItemData     `json:"UserData,omitempty"`
}

// RuntimeSeconds returns the item runtime in whole seconds.
func (b BaseItem) RuntimeSeconds() int {
	return TicksToSeconds(b.RunTimeTicks)
}

// IsEpisode reports whether the item belongs to a series.
func (b BaseItem) IsEpisode() bool {
	return b.Type == ItemTypeEpisode && b.SeriesID != ""
}

// ChapterInfo is a chapter marker as returned by the server.
type ChapterInfo struct {
	Name               string `json:"Name"`
	StartPositionTicks int64  `json:"StartPositionTicks"`
	ImageTag           string `json:"ImageTag,omitempty"`
}

// UserItemData carries the per-user playback state of an item.
type UserItemData struct {
	PlaybackPositionTicks int64 `json:"PlaybackPositionTicks"`
	PlayCount             int   `json:"PlayCount"`
	Played                bool  `json:"Played"`
	IsFavorite            bool  `json:"IsFavorite"`
}

// ItemsResult is the envelope of list endpoints.
type ItemsResult struct {
	Items            []BaseItem `json:"Items"`
	TotalRecordCount int        `json:"TotalRecordCount"`
	StartIndex       int        `json:"StartIndex"`
}

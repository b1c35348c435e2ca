package models

// PlaybackInfoRequest is the body posted to /Items/{id}/PlaybackInfo.
type PlaybackInfoRequest struct {
	UserID              string         `json:"UserId,omitempty"`
	MaxStreamingBitrate int            `json:"MaxStreamingBitrate,omitempty"`
	StartTimeTicks      int64          `json:"StartTimeTicks,omitempty"`
	AudioStreamIndex    *int           `json:"AudioStreamIndex,omitempty"`
	SubtitleStreamIndex *int           `json:"SubtitleStreamIndex,omitempty"`
	MediaSourceID       string         `json:"MediaSourceId,omitempty"`
	DeviceProfile       *DeviceProfile `json:"DeviceProfile,omitempty"`
	EnableDirectPlay    bool           `json:"EnableDirectPlay"`
	EnableDirectStream  bool           `json:"EnableDirectStream"`
	EnableTranscoding   bool           `json:"EnableTranscoding"`
	AutoOpenLiveStream  bool           `json:"AutoOpenLiveStream"`
}

// PlaybackInfoResponse is the server's answer to a playback info request.
type PlaybackInfoResponse struct {
	MediaSources  []MediaSource `json:"MediaSources"`
	PlaySessionID string        `json:"PlaySessionId"`
	ErrorCode     string        `json:"ErrorCode,omitempty"`
}

// PlaybackProgressInfo is the payload of the start and progress reports.
type PlaybackProgressInfo struct {
	ItemID              string `json:"ItemId"`
	MediaSourceID       string `json:"MediaSourceId,omitempty"`
	PlaySessionID       string `json:"PlaySessionId,omitempty"`
	PositionTicks       int64  `json:"PositionTicks"`
	IsPaused            bool   `json:"IsPaused"`
	CanSeek             bool   `json:"CanSeek"`
	AudioStreamIndex    *int   `json:"AudioStreamIndex,omitempty"`
	SubtitleStreamIndex *int   `json:"SubtitleStreamIndex,omitempty"`
	PlayMethod          string `json:"PlayMethod,omitempty"`
}

// PlaybackStopInfo is the payload of the stop report.
type PlaybackStopInfo struct {
	ItemID        string `json:"ItemId"`
	MediaSourceID string `json:"MediaSourceId,omitempty"`
	PlaySessionID string `json:"PlaySessionId,omitempty"`
	PositionTicks int64  `json:"PositionTicks"`
	Failed        bool   `json:"Failed"`
}

package models

// MediaStreamType is the server's classification of a media stream.
type MediaStreamType string

const (
	MediaStreamVideo    MediaStreamType = "Video"
	MediaStreamAudio    MediaStreamType = "Audio"
	MediaStreamSubtitle MediaStreamType = "Subtitle"
)

// MediaSource is one playable version of an item.
type MediaSource struct {
	ID                         string        `json:"Id"`
	Name                       string        `json:"Name,omitempty"`
	ETag                       string        `json:"ETag,omitempty"`
	Container                  string        `json:"Container,omitempty"`
	Bitrate                    int           `json:"Bitrate,omitempty"`
	RunTimeTicks               int64         `json:"RunTimeTicks,omitempty"`
	SupportsDirectPlay         bool          `json:"SupportsDirectPlay"`
	SupportsDirectStream       bool          `json:"SupportsDirectStream"`
	SupportsTranscoding        bool          `json:"SupportsTranscoding"`
	TranscodingURL             string        `json:"TranscodingUrl,omitempty"`
	TranscodingSubProtocol     string        `json:"TranscodingSubProtocol,omitempty"`
	MediaStreams               []MediaStream `json:"MediaStreams,omitempty"`
	DefaultAudioStreamIndex    *int          `json:"DefaultAudioStreamIndex,omitempty"`
	DefaultSubtitleStreamIndex *int          `json:"DefaultSubtitleStreamIndex,omitempty"`
}

// StreamsOfType returns the streams of one type, in server order.
func (m MediaSource) StreamsOfType(t MediaStreamType) []MediaStream {
	var streams []MediaStream
	for _, s := range m.MediaStreams {
		if s.Type == t {
			streams = append(streams, s)
		}
	}
	return streams
}

// MediaStream describes a single video, audio or subtitle stream.
type MediaStream struct {
	Index                int             `json:"Index"`
	Type                 MediaStreamType `json:"Type"`
	Codec                string          `json:"Codec,omitempty"`
	Language             string          `json:"Language,omitempty"`
	Title                string          `json:"Title,omitempty"`
	DisplayTitle         string          `json:"DisplayTitle,omitempty"`
	IsExternal           bool            `json:"IsExternal"`
	IsDefault            bool            `json:"IsDefault"`
	IsForced             bool            `json:"IsForced"`
	IsTextSubtitleStream bool            `json:"IsTextSubtitleStream,omitempty"`
	ChannelLayout        string          `json:"ChannelLayout,omitempty"`
	Channels             int             `json:"Channels,omitempty"`
	Width                int             `json:"Width,omitempty"`
	Height               int             `json:"Height,omitempty"`
	Profile              string          `json:"Profile,omitempty"`
	Level                float64         `json:"Level,omitempty"`
	DeliveryMethod       string          `json:"DeliveryMethod,omitempty"`
	DeliveryURL          string          `json:"DeliveryUrl,omitempty"`
}

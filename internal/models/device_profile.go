package models

// DlnaProfileType is the media type a profile entry applies to.
type DlnaProfileType string

const (
	ProfileTypeVideo DlnaProfileType = "Video"
	ProfileTypeAudio DlnaProfileType = "Audio"
)

// EncodingContext tells the server how a transcoding profile is consumed.
type EncodingContext string

const (
	EncodingContextStreaming EncodingContext = "Streaming"
	EncodingContextStatic    EncodingContext = "Static"
)

// SubtitleDeliveryMethod is how a subtitle stream reaches the player.
type SubtitleDeliveryMethod string

const (
	// SubtitleEncode burns the subtitle into the video on the server.
	SubtitleEncode SubtitleDeliveryMethod = "Encode"
	// SubtitleEmbed leaves the subtitle inside the container for the player to render.
	SubtitleEmbed SubtitleDeliveryMethod = "Embed"
	// SubtitleExternal delivers the subtitle as a sidecar file.
	SubtitleExternal SubtitleDeliveryMethod = "External"
	// SubtitleHls delivers the subtitle as an HLS rendition.
	SubtitleHls SubtitleDeliveryMethod = "Hls"
)

// ProfileConditionType is the comparison operator of a ProfileCondition.
type ProfileConditionType string

const (
	ConditionEquals           ProfileConditionType = "Equals"
	ConditionNotEquals        ProfileConditionType = "NotEquals"
	ConditionLessThanEqual    ProfileConditionType = "LessThanEqual"
	ConditionGreaterThanEqual ProfileConditionType = "GreaterThanEqual"
	ConditionEqualsAny        ProfileConditionType = "EqualsAny"
)

// ProfileConditionValue is the stream property a ProfileCondition tests.
type ProfileConditionValue string

const (
	PropertyIsAnamorphic  ProfileConditionValue = "IsAnamorphic"
	PropertyVideoProfile  ProfileConditionValue = "VideoProfile"
	PropertyVideoLevel    ProfileConditionValue = "VideoLevel"
	PropertyIsInterlaced  ProfileConditionValue = "IsInterlaced"
	PropertyAudioChannels ProfileConditionValue = "AudioChannels"
)

// DeviceProfile describes this client's playback capabilities to the server.
// Slice order is significant: the server takes the first matching entry.
type DeviceProfile struct {
	Name                             string               `json:"Name,omitempty"`
	MaxStreamingBitrate              int                  `json:"MaxStreamingBitrate"`
	MaxStaticBitrate                 int                  `json:"MaxStaticBitrate"`
	MusicStreamingTranscodingBitrate int                  `json:"MusicStreamingTranscodingBitrate"`
	DirectPlayProfiles               []DirectPlayProfile  `json:"DirectPlayProfiles"`
	TranscodingProfiles              []TranscodingProfile `json:"TranscodingProfiles"`
	CodecProfiles                    []CodecProfile       `json:"CodecProfiles"`
	SubtitleProfiles                 []SubtitleProfile    `json:"SubtitleProfiles"`
	ResponseProfiles                 []ResponseProfile    `json:"ResponseProfiles"`
}

// DirectPlayProfile allows a container/codec combination to be played untouched.
// An empty codec or container field means "no restriction".
type DirectPlayProfile struct {
	Container  string          `json:"Container,omitempty"`
	AudioCodec string          `json:"AudioCodec,omitempty"`
	VideoCodec string          `json:"VideoCodec,omitempty"`
	Type       DlnaProfileType `json:"Type"`
}

// TranscodingProfile is the target format when the server has to transcode.
type TranscodingProfile struct {
	Container           string          `json:"Container"`
	Type                DlnaProfileType `json:"Type"`
	Protocol            string          `json:"Protocol"`
	AudioCodec          string          `json:"AudioCodec"`
	VideoCodec          string          `json:"VideoCodec"`
	Context             EncodingContext `json:"Context"`
	MaxAudioChannels    string          `json:"MaxAudioChannels,omitempty"`
	MinSegments         int             `json:"MinSegments,omitempty"`
	BreakOnNonKeyFrames bool            `json:"BreakOnNonKeyFrames"`
}

// CodecProfile limits what a decoder accepts for one codec.
type CodecProfile struct {
	Type       DlnaProfileType    `json:"Type"`
	Codec      string             `json:"Codec"`
	Conditions []ProfileCondition `json:"Conditions"`
}

// ProfileCondition is a single property test inside a CodecProfile.
type ProfileCondition struct {
	Condition  ProfileConditionType  `json:"Condition"`
	Property   ProfileConditionValue `json:"Property"`
	Value      string                `json:"Value"`
	IsRequired bool                  `json:"IsRequired"`
}

// SubtitleProfile maps a subtitle format to a delivery method.
type SubtitleProfile struct {
	Format string                 `json:"Format"`
	Method SubtitleDeliveryMethod `json:"Method"`
}

// ResponseProfile overrides the response mime type for a container.
type ResponseProfile struct {
	Container string          `json:"Container"`
	Type      DlnaProfileType `json:"Type"`
	MimeType  string          `json:"MimeType"`
}

// Package profile builds the device profile sent to the server with every
// playback info request.
package profile

import "github.com/Belphemur/jellyplay/internal/models"

// Build returns the device profile for the given bitrate ceiling and decoder.
//
// nativePlayer selects the platform decoder profile, which only accepts the
// containers and codecs the hardware pipeline can play. Otherwise the profile
// targets the bundled software decoder, which plays anything the server can
// probe apart from a few audio codecs.
//
// maxBitrate is advertised as-is on every bitrate field; callers substitute a
// default before calling when the user has none.
func Build(maxBitrate int, nativePlayer bool) models.DeviceProfile {
	var p models.DeviceProfile
	if nativePlayer {
		p = nativeProfile()
	} else {
		p = softwareProfile()
	}

	p.MaxStreamingBitrate = maxBitrate
	p.MaxStaticBitrate = maxBitrate
	p.MusicStreamingTranscodingBitrate = maxBitrate

	p.CodecProfiles = codecProfiles()
	p.ResponseProfiles = []models.ResponseProfile{
		{Container: "m4v", Type: models.ProfileTypeVideo, MimeType: "video/mp4"},
	}

	return p
}

func nativeProfile() models.DeviceProfile {
	return models.DeviceProfile{
		Name: "jellyplay native",
		DirectPlayProfiles: []models.DirectPlayProfile{
			// mp3 is not accepted inside mp4 by the platform demuxer.
			{Container: "mp4", AudioCodec: "flac,alac,aac,eac3,ac3,opus", VideoCodec: "hevc,h264,mpeg4", Type: models.ProfileTypeVideo},
			{Container: "m4v", AudioCodec: "alac,aac,ac3", VideoCodec: "h264,mpeg4", Type: models.ProfileTypeVideo},
			{Container: "mov", AudioCodec: "alac,aac,eac3,ac3,mp3,pcm_s24be,pcm_s24le,pcm_s16be,pcm_s16le", VideoCodec: "hevc,h264,mpeg4,mjpeg", Type: models.ProfileTypeVideo},
			{Container: "mpegts", AudioCodec: "aac,eac3,ac3,mp3", VideoCodec: "h264", Type: models.ProfileTypeVideo},
			{Container: "3gp,3g2", AudioCodec: "aac,amr_nb", VideoCodec: "h264,mpeg4", Type: models.ProfileTypeVideo},
			{Container: "avi", AudioCodec: "pcm_s16le,pcm_mulaw", VideoCodec: "mjpeg", Type: models.ProfileTypeVideo},
		},
		TranscodingProfiles: []models.TranscodingProfile{
			{
				Container:           "mp4",
				Type:                models.ProfileTypeVideo,
				Protocol:            "hls",
				AudioCodec:          "flac,alac,aac,eac3,ac3,opus",
				VideoCodec:          "hevc,h264,mpeg4",
				Context:             models.EncodingContextStreaming,
				MaxAudioChannels:    "8",
				MinSegments:         2,
				BreakOnNonKeyFrames: true,
			},
		},
		SubtitleProfiles: []models.SubtitleProfile{
			// The platform decoder only converts bitmap to bitmap, so bitmap
			// formats are burned in by the server.
			{Format: "pgssub", Method: models.SubtitleEncode},
			{Format: "dvdsub", Method: models.SubtitleEncode},
			{Format: "dvbsub", Method: models.SubtitleEncode},
			{Format: "xsub", Method: models.SubtitleEncode},
			// WebVTT travels as sidecar renditions of the HLS playlist.
			{Format: "vtt", Method: models.SubtitleHls},
			{Format: "ttml", Method: models.SubtitleEmbed},
			{Format: "cc_dec", Method: models.SubtitleEmbed},
		},
	}
}

// softwareDirectPlayAudio lists what the software decoder can decode. TrueHD
// and MLP are absent: the transcoder handles them but the decoder does not.
const softwareDirectPlayAudio = "aac,ac3,alac,amr_nb,amr_wb,dts,eac3,flac,mp1,mp2,mp3,nellymoser,opus," +
	"pcm_alaw,pcm_bluray,pcm_dvd,pcm_mulaw,pcm_s16be,pcm_s16le,pcm_s24be,pcm_s24le,pcm_u8," +
	"speex,vorbis,wavpack,wmalossless,wmapro,wmav1,wmav2"

// softwareEncodableSubtitles are the text formats the software decoder can
// convert to. They come first in the external group so the server prefers
// them over formats that are shipped unchanged.
var softwareEncodableSubtitles = []string{"subrip", "ass", "ssa", "vtt", "ttml"}

var softwareOtherSubtitles = []string{
	"cc_dec", "dvbsub", "dvdsub", "jacosub", "libzvbi_teletextdec", "mov_text", "mpl2",
	"pgssub", "pjs", "realtext", "sami", "subviewer", "subviewer1", "text", "vplayer", "xsub",
}

func softwareProfile() models.DeviceProfile {
	var subtitles []models.SubtitleProfile
	all := append(append([]string{}, softwareEncodableSubtitles...), softwareOtherSubtitles...)
	for _, format := range all {
		subtitles = append(subtitles, models.SubtitleProfile{Format: format, Method: models.SubtitleEmbed})
	}
	for _, format := range all {
		subtitles = append(subtitles, models.SubtitleProfile{Format: format, Method: models.SubtitleExternal})
	}

	return models.DeviceProfile{
		Name: "jellyplay software",
		DirectPlayProfiles: []models.DirectPlayProfile{
			// No container or video codec restriction: if the server's probe
			// can read the source, the decoder can too.
			{AudioCodec: softwareDirectPlayAudio, Type: models.ProfileTypeVideo},
		},
		TranscodingProfiles: []models.TranscodingProfile{
			{
				Container:           "mp4",
				Type:                models.ProfileTypeVideo,
				Protocol:            "hls",
				AudioCodec:          "aac,ac3,alac,dts,eac3,flac,mp1,mp2,mp3,opus,vorbis",
				VideoCodec:          "hevc,h264,av1,vp9,vc1,mpeg4,h263,mpeg2video,mpeg1video,mjpeg",
				Context:             models.EncodingContextStreaming,
				MaxAudioChannels:    "8",
				MinSegments:         2,
				BreakOnNonKeyFrames: true,
			},
		},
		SubtitleProfiles: subtitles,
	}
}

// H.264 and HEVC level ceilings of the supported decoders.
const (
	h264MaxLevel = "80"
	hevcMaxLevel = "175"
)

func codecProfiles() []models.CodecProfile {
	return []models.CodecProfile{
		{
			Type:  models.ProfileTypeVideo,
			Codec: "h264",
			Conditions: []models.ProfileCondition{
				{Condition: models.ConditionNotEquals, Property: models.PropertyIsAnamorphic, Value: "true"},
				{Condition: models.ConditionEqualsAny, Property: models.PropertyVideoProfile, Value: "high|main|baseline|constrained baseline"},
				{Condition: models.ConditionLessThanEqual, Property: models.PropertyVideoLevel, Value: h264MaxLevel},
				{Condition: models.ConditionNotEquals, Property: models.PropertyIsInterlaced, Value: "true"},
			},
		},
		{
			Type:  models.ProfileTypeVideo,
			Codec: "hevc",
			Conditions: []models.ProfileCondition{
				{Condition: models.ConditionNotEquals, Property: models.PropertyIsAnamorphic, Value: "true"},
				{Condition: models.ConditionEqualsAny, Property: models.PropertyVideoProfile, Value: "high|main|main 10"},
				{Condition: models.ConditionLessThanEqual, Property: models.PropertyVideoLevel, Value: hevcMaxLevel},
				{Condition: models.ConditionNotEquals, Property: models.PropertyIsInterlaced, Value: "true"},
			},
		},
	}
}

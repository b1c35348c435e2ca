package playback

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query keys the server reads for embedded subtitle burn-in.
const (
	subtitleStreamIndexKey = "SubtitleStreamIndex"
	subtitleMethodKey      = "SubtitleMethod"
)

// StreamParams are the inputs of the stream URL builders. Identical params
// always produce identical URLs.
type StreamParams struct {
	BaseURL       string
	ItemID        string
	MediaSourceID string
	ETag          string
	PlaySessionID string
	DeviceID      string
	AccessToken   string

	// AudioCodecs and VideoCodecs are the codecs of the media source streams, in stream order.
	AudioCodecs []string
	VideoCodecs []string

	// VideoStreamIndex is the index of the first video stream, or -1 when the source has none.
	VideoStreamIndex int
}

// orderedQuery builds a query string that keeps insertion order.
type orderedQuery []string

func (q *orderedQuery) add(key, value string) {
	*q = append(*q, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q orderedQuery) encode() string {
	return strings.Join(q, "&")
}

// HLSStreamURL builds the master playlist URL used when the server transcodes.
// The access token is always the last parameter.
func HLSStreamURL(p StreamParams) string {
	var q orderedQuery
	q.add("static", "true")
	q.add("tag", p.ETag)
	q.add("playSessionId", p.PlaySessionID)
	q.add("segmentContainer", "mp4")
	q.add("minSegments", "2")
	q.add("mediaSourceId", p.MediaSourceID)
	q.add("deviceId", p.DeviceID)
	q.add("audioCodec", joinCodecs(p.AudioCodecs))
	q.add("breakOnNonKeyFrames", "true")
	q.add("requireAvc", "false")
	q.add("transcodingMaxAudioChannels", "8")
	q.add("videoCodec", joinCodecs(p.VideoCodecs))
	if p.VideoStreamIndex >= 0 {
		q.add("videoStreamIndex", strconv.Itoa(p.VideoStreamIndex))
	}
	q.add("enableAdaptiveBitrateStreaming", "true")
	q.add("api_key", p.AccessToken)

	return fmt.Sprintf("%s/Videos/%s/master.m3u8?%s", trimBaseURL(p.BaseURL), url.PathEscape(p.ItemID), q.encode())
}

// DirectStreamURL builds the static stream URL used for direct play and
// direct stream. The access token is always the last parameter.
func DirectStreamURL(p StreamParams) string {
	var q orderedQuery
	q.add("static", "true")
	q.add("mediaSourceId", p.MediaSourceID)
	q.add("deviceId", p.DeviceID)
	q.add("tag", p.ETag)
	q.add("playSessionId", p.PlaySessionID)
	q.add("api_key", p.AccessToken)

	return fmt.Sprintf("%s/Videos/%s/stream?%s", trimBaseURL(p.BaseURL), url.PathEscape(p.ItemID), q.encode())
}

// WithEmbeddedSubtitle rewrites rawURL so the server burns in the embedded
// subtitle stream at index.
//
// Existing subtitle parameters are removed before the new ones are appended,
// keys being matched case-insensitively, so a URL never carries more than one
// of each. The order of the other parameters is kept. An index of -1 removes
// the subtitle parameters without adding new ones.
func WithEmbeddedSubtitle(rawURL string, index int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse stream URL: %w", err)
	}

	var q orderedQuery
	if u.RawQuery != "" {
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key, _, _ := strings.Cut(pair, "=")
			if unescaped, err := url.QueryUnescape(key); err == nil {
				key = unescaped
			}
			if strings.EqualFold(key, subtitleStreamIndexKey) || strings.EqualFold(key, subtitleMethodKey) {
				continue
			}
			q = append(q, pair)
		}
	}

	if index >= 0 {
		q.add(subtitleStreamIndexKey, strconv.Itoa(index))
		q.add(subtitleMethodKey, "Encode")
	}

	u.RawQuery = q.encode()
	return u.String(), nil
}

func joinCodecs(codecs []string) string {
	kept := make([]string, 0, len(codecs))
	for _, c := range codecs {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, ",")
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

package models

import "strings"

// StreamType is how the server delivers the selected media source.
type StreamType int

const (
	StreamTypeUnknown StreamType = iota
	StreamTypeDirectPlay
	StreamTypeDirectStream
	StreamTypeTranscode
)

// String returns the string representation of the stream type
func (s StreamType) String() string {
	switch s {
	case StreamTypeDirectPlay:
		return "directPlay"
	case StreamTypeDirectStream:
		return "directStream"
	case StreamTypeTranscode:
		return "transcode"
	default:
		return "unknown"
	}
}

// PlayMethod is the value the server expects in playback reports.
func (s StreamType) PlayMethod() string {
	switch s {
	case StreamTypeDirectPlay:
		return "DirectPlay"
	case StreamTypeDirectStream:
		return "DirectStream"
	case StreamTypeTranscode:
		return "Transcode"
	default:
		return ""
	}
}

// ParseStreamType converts a stream type string to StreamType enum.
// Both the camelCase form and the server's PlayMethod form are accepted.
func ParseStreamType(s string) StreamType {
	switch strings.ToLower(s) {
	case "directplay":
		return StreamTypeDirectPlay
	case "directstream":
		return StreamTypeDirectStream
	case "transcode":
		return StreamTypeTranscode
	default:
		return StreamTypeUnknown
	}
}

// MarshalJSON implements json.Marshaler interface
func (s StreamType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (s *StreamType) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	*s = ParseStreamType(str)
	return nil
}

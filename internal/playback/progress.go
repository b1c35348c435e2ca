package playback

import "math"

// SecondsAt converts a scrubber position in [0, 1] to a playback position.
// Positions outside the scrubber are clamped.
func SecondsAt(percentage float64, runtimeSeconds int) int {
	switch {
	case runtimeSeconds <= 0 || percentage <= 0 || math.IsNaN(percentage):
		return 0
	case percentage >= 1:
		return runtimeSeconds
	}
	return int(math.Round(percentage * float64(runtimeSeconds)))
}

// Percentage is the inverse of SecondsAt. It returns 0 for items without runtime.
func Percentage(seconds, runtimeSeconds int) float64 {
	if runtimeSeconds <= 0 {
		return 0
	}
	return float64(seconds) / float64(runtimeSeconds)
}

package models

// TicksPerSecond is the server's tick rate: runtimes and positions travel as
// hundred-nanosecond ticks.
const TicksPerSecond int64 = 10_000_000

// TicksToSeconds converts server ticks to whole seconds, truncating toward zero.
// Every tick to second conversion in the module goes through this function.
func TicksToSeconds(ticks int64) int {
	return int(ticks / TicksPerSecond)
}

// SecondsToTicks converts whole seconds to server ticks.
func SecondsToTicks(seconds int) int64 {
	return int64(seconds) * TicksPerSecond
}

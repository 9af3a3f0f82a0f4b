package overlay

import (
	"fmt"
	"strings"
)

// FormatTimes renders a playback position, and optionally a total length,
// as "[h:]m:ss.t[ / [h:]m:ss.t]". Only the first value may be negative; a
// negative second value means there is no total.
func FormatTimes(elapsedMs, totalMs int64) string {
	var sb strings.Builder
	sb.WriteString(formatDuration(elapsedMs))
	if totalMs >= 0 {
		sb.WriteString(" / ")
		sb.WriteString(formatDuration(totalMs))
	}
	return sb.String()
}

func formatDuration(ms int64) string {
	sign := ""
	t := uint64(ms)
	if ms < 0 {
		sign = "-"
		t = uint64(-ms)
	}
	t /= 100
	tenths := t % 10
	t /= 10
	seconds := t % 60
	t /= 60
	minutes := t % 60
	t /= 60
	hours := t % 1000
	if hours > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%d", sign, hours, minutes, seconds, tenths)
	}
	return fmt.Sprintf("%s%d:%02d.%d", sign, minutes, seconds, tenths)
}

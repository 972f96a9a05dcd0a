package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ProgressEvent is one progress sample parsed from the engine's side
// channel. Percent is capped below 100: a job only reaches 100 when the
// process has fully exited, never while output is still being finalized.
type ProgressEvent struct {
	OutTimeSeconds float64
	Percent        float64
}

// progressCap keeps streamed progress under 100 until process exit.
const progressCap = 99.0

// StreamProgress reads the engine's key=value progress lines from r and
// emits one event per out_time marker. The channel is closed when r is
// drained, so the consumer reads at its own pace and the producing goroutine
// never outlives the stream. Lines that are not out_time markers (including
// engine diagnostics sharing the channel) are ignored.
func StreamProgress(r io.Reader, totalDuration float64) <-chan ProgressEvent {
	events := make(chan ProgressEvent)

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			seconds, ok := ParseOutTime(scanner.Text())
			if !ok || totalDuration <= 0 {
				continue
			}

			pct := seconds / totalDuration * 100
			if pct > progressCap {
				pct = progressCap
			}

			events <- ProgressEvent{OutTimeSeconds: seconds, Percent: pct}
		}
	}()

	return events
}

// ParseOutTime extracts the elapsed output time in seconds from one progress
// line. ffmpeg emits both out_time_ms= and out_time_us= markers; despite the
// name, both carry microseconds. Returns ok=false for any other line and for
// unparsable values such as "out_time_ms=N/A".
func ParseOutTime(line string) (float64, bool) {
	line = strings.TrimSpace(line)

	var raw string
	switch {
	case strings.HasPrefix(line, "out_time_us="):
		raw = strings.TrimPrefix(line, "out_time_us=")
	case strings.HasPrefix(line, "out_time_ms="):
		raw = strings.TrimPrefix(line, "out_time_ms=")
	default:
		return 0, false
	}

	micros, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}

	return float64(micros) / 1_000_000.0, true
}

// Package srtemit renders a caption segmenter's cue list as SRT text.
// Grounded on format_captions/core.py's generate_srt for the timing
// rules, and on kapong-yt_enhancer's pkg/subtitle/writer.go for the
// index/timestamp string-building mechanics.
package srtemit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brightcue/transcraft/internal/segmenter"
)

// Render turns a list of caption segments into complete SRT text
// (UTF-8, LF line endings). Every cue's end time is floored at
// start+minDisplayDur, then clamped so it never runs within 0.05s of
// the next cue's start.
func Render(segments []segmenter.CaptionSegment, minDisplayDur float64) string {
	var lines []string

	for i, seg := range segments {
		start := seg.Start
		end := seg.End

		if end-start < minDisplayDur {
			end = start + minDisplayDur
		}
		if i+1 < len(segments) {
			nextStart := segments[i+1].Start
			if end > nextStart-0.05 {
				end = nextStart - 0.05
			}
		}

		lines = append(lines,
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%s --> %s", secondsToSRTTime(start), secondsToSRTTime(end)),
			seg.Formatted,
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// secondsToSRTTime formats a float-seconds timestamp as HH:MM:SS,mmm,
// rounded to the nearest millisecond.
func secondsToSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(math.Round(seconds*1000)) * time.Millisecond
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	secs := d / time.Second
	d -= secs * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

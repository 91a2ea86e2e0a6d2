package srtemit

import (
	"strings"
	"testing"

	"github.com/brightcue/transcraft/internal/segmenter"
)

func TestRender_BasicTwoCues(t *testing.T) {
	segments := []segmenter.CaptionSegment{
		{Text: "Hello there", Start: 0.0, End: 1.4, Formatted: "Hello there"},
		{Text: "General Kenobi", Start: 1.5, End: 2.9, Formatted: "General Kenobi"},
	}

	got := Render(segments, 1.2)
	want := "1\n00:00:00,000 --> 00:00:01,400\nHello there\n\n2\n00:00:01,500 --> 00:00:02,900\nGeneral Kenobi\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_MinDisplayDurFloor(t *testing.T) {
	segments := []segmenter.CaptionSegment{
		{Text: "Hi", Start: 0.0, End: 0.2, Formatted: "Hi"},
	}
	got := Render(segments, 1.2)
	if !strings.Contains(got, "00:00:00,000 --> 00:00:01,200") {
		t.Errorf("expected the cue's end to be floored to start+min_display_dur, got:\n%s", got)
	}
}

func TestRender_OverlapGuardTrimsEnd(t *testing.T) {
	segments := []segmenter.CaptionSegment{
		{Text: "one", Start: 0.0, End: 2.0, Formatted: "one"},
		{Text: "two", Start: 2.03, End: 3.0, Formatted: "two"},
	}
	got := Render(segments, 0.1)
	if !strings.Contains(got, "00:00:00,000 --> 00:00:01,980") {
		t.Errorf("expected the first cue's end trimmed to next.start - 0.05, got:\n%s", got)
	}
}

func TestSecondsToSRTTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{61.5, "00:01:01,500"},
		{3661.25, "01:01:01,250"},
	}
	for _, c := range cases {
		if got := secondsToSRTTime(c.in); got != c.want {
			t.Errorf("secondsToSRTTime(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

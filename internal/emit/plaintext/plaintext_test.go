package plaintext

import (
	"testing"

	"github.com/brightcue/transcraft/internal/ir"
)

func TestRender_PunctuationMergedNoSpace(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "today", StartS: 0, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: "?", StartS: 0.1, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
		},
		Speakers: []ir.SpeakerInfo{{SourceLabel: "1", DisplayName: "Speaker 1"}},
	}
	got := Render(tr)
	want := "Speaker 1:\ntoday?\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_SpeakerTurnsProduceParagraphs(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "hi", StartS: 0, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: "there", StartS: 0.1, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: "hello", StartS: 0.2, DurationS: 0.1, WordType: ir.Word, Speaker: "2"},
		},
		Speakers: []ir.SpeakerInfo{
			{SourceLabel: "1", DisplayName: "Speaker 1"},
			{SourceLabel: "2", DisplayName: "Speaker 2"},
		},
	}
	got := Render(tr)
	want := "Speaker 1:\nhi there\n\nSpeaker 2:\nhello\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_DecimalContinuationJoinedWithoutSpace(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "2", StartS: 0, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: ",", StartS: 0.1, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: "5", StartS: 0.12, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
		},
		Speakers: []ir.SpeakerInfo{{SourceLabel: "1", DisplayName: "Speaker 1"}},
	}
	got := Render(tr)
	want := "Speaker 1:\n2,5\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(ir.Transcript{}); got != "" {
		t.Errorf("Render(empty) = %q, want empty string", got)
	}
}

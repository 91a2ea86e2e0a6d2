package captionadapter

import (
	"testing"

	"github.com/brightcue/transcraft/internal/ir"
)

func TestTransform_S2_SpeakerChangeInjectsMarker(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "hello", StartS: 1.000, DurationS: 0.100, WordType: ir.Word, Speaker: "1"},
			{Text: "I", StartS: 1.200, DurationS: 0.060, WordType: ir.Word, Speaker: "2"},
		},
	}

	got := Transform(tr)
	if len(got) != 3 {
		t.Fatalf("got %d caption words, want 3 (word, marker, word): %+v", len(got), got)
	}
	marker := got[1]
	if !marker.IsSpeakerMarker {
		t.Fatalf("expected word 1 to be the speaker marker, got %+v", marker)
	}
	if marker.Text != "–" {
		t.Errorf("marker text = %q, want \"–\"", marker.Text)
	}
	if marker.Start != 1.200 || marker.End != 1.200 {
		t.Errorf("marker start/end = %v/%v, want 1.200/1.200 (zero-duration, following word's start)", marker.Start, marker.End)
	}
	if got[2].Text != "I" {
		t.Errorf("word after marker = %q, want I", got[2].Text)
	}
}

func TestTransform_FirstSpeakerGetsNoMarker(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "hello", StartS: 0, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: "there", StartS: 0.2, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
		},
	}
	got := Transform(tr)
	if len(got) != 2 {
		t.Fatalf("got %d caption words, want 2 (no marker for the first speaker): %+v", len(got), got)
	}
	for _, w := range got {
		if w.IsSpeakerMarker {
			t.Errorf("unexpected speaker marker for the transcript's first speaker: %+v", w)
		}
	}
}

func TestTransform_EOSFlipsToNextWordSegmentStart(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "you", StartS: 0, DurationS: 0.1, WordType: ir.Word, EOS: true, Speaker: "1"},
			{Text: ".", StartS: 0.1, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: "Next", StartS: 0.2, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
		},
	}
	got := Transform(tr)
	if len(got) != 2 {
		t.Fatalf("got %d caption words, want 2 (punctuation merges onto \"you\"): %+v", len(got), got)
	}
	if got[0].Text != "you." {
		t.Errorf("first word text = %q, want \"you.\"", got[0].Text)
	}
	if !got[0].IsSegmentStart {
		t.Error("the transcript's first word must always be a segment start")
	}
	if !got[1].IsSegmentStart {
		t.Error("word following sentence-ending punctuation must be a segment start")
	}
}

func TestTransform_PunctuationMergeCapAtThree(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: "wait", StartS: 0, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
			{Text: ".", StartS: 0.1, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: ".", StartS: 0.12, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: ".", StartS: 0.14, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: "!", StartS: 0.16, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
		},
	}
	got := Transform(tr)
	if len(got) != 2 {
		t.Fatalf("got %d caption words, want 2 (\"wait...\", \"!\"): %+v", len(got), got)
	}
	if got[0].Text != "wait..." {
		t.Errorf("text = %q, want \"wait...\" (only 3 marks merge)", got[0].Text)
	}
	if got[1].Text != "!" {
		t.Errorf("text = %q, want \"!\" (4th mark starts a fresh caption word instead of merging or being dropped)", got[1].Text)
	}
}

func TestTransform_EmptyTranscriptYieldsNil(t *testing.T) {
	got := Transform(ir.Transcript{})
	if got != nil {
		t.Errorf("got %+v, want nil for an empty transcript", got)
	}
}

func TestTransform_LeadingStandalonePunctuationDropped(t *testing.T) {
	tr := ir.Transcript{
		Words: []ir.AssembledWord{
			{Text: ",", StartS: 0, DurationS: 0.02, WordType: ir.Punctuation, Speaker: "1"},
			{Text: "hi", StartS: 0.02, DurationS: 0.1, WordType: ir.Word, Speaker: "1"},
		},
	}
	got := Transform(tr)
	if len(got) != 1 || got[0].Text != "hi" {
		t.Fatalf("got %+v, want a single word \"hi\" with the leading comma dropped", got)
	}
}

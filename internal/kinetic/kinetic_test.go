package kinetic

import (
	"testing"

	"github.com/brightcue/transcraft/internal/ir"
)

func w(text string, start float64, eos bool) ir.AssembledWord {
	return ir.AssembledWord{Text: text, StartS: start, DurationS: 0.1, WordType: ir.Word, EOS: eos}
}

func TestBuckets_S6_SixWordSentence(t *testing.T) {
	words := []ir.AssembledWord{
		w("one", 0.50, false),
		w("two", 0.80, false),
		w("three", 1.10, false),
		w("four", 1.50, false),
		w("five", 1.80, false),
		w("six", 2.10, true),
		w("seven", 3.50, false),
	}

	buckets := Buckets(words, DefaultConfig)
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3: %+v", len(buckets), buckets)
	}

	bucketA, bucketB := buckets[0], buckets[1]

	assertWord := func(t *testing.T, b Bucket, idx int, wantStart, wantDuration float64) {
		t.Helper()
		got := b.Words[idx]
		gotDuration := b.EndS - got.StartS
		if !almostEqual(got.StartS, wantStart) {
			t.Errorf("word %d: start = %v, want %v", idx, got.StartS, wantStart)
		}
		if !almostEqual(gotDuration, wantDuration) {
			t.Errorf("word %d: display duration = %v, want %v", idx, gotDuration, wantDuration)
		}
	}

	assertWord(t, bucketA, 0, 0.50, 1.00)
	assertWord(t, bucketA, 1, 0.80, 0.70)
	assertWord(t, bucketA, 2, 1.10, 0.40)

	assertWord(t, bucketB, 0, 1.50, 2.00)
	assertWord(t, bucketB, 1, 1.80, 1.70)
	assertWord(t, bucketB, 2, 2.10, 1.40)
}

func TestBuckets_FinalBucketHoldsPastLastWord(t *testing.T) {
	words := []ir.AssembledWord{
		w("only", 10.0, false),
	}
	buckets := Buckets(words, DefaultConfig)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	last := buckets[0].Words[0]
	wantEnd := last.EndS() + DefaultConfig.FinalHoldS
	if !almostEqual(buckets[0].EndS, wantEnd) {
		t.Errorf("final bucket end = %v, want %v (last word end + final hold)", buckets[0].EndS, wantEnd)
	}
}

func TestBuckets_MaxHoldCap(t *testing.T) {
	words := []ir.AssembledWord{
		w("one", 0.0, false),
		w("two", 0.1, false),
		w("three", 0.2, false), // fills bucket A (max_bucket_size=3)
		w("four", 100.0, false), // bucket B, far away: bucket A's clear time must be capped
	}
	buckets := Buckets(words, DefaultConfig)
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(buckets), buckets)
	}
	bucketA := buckets[0]
	lastOfA := bucketA.Words[len(bucketA.Words)-1]
	wantEnd := lastOfA.StartS + DefaultConfig.MaxHoldS
	if !almostEqual(bucketA.EndS, wantEnd) {
		t.Errorf("bucket A end = %v, want %v (capped at max hold, not stretched to bucket B's start)", bucketA.EndS, wantEnd)
	}
}

func TestBuckets_PunctuationMergesOntoPrecedingWord(t *testing.T) {
	words := []ir.AssembledWord{
		{Text: "hi", StartS: 0, DurationS: 0.2, WordType: ir.Word},
		{Text: "!", StartS: 0.2, DurationS: 0.05, WordType: ir.Punctuation, EOS: true},
	}
	buckets := Buckets(words, DefaultConfig)
	if len(buckets) != 1 || len(buckets[0].Words) != 1 {
		t.Fatalf("got %+v, want a single bucket with a single merged word", buckets)
	}
	if buckets[0].Words[0].Text != "hi!" {
		t.Errorf("text = %q, want \"hi!\"", buckets[0].Words[0].Text)
	}
	if !buckets[0].Words[0].EOS {
		t.Error("expected the merged word to inherit eos from the punctuation token")
	}
}

func TestBuckets_LeadingStandalonePunctuationDropped(t *testing.T) {
	words := []ir.AssembledWord{
		{Text: ",", StartS: 0, DurationS: 0.05, WordType: ir.Punctuation},
		{Text: "hi", StartS: 0.05, DurationS: 0.2, WordType: ir.Word},
	}
	buckets := Buckets(words, DefaultConfig)
	if len(buckets) != 1 || len(buckets[0].Words) != 1 || buckets[0].Words[0].Text != "hi" {
		t.Fatalf("got %+v, want a single bucket with just \"hi\"", buckets)
	}
}

func TestBuckets_EmptyInput(t *testing.T) {
	if got := Buckets(nil, DefaultConfig); got != nil {
		t.Errorf("Buckets(nil) = %+v, want nil", got)
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}

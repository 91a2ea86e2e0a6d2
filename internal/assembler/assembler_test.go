package assembler

import (
	"testing"

	"github.com/brightcue/transcraft/internal/ir"
)

func ms(v int64) *int64 { return &v }

func TestAssembleTokens_S1_SubWordsAndPunctuation(t *testing.T) {
	tokens := []SourceToken{
		{Text: "How", StartMS: ms(120), EndMS: ms(250), Confidence: 0.97, Speaker: "1", Language: "en"},
		{Text: " are", StartMS: ms(260), EndMS: ms(380), Confidence: 0.95, Speaker: "1", Language: "en"},
		{Text: " you", StartMS: ms(390), EndMS: ms(510), Confidence: 0.96, Speaker: "1", Language: "en"},
		{Text: " do", StartMS: ms(520), EndMS: ms(600), Confidence: 0.93, Speaker: "1", Language: "en"},
		{Text: "ing", StartMS: ms(600), EndMS: ms(720), Confidence: 0.94, Speaker: "1", Language: "en"},
		{Text: " to", StartMS: ms(730), EndMS: ms(790), Confidence: 0.91, Speaker: "1", Language: "en"},
		{Text: "day", StartMS: ms(790), EndMS: ms(920), Confidence: 0.96, Speaker: "1", Language: "en"},
		{Text: "?", StartMS: ms(920), EndMS: ms(940), Confidence: 0.99, Speaker: "1", Language: "en"},
	}

	words, err := AssembleTokens(tokens)
	if err != nil {
		t.Fatalf("AssembleTokens: %v", err)
	}

	type want struct {
		text      string
		startS    float64
		durationS float64
		conf      float64
		wordType  ir.WordType
		eos       bool
	}
	expected := []want{
		{"How", 0.120, 0.130, 0.97, ir.Word, false},
		{"are", 0.260, 0.120, 0.95, ir.Word, false},
		{"you", 0.390, 0.120, 0.96, ir.Word, false},
		{"doing", 0.520, 0.200, 0.93, ir.Word, false},
		{"today", 0.730, 0.190, 0.91, ir.Word, true},
		{"?", 0.920, 0.020, 0.99, ir.Punctuation, false},
	}

	if len(words) != len(expected) {
		t.Fatalf("got %d words, want %d: %+v", len(words), len(expected), words)
	}
	for i, w := range expected {
		got := words[i]
		if got.Text != w.text {
			t.Errorf("word %d: text = %q, want %q", i, got.Text, w.text)
		}
		if !almostEqual(got.StartS, w.startS) {
			t.Errorf("word %d (%s): start_s = %v, want %v", i, w.text, got.StartS, w.startS)
		}
		if !almostEqual(got.DurationS, w.durationS) {
			t.Errorf("word %d (%s): duration_s = %v, want %v", i, w.text, got.DurationS, w.durationS)
		}
		if !almostEqual(got.Confidence, w.conf) {
			t.Errorf("word %d (%s): confidence = %v, want %v", i, w.text, got.Confidence, w.conf)
		}
		if got.WordType != w.wordType {
			t.Errorf("word %d (%s): word_type = %v, want %v", i, w.text, got.WordType, w.wordType)
		}
		if got.EOS != w.eos {
			t.Errorf("word %d (%s): eos = %v, want %v", i, w.text, got.EOS, w.eos)
		}
	}
}

func TestAssembleTokens_S3_EOSInference(t *testing.T) {
	tokens := []SourceToken{
		{Text: "you", StartMS: ms(0), EndMS: ms(100), Confidence: 0.9, Speaker: "1", Language: "en"},
		{Text: ".", StartMS: ms(100), EndMS: ms(120), Confidence: 0.9, Speaker: "1", Language: "en"},
	}

	words, err := AssembleTokens(tokens)
	if err != nil {
		t.Fatalf("AssembleTokens: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
	if !words[0].EOS {
		t.Errorf("word %q: eos = false, want true", words[0].Text)
	}
	if words[1].EOS {
		t.Errorf("word %q: eos = true, want false", words[1].Text)
	}
}

func TestAssembleTokens_SpeakerChangeForcesBoundary(t *testing.T) {
	tokens := []SourceToken{
		{Text: "hey", StartMS: ms(0), EndMS: ms(100), Confidence: 0.9, Speaker: "1", Language: "en"},
		{Text: "there", StartMS: ms(100), EndMS: ms(200), Confidence: 0.9, Speaker: "2", Language: "en"},
	}

	words, err := AssembleTokens(tokens)
	if err != nil {
		t.Fatalf("AssembleTokens: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2 (speaker change must force a new word): %+v", len(words), words)
	}
	if words[0].Speaker != "1" || words[1].Speaker != "2" {
		t.Errorf("speakers = %q, %q; want 1, 2", words[0].Speaker, words[1].Speaker)
	}
}

func TestAssembleTokens_MalformedTokenMissingTiming(t *testing.T) {
	tokens := []SourceToken{
		{Text: "hi", StartMS: nil, EndMS: ms(100), Confidence: 0.9, Speaker: "1"},
	}
	_, err := AssembleTokens(tokens)
	if err == nil {
		t.Fatal("expected an error for a token missing start_ms")
	}
}

func TestFilterTranslationTokens_DropsTranslationOnly(t *testing.T) {
	tokens := []SourceToken{
		{Text: "a", TranslationStatus: TranslationOriginal},
		{Text: "b", TranslationStatus: TranslationTranslation},
		{Text: "c", TranslationStatus: TranslationNone},
		{Text: "d", TranslationStatus: TranslationAbsent},
	}
	out := FilterTranslationTokens(tokens)
	if len(out) != 3 {
		t.Fatalf("got %d tokens, want 3: %+v", len(out), out)
	}
	for _, tok := range out {
		if tok.TranslationStatus == TranslationTranslation {
			t.Errorf("translation token %q survived filtering", tok.Text)
		}
	}
}

func TestBuildTranscript_EmptyTranscriptError(t *testing.T) {
	_, err := BuildTranscript(nil, "source.json")
	if err == nil {
		t.Fatal("expected an error for an empty word list")
	}
}

func TestBuildTranscript_SpeakerTableAndPrimaryLanguage(t *testing.T) {
	words := []ir.AssembledWord{
		{Text: "hej", StartS: 0, DurationS: 0.2, WordType: ir.Word, Speaker: "1", Language: "sv"},
		{Text: "hello", StartS: 0.3, DurationS: 0.2, WordType: ir.Word, Speaker: "2", Language: "en"},
		{Text: "world", StartS: 0.6, DurationS: 0.2, WordType: ir.Word, Speaker: "2", Language: "en"},
	}

	tr, err := BuildTranscript(words, "source.json")
	if err != nil {
		t.Fatalf("BuildTranscript: %v", err)
	}
	if len(tr.Speakers) != 2 {
		t.Fatalf("got %d speakers, want 2: %+v", len(tr.Speakers), tr.Speakers)
	}
	if tr.Speakers[0].DisplayName != "Speaker 1" || tr.Speakers[1].DisplayName != "Speaker 2" {
		t.Errorf("display names = %q, %q", tr.Speakers[0].DisplayName, tr.Speakers[1].DisplayName)
	}
	if tr.Speakers[0].UUID == "" || tr.Speakers[1].UUID == "" || tr.Speakers[0].UUID == tr.Speakers[1].UUID {
		t.Errorf("expected distinct non-empty UUIDs, got %q and %q", tr.Speakers[0].UUID, tr.Speakers[1].UUID)
	}
	if tr.PrimaryLanguage != "en" {
		t.Errorf("primary language = %q, want en", tr.PrimaryLanguage)
	}
	wantDuration := 0.6 + 0.2
	if !almostEqual(tr.DurationS, wantDuration) {
		t.Errorf("duration_s = %v, want %v", tr.DurationS, wantDuration)
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

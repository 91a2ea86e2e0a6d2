package extinput

import "testing"

func TestParseJSON_FlatWordArray(t *testing.T) {
	raw := []byte(`[{"word":"hello","start":0.1,"end":0.4},{"t":"world","s":0.4,"e":0.8}]`)
	words, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
	if words[0].Text != "hello" || words[1].Text != "world" {
		t.Errorf("texts = %q, %q", words[0].Text, words[1].Text)
	}
}

func TestParseJSON_NestedSegments(t *testing.T) {
	raw := []byte(`[{"words":[{"text":"hi","start":0,"end":0.2},{"text":"there","start":0.2,"end":0.5}]}]`)
	words, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
	if !words[0].IsSegmentStart {
		t.Error("first word of a segment should get is_segment_start=true")
	}
	if words[1].IsSegmentStart {
		t.Error("second word of a segment should not get is_segment_start=true")
	}
}

func TestParseJSON_SpeakerMarkerDetected(t *testing.T) {
	raw := []byte(`[{"words":[{"text":"–","start":1.0,"end":1.0},{"text":"hi","start":1.0,"end":1.2}]}]`)
	words, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !words[0].IsSpeakerMarker {
		t.Error("en-dash should be detected as a speaker marker")
	}
	if words[0].IsSegmentStart {
		t.Error("a speaker marker must not itself be a segment start")
	}
	if !words[1].IsSegmentStart {
		t.Error("the first real word after a marker should be the segment start")
	}
}

func TestParseJSON_RecoversTruncatedArray(t *testing.T) {
	raw := []byte(`[{"word":"hi","start":0,"end":0.2},{"word":"there","start":0.2,"end":0.4}`)
	words, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("ParseJSON with a truncated array: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
}

func TestParseJSON_UnrecoverableGarbage(t *testing.T) {
	if _, err := ParseJSON([]byte("not json at all {{{")); err == nil {
		t.Error("expected an error for unrecoverable garbage input")
	}
}

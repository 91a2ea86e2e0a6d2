// Package extinput is a side door around the assembler for raw word-array
// JSON pasted from a speech-to-text vendor whose schema the core doesn't
// know. It tolerates field-name aliasing and truncated JSON the way
// format_captions/core.py's parse_input/try_parse_json did before the
// segmenter's input contract was tightened to captionadapter.CaptionWord.
// The segmenter and emitters downstream never know whether their input
// came from transcraft's own assembler or from here.
package extinput

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brightcue/transcraft/internal/captionadapter"
)

// ParseJSON recovers a []captionadapter.CaptionWord from raw JSON in
// either of two shapes: a flat array of word objects, or an array of
// segments each carrying a nested "words" array. Field names are
// aliased (word|text|t for the token text, start|s, end|e). If raw is
// not valid JSON outright, bracket-completion recovery is attempted for
// common truncations before giving up.
func ParseJSON(raw []byte) ([]captionadapter.CaptionWord, error) {
	data, err := tryParseJSON(raw)
	if err != nil {
		return nil, err
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("extinput: expected a JSON array at the top level")
	}

	var words []captionadapter.CaptionWord
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		if nested, ok := item["words"].([]interface{}); ok {
			isFirstInSegment := true
			for _, rw := range nested {
				w, ok := rw.(map[string]interface{})
				if !ok {
					continue
				}
				cw, ok := buildWord(w, isFirstInSegment)
				if !ok {
					continue
				}
				words = append(words, cw)
				if !cw.IsSpeakerMarker {
					isFirstInSegment = false
				}
			}
			continue
		}

		if hasAny(item, "word", "text", "t") {
			cw, ok := buildWord(item, false)
			if ok {
				words = append(words, cw)
			}
		}
	}

	return words, nil
}

func hasAny(m map[string]interface{}, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func buildWord(m map[string]interface{}, isFirstInSegment bool) (captionadapter.CaptionWord, bool) {
	text := stringField(m, "word", "text", "t")
	text = strings.TrimSpace(text)
	if text == "" {
		return captionadapter.CaptionWord{}, false
	}

	start := numberField(m, "start", "s")
	end := numberField(m, "end", "e")
	if end == 0 && !hasAny(m, "end", "e") {
		end = start
	}

	isSpeaker := text == "–" || text == "-" || text == "—"

	return captionadapter.CaptionWord{
		Text:            text,
		Start:           start,
		End:             end,
		IsSpeakerMarker: isSpeaker,
		IsSegmentStart:  isFirstInSegment && !isSpeaker,
	}, true
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func numberField(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f
			}
		}
	}
	return 0
}

// bracketCompletionSuffixes are appended, in order, to a raw JSON blob
// that fails to parse outright, in an attempt to recover from a snippet
// truncated mid-array or mid-object.
var bracketCompletionSuffixes = []string{
	"", "]", "}]", "}]}", "]}", "]}}", "]}]",
}

func tryParseJSON(raw []byte) (interface{}, error) {
	text := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\r", "\n"))

	var data interface{}
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return data, nil
	}

	trimmed := strings.TrimRight(strings.TrimRightFunc(text, isTrailingWhitespace), ",")

	for _, suffix := range bracketCompletionSuffixes {
		if err := json.Unmarshal([]byte(trimmed+suffix), &data); err == nil {
			return data, nil
		}
	}
	for _, suffix := range bracketCompletionSuffixes {
		if err := json.Unmarshal([]byte(text+suffix), &data); err == nil {
			return data, nil
		}
	}

	return nil, fmt.Errorf("extinput: could not parse JSON input even with bracket-completion recovery")
}

func isTrailingWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// Package editorjson renders a Transcript IR as editor-JSON: one segment
// per sentence, split at eos, each carrying a speaker UUID, a BCP-47
// language code, and its full word array. Grounded on
// soniox_converter/formatters/premiere_pro.py.
package editorjson

import (
	"github.com/brightcue/transcraft/internal/ir"
	"github.com/brightcue/transcraft/internal/langmap"
)

// Word is one word or punctuation mark within a Segment.
type Word struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	Duration   float64  `json:"duration"`
	Confidence float64  `json:"confidence"`
	Type       string   `json:"type"`
	EOS        bool     `json:"eos"`
	Tags       []string `json:"tags"`
}

// Segment is one sentence's worth of words, plus the speaker and
// language that produced it.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Speaker  string  `json:"speaker"`
	Language string  `json:"language"`
	Words    []Word  `json:"words"`
}

// Speaker is one entry in the document's top-level speaker table.
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document is the full editor-JSON document.
type Document struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Speakers []Speaker `json:"speakers"`
}

// Render splits the transcript into one segment per sentence — a new
// segment starts at the first non-punctuation word after an eos word, so
// trailing punctuation stays with the sentence it closes — and renders
// the editor-JSON document.
func Render(tr ir.Transcript) Document {
	defaultLanguage := mapLanguage(tr.PrimaryLanguage)

	segments := segmentBySentence(tr.Words, tr, defaultLanguage)

	return Document{
		Language: defaultLanguage,
		Segments: segments,
		Speakers: speakersArray(tr.Speakers),
	}
}

func mapLanguage(iso string) string {
	if iso == "" {
		return langmap.UnknownLanguageCode
	}
	code, _ := langmap.ToBCP47(iso)
	return code
}

func speakersArray(speakers []ir.SpeakerInfo) []Speaker {
	if len(speakers) == 0 {
		return nil
	}
	out := make([]Speaker, len(speakers))
	for i, s := range speakers {
		out[i] = Speaker{ID: s.UUID, Name: s.DisplayName}
	}
	return out
}

func segmentBySentence(words []ir.AssembledWord, tr ir.Transcript, defaultLanguage string) []Segment {
	var segments []Segment
	var current []ir.AssembledWord
	sentenceEnded := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, buildSegment(current, tr, defaultLanguage))
		current = nil
	}

	for _, w := range words {
		if sentenceEnded && !w.IsPunctuation() {
			flush()
			sentenceEnded = false
		}
		current = append(current, w)
		if w.EOS {
			sentenceEnded = true
		}
	}
	flush()

	return segments
}

func buildSegment(words []ir.AssembledWord, tr ir.Transcript, defaultLanguage string) Segment {
	first := words[0]
	last := words[len(words)-1]

	speakerUUID := ""
	if info, ok := tr.SpeakerByLabel(first.Speaker); ok {
		speakerUUID = info.UUID
	}

	language := defaultLanguage
	for _, w := range words {
		if w.IsWord() && w.Language != "" {
			language = mapLanguage(w.Language)
			break
		}
	}

	start := first.StartS
	end := last.EndS()

	return Segment{
		Start:    start,
		Duration: end - start,
		Speaker:  speakerUUID,
		Language: language,
		Words:    wordDicts(words),
	}
}

func wordDicts(words []ir.AssembledWord) []Word {
	out := make([]Word, len(words))
	for i, w := range words {
		tags := w.Tags
		if tags == nil {
			tags = []string{}
		}
		out[i] = Word{
			Text:       w.Text,
			Start:      w.StartS,
			Duration:   w.DurationS,
			Confidence: w.Confidence,
			Type:       string(w.WordType),
			EOS:        w.EOS,
			Tags:       tags,
		}
	}
	return out
}

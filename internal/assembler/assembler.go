// Package assembler reconstructs whole words from sub-word speech
// recognition tokens, classifies punctuation, aggregates confidence,
// infers sentence boundaries, and maps speakers into the IR. Grounded on
// soniox_converter/core/assembler.py's two-pass structure: accumulate
// tokens into words left to right, then infer EOS in a second pass.
package assembler

import (
	"strconv"
	"strings"

	"github.com/brightcue/transcraft/internal/coreerr"
	"github.com/brightcue/transcraft/internal/ir"
	"github.com/google/uuid"
)

// TranslationStatus mirrors the upstream service's per-token field. Only
// "translation" tokens are dropped; everything else is kept.
type TranslationStatus string

const (
	TranslationOriginal    TranslationStatus = "original"
	TranslationNone        TranslationStatus = "none"
	TranslationTranslation TranslationStatus = "translation"
	TranslationAbsent      TranslationStatus = "absent"
)

// SourceToken is one sub-word token from the upstream speech-to-text
// service's response. Field names follow spec.md section 6's fixed wire
// shape. StartMS/EndMS are pointers because a translation token may
// carry neither; every other token must have both after the pre-filter.
type SourceToken struct {
	Text              string            `json:"text"`
	StartMS           *int64            `json:"start_ms"`
	EndMS             *int64            `json:"end_ms"`
	Confidence        float64           `json:"confidence"`
	Speaker           string            `json:"speaker"`
	Language          string            `json:"language"`
	TranslationStatus TranslationStatus `json:"translation_status"`
}

var punctuationChars = map[string]bool{
	".": true, ",": true, "?": true, "!": true, ";": true, ":": true,
	"…": true, // …
	"—": true, // —
	"–": true, // –
}

// eosPunctuation is the subset of punctuationChars that ends a sentence.
var eosPunctuation = map[string]bool{".": true, "?": true, "!": true}

func isPunctuationOnly(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !punctuationChars[string(r)] {
			return false
		}
	}
	return true
}

// FilterTranslationTokens drops every token whose TranslationStatus is
// "translation". All remaining tokens are expected to carry valid
// timestamps.
func FilterTranslationTokens(tokens []SourceToken) []SourceToken {
	out := make([]SourceToken, 0, len(tokens))
	for _, t := range tokens {
		if t.TranslationStatus == TranslationTranslation {
			continue
		}
		out = append(out, t)
	}
	return out
}

type accumulator struct {
	text        strings.Builder
	open        bool
	startMS     int64
	endMS       int64
	minConf     float64
	speaker     string
	language    string
}

func (a *accumulator) reset() {
	a.text.Reset()
	a.open = false
}

func (a *accumulator) flush(words *[]ir.AssembledWord) {
	if !a.open {
		return
	}
	*words = append(*words, ir.AssembledWord{
		Text:       a.text.String(),
		StartS:     float64(a.startMS) / 1000.0,
		DurationS:  float64(a.endMS-a.startMS) / 1000.0,
		Confidence: a.minConf,
		WordType:   ir.Word,
		Speaker:    a.speaker,
		Language:   a.language,
	})
	a.reset()
}

// AssembleTokens turns pre-filtered sub-word tokens into whole words.
// Tokens whose Text is empty are skipped silently. A token missing
// StartMS or EndMS, or carrying end < start, is reported as
// coreerr.MalformedToken with its index in the (pre-filtered) slice.
func AssembleTokens(tokens []SourceToken) ([]ir.AssembledWord, error) {
	words := make([]ir.AssembledWord, 0, len(tokens))
	var acc accumulator

	for i, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		if tok.StartMS == nil || tok.EndMS == nil {
			return nil, &coreerr.MalformedToken{Index: i, Reason: "missing start_ms or end_ms"}
		}
		startMS, endMS := *tok.StartMS, *tok.EndMS
		if endMS < startMS {
			return nil, &coreerr.MalformedToken{Index: i, Reason: "end_ms before start_ms"}
		}

		if isPunctuationOnly(tok.Text) {
			acc.flush(&words)
			words = append(words, ir.AssembledWord{
				Text:       tok.Text,
				StartS:     float64(startMS) / 1000.0,
				DurationS:  float64(endMS-startMS) / 1000.0,
				Confidence: tok.Confidence,
				WordType:   ir.Punctuation,
				Speaker:    tok.Speaker,
				Language:   tok.Language,
			})
			continue
		}

		leadingSpace := strings.HasPrefix(tok.Text, " ")
		speakerChanged := acc.open && tok.Speaker != acc.speaker

		if leadingSpace || !acc.open || speakerChanged {
			acc.flush(&words)
			acc.open = true
			acc.text.WriteString(strings.TrimPrefix(tok.Text, " "))
			acc.startMS = startMS
			acc.endMS = endMS
			acc.minConf = tok.Confidence
			acc.speaker = tok.Speaker
			acc.language = tok.Language
			continue
		}

		acc.text.WriteString(tok.Text)
		acc.endMS = endMS
		if tok.Confidence < acc.minConf {
			acc.minConf = tok.Confidence
		}
	}
	acc.flush(&words)

	inferEOS(words)

	return words, nil
}

// inferEOS marks eos=true on the word immediately preceding a sentence-
// ending punctuation mark (".", "?", "!"). All other words are left
// eos=false.
func inferEOS(words []ir.AssembledWord) {
	for i, w := range words {
		if w.WordType == ir.Punctuation && eosPunctuation[w.Text] {
			for j := i - 1; j >= 0; j-- {
				if words[j].WordType == ir.Word {
					words[j].EOS = true
					break
				}
			}
		}
	}
}

// BuildTranscript assigns a speaker table (display names in order of
// first appearance, one fresh UUID v4 per distinct source label; a
// single default speaker if none appear anywhere), determines the
// primary language by majority vote (ties broken by first occurrence),
// and returns the complete Transcript IR.
//
// Returns coreerr.EmptyTranscript if words is empty.
func BuildTranscript(words []ir.AssembledWord, sourceName string) (ir.Transcript, error) {
	if len(words) == 0 {
		return ir.Transcript{}, &coreerr.EmptyTranscript{}
	}

	speakers, words := assignSpeakers(words)
	primaryLanguage := majorityLanguage(words)

	last := words[len(words)-1]
	return ir.Transcript{
		Words:           words,
		Speakers:        speakers,
		PrimaryLanguage: primaryLanguage,
		SourceName:      sourceName,
		DurationS:       last.StartS + last.DurationS,
	}, nil
}

// assignSpeakers walks words in order, allocating a SpeakerInfo (display
// name "Speaker N", fresh UUID v4) for each distinct non-empty source
// label the first time it's seen. If no word carries a speaker label, a
// single default speaker is created and assigned to every word.
func assignSpeakers(words []ir.AssembledWord) ([]ir.SpeakerInfo, []ir.AssembledWord) {
	anySpeaker := false
	for _, w := range words {
		if w.Speaker != "" {
			anySpeaker = true
			break
		}
	}

	if !anySpeaker {
		def := ir.SpeakerInfo{
			SourceLabel: "1",
			DisplayName: "Speaker 1",
			UUID:        uuid.NewString(),
		}
		out := make([]ir.AssembledWord, len(words))
		for i, w := range words {
			w.Speaker = def.SourceLabel
			out[i] = w
		}
		return []ir.SpeakerInfo{def}, out
	}

	var speakers []ir.SpeakerInfo
	seen := make(map[string]bool)
	n := 1
	for _, w := range words {
		if w.Speaker == "" || seen[w.Speaker] {
			continue
		}
		seen[w.Speaker] = true
		speakers = append(speakers, ir.SpeakerInfo{
			SourceLabel: w.Speaker,
			DisplayName: "Speaker " + strconv.Itoa(n),
			UUID:        uuid.NewString(),
		})
		n++
	}
	return speakers, words
}

func majorityLanguage(words []ir.AssembledWord) string {
	counts := make(map[string]int)
	order := make([]string, 0, 4)
	for _, w := range words {
		if w.Language == "" {
			continue
		}
		if counts[w.Language] == 0 {
			order = append(order, w.Language)
		}
		counts[w.Language]++
	}
	best := ""
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best = lang
			bestCount = counts[lang]
		}
	}
	return best
}


// Package plaintext renders a Transcript IR as speaker-labelled plain
// text paragraphs. Grounded on
// soniox_converter/formatters/plain_text.py.
package plaintext

import (
	"strings"
	"unicode"

	"github.com/brightcue/transcraft/internal/ir"
)

// mergePunctuation is the set of punctuation marks that attach to the
// preceding word with no space. Note this is a superset of the caption
// adapter's set: it also includes en-dash and hyphen, which read
// naturally glued to a word in prose but would be mistaken for a
// caption speaker marker if merged there.
var mergePunctuation = map[string]bool{
	".": true, ",": true, "?": true, "!": true, ";": true, ":": true,
	"…": true, "—": true, "–": true, "-": true,
}

// Render groups the transcript's words into one paragraph per
// contiguous same-speaker run, each headed by "Speaker N:" on its own
// line, punctuation merged onto the preceding word.
func Render(tr ir.Transcript) string {
	var paragraphs []string
	var currentSpeaker string
	var currentWords []ir.AssembledWord
	haveCurrent := false

	flush := func() {
		if len(currentWords) == 0 {
			return
		}
		name := speakerName(tr, currentSpeaker)
		paragraphs = append(paragraphs, name+":\n"+mergeWordsToText(currentWords))
		currentWords = nil
	}

	for _, w := range tr.Words {
		if !haveCurrent || w.Speaker != currentSpeaker {
			flush()
			currentSpeaker = w.Speaker
			haveCurrent = true
		}
		currentWords = append(currentWords, w)
	}
	flush()

	content := strings.Join(paragraphs, "\n\n")
	if content != "" {
		content += "\n"
	}
	return content
}

func speakerName(tr ir.Transcript, label string) string {
	if info, ok := tr.SpeakerByLabel(label); ok {
		return info.DisplayName
	}
	return "Speaker 1"
}

func mergeWordsToText(words []ir.AssembledWord) string {
	if len(words) == 0 {
		return ""
	}

	var parts []string
	for _, w := range words {
		if w.IsPunctuation() && mergePunctuation[w.Text] {
			parts = append(parts, w.Text)
			continue
		}
		if len(parts) > 0 {
			prev := parts[len(parts)-1]
			if (prev == "," || prev == "-") && isDigits(w.Text) {
				parts = append(parts, w.Text)
				continue
			}
			parts = append(parts, " ", w.Text)
			continue
		}
		parts = append(parts, w.Text)
	}

	return strings.Join(parts, "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

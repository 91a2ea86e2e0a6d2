// Package markdown renders a Transcript IR as a human-readable Markdown
// document for quick review, supplementing the emitters spec.md names
// explicitly. Grounded on
// zudsniper-meet-recording-processor/internal/output/markdown.go's
// header-then-body shape and its secToTS helper.
package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/brightcue/transcraft/internal/ir"
)

// Render produces a "# Transcript" header with a metadata block, then
// one "[start-end] Speaker N: text" line per sentence.
func Render(tr ir.Transcript) string {
	var b strings.Builder

	b.WriteString("# Transcript\n\n")
	if tr.SourceName != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", tr.SourceName)
	}
	if tr.DurationS > 0 {
		fmt.Fprintf(&b, "- Duration: %s\n", time.Duration(tr.DurationS*float64(time.Second)).Truncate(time.Second))
	}
	if tr.PrimaryLanguage != "" {
		fmt.Fprintf(&b, "- Primary language: %s\n", tr.PrimaryLanguage)
	}
	fmt.Fprintf(&b, "- Speakers: %d\n", len(tr.Speakers))
	b.WriteString("\n---\n\n")

	for _, sentence := range splitSentences(tr.Words) {
		if len(sentence) == 0 {
			continue
		}
		first, last := sentence[0], sentence[len(sentence)-1]
		name := speakerName(tr, first.Speaker)
		text := sentenceText(sentence)
		fmt.Fprintf(&b, "[%s-%s] %s: %s\n\n", secToTS(first.StartS), secToTS(last.EndS()), name, text)
	}

	return b.String()
}

func speakerName(tr ir.Transcript, label string) string {
	if info, ok := tr.SpeakerByLabel(label); ok {
		return info.DisplayName
	}
	return "Speaker 1"
}

func splitSentences(words []ir.AssembledWord) [][]ir.AssembledWord {
	var sentences [][]ir.AssembledWord
	var current []ir.AssembledWord
	sentenceEnded := false

	for _, w := range words {
		if sentenceEnded && !w.IsPunctuation() {
			sentences = append(sentences, current)
			current = nil
			sentenceEnded = false
		}
		current = append(current, w)
		if w.EOS {
			sentenceEnded = true
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, current)
	}
	return sentences
}

func sentenceText(words []ir.AssembledWord) string {
	var parts []string
	for _, w := range words {
		if w.IsPunctuation() {
			if len(parts) > 0 {
				parts[len(parts)-1] += w.Text
			} else {
				parts = append(parts, w.Text)
			}
			continue
		}
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

func secToTS(sec float64) string {
	d := time.Duration(sec*1000) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

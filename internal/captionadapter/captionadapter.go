// Package captionadapter bridges the assembler's IR to the word shape the
// caption segmenter expects. Grounded on
// soniox_converter/adapters/caption_adapter.py: the IR keeps punctuation
// as separate words and marks end-of-sentence on the last word of a
// sentence, while the segmenter wants punctuation merged onto the
// preceding word, sentence boundaries marked on the first word of the
// next sentence, and speaker changes signalled by synthetic marker
// words.
package captionadapter

import "github.com/brightcue/transcraft/internal/ir"

// mergePunctuation is the set of punctuation marks that merge onto the
// preceding word. Three dots merge as three separate marks (capped at 3
// consecutive) rather than being pre-collapsed into a single ellipsis.
var mergePunctuation = map[string]bool{
	".": true, ",": true, "?": true, "!": true, ";": true, ":": true,
	"…": true, "—": true,
}

var sentenceEnding = map[string]bool{".": true, "?": true, "!": true}

// CaptionWord is one unit in the flat stream the segmenter operates on:
// either a real (possibly punctuation-merged) word, or a zero-duration
// synthetic speaker-change marker.
type CaptionWord struct {
	Text            string
	Start           float64
	End             float64
	IsSpeakerMarker bool
	IsSegmentStart  bool
}

type mergedWord struct {
	text            string
	start           float64
	end             float64
	speaker         string
	endsSentence    bool
	isSpeakerMarker bool
}

// Transform flattens a Transcript's word stream, merges standalone
// punctuation onto the preceding word (capped at 3 consecutive marks per
// word), injects zero-duration speaker-change markers, and flips each
// sentence's EOS flag into an is_segment_start flag on the following
// word. Returns nil if the transcript has no words. The input transcript
// is never modified.
func Transform(tr ir.Transcript) []CaptionWord {
	if len(tr.Words) == 0 {
		return nil
	}

	merged := mergePunct(tr.Words)
	if len(merged) == 0 {
		return nil
	}
	withSpeakers := injectSpeakerMarkers(merged)
	return applySegmentStarts(withSpeakers)
}

func mergePunct(words []ir.AssembledWord) []mergedWord {
	var merged []mergedWord
	mergeCount := 0

	for _, w := range words {
		if w.IsPunctuation() && mergePunctuation[w.Text] && len(merged) > 0 && mergeCount < 3 {
			prev := &merged[len(merged)-1]
			prev.text += w.Text
			prev.end = w.EndS()
			if sentenceEnding[w.Text] {
				prev.endsSentence = true
			}
			mergeCount++
			continue
		}

		if w.IsPunctuation() && mergePunctuation[w.Text] && len(merged) == 0 {
			// standalone punctuation at the very start: dropped
			continue
		}

		mergeCount = 0
		merged = append(merged, mergedWord{
			text:    w.Text,
			start:   w.StartS,
			end:     w.EndS(),
			speaker: w.Speaker,
		})
	}

	return merged
}

func injectSpeakerMarkers(merged []mergedWord) []mergedWord {
	if len(merged) == 0 {
		return merged
	}

	result := make([]mergedWord, 0, len(merged)+4)
	result = append(result, merged[0])
	prevSpeaker := merged[0].speaker

	for _, mw := range merged[1:] {
		if mw.speaker != prevSpeaker && mw.speaker != "" {
			result = append(result, mergedWord{
				text:            "–",
				start:           mw.start,
				end:             mw.start,
				speaker:         mw.speaker,
				isSpeakerMarker: true,
			})
		}
		prevSpeaker = mw.speaker
		result = append(result, mw)
	}

	return result
}

func applySegmentStarts(merged []mergedWord) []CaptionWord {
	result := make([]CaptionWord, 0, len(merged))
	nextIsSegmentStart := true

	for _, mw := range merged {
		if mw.isSpeakerMarker {
			result = append(result, CaptionWord{
				Text:            mw.text,
				Start:           mw.start,
				End:             mw.end,
				IsSpeakerMarker: true,
			})
			continue
		}

		result = append(result, CaptionWord{
			Text:           mw.text,
			Start:          mw.start,
			End:            mw.end,
			IsSegmentStart: nextIsSegmentStart,
		})

		nextIsSegmentStart = mw.endsSentence
	}

	return result
}

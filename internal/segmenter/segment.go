package segmenter

import (
	"math"
	"strings"

	"github.com/brightcue/transcraft/internal/captionadapter"
	"github.com/brightcue/transcraft/internal/coreerr"
)

// CaptionSegment is one on-screen cue: its text, timing, and chosen line
// layout.
type CaptionSegment struct {
	Text        string
	Start       float64
	End         float64
	Formatted   string
	Lines       []string
	HasSpeaker  bool
}

// Segment groups a caption word stream into cues via the DP described in
// format_captions/core.py's segment_words, falling back to a greedy pass
// when no DP path satisfies every constraint. Returns
// coreerr.SegmentationInfeasible if even the greedy fallback cannot place
// every word into a valid cue.
func Segment(words []captionadapter.CaptionWord, cfg Config) ([]CaptionSegment, error) {
	if len(words) == 0 {
		return nil, nil
	}

	segs := segmentDP(words, cfg)
	if segs == nil {
		segs = greedySegment(words, cfg)
	}
	if len(segs) == 0 {
		return nil, &coreerr.SegmentationInfeasible{Reason: "no valid cue layout found for some word span"}
	}
	return segs, nil
}

func buildSegmentText(seg []captionadapter.CaptionWord) (text string, hasSpeaker bool, ok bool) {
	var parts []string
	for _, w := range seg {
		if w.IsSpeakerMarker {
			hasSpeaker = true
			continue
		}
		parts = append(parts, w.Text)
	}
	if len(parts) == 0 {
		return "", hasSpeaker, false
	}
	text = strings.Join(parts, " ")
	if hasSpeaker {
		text = "– " + text
	}
	return text, hasSpeaker, true
}

// segmentDP runs the shortest-path DP. Returns nil if no valid path from
// 0 to N exists (dp[N] stays infinite), signalling the caller to fall
// back to greedySegment.
func segmentDP(words []captionadapter.CaptionWord, cfg Config) []CaptionSegment {
	n := len(words)

	forcedBreaks := make(map[int]bool)
	for i, w := range words {
		if w.IsSpeakerMarker && i > 0 {
			forcedBreaks[i] = true
		}
	}

	dp := make([]float64, n+1)
	back := make([]int, n+1)
	info := make([]*CaptionSegment, n+1)
	for i := range dp {
		dp[i] = math.Inf(1)
		back[i] = -1
	}
	dp[0] = 0

	for j := 1; j <= n; j++ {
		mustBreakAfter := -1
		for fb := range forcedBreaks {
			if fb < j && fb > mustBreakAfter {
				mustBreakAfter = fb
			}
		}

		minI := j - cfg.MaxLookbackWords
		if minI < 0 {
			minI = 0
		}
		if mustBreakAfter >= 0 && mustBreakAfter > minI {
			minI = mustBreakAfter
		}

		for i := j - 1; i >= minI; i-- {
			crossesBreak := false
			for fb := range forcedBreaks {
				if fb > i && fb < j {
					crossesBreak = true
					break
				}
			}
			if crossesBreak {
				continue
			}

			segWords := words[i:j]
			segText, hasSpeaker, ok := buildSegmentText(segWords)
			if !ok {
				continue
			}

			if visibleLen(segText) > cfg.MaxCueChars+10 {
				break
			}
			if visibleLen(segText) > cfg.MaxCueChars {
				continue
			}

			segStart := segWords[0].Start
			segEnd := segWords[len(segWords)-1].End

			lb := bestLineBreak(segText, segStart, segEnd, cfg)
			if !lb.OK {
				continue
			}

			cost := computeSegmentCost(segText, segStart, segEnd, lb, hasSpeaker, cfg)

			if j < n && words[j].IsSegmentStart {
				cost -= 2.0
			}
			if j < n && !words[j].IsSegmentStart && !endsSentence(segText) && !endsComma(segText) {
				cost += 1.0
			}
			if (segEnd-segStart) < cfg.MinCueDur && j != n {
				cost += 2.0
			}
			if visibleLen(segText) < 35 && j != n {
				cost += 1.5
			}

			total := dp[i] + cost
			if total < dp[j] {
				dp[j] = total
				back[j] = i
				info[j] = &CaptionSegment{
					Text:       segText,
					Start:      segStart,
					End:        segEnd,
					Formatted:  lb.Formatted,
					Lines:      lb.Lines,
					HasSpeaker: hasSpeaker,
				}
			}
		}
	}

	if math.IsInf(dp[n], 1) {
		return nil
	}

	var segments []CaptionSegment
	j := n
	for j > 0 {
		i := back[j]
		if i < 0 || info[j] == nil {
			break
		}
		segments = append(segments, *info[j])
		j = i
	}
	for l, r := 0, len(segments)-1; l < r; l, r = l+1, r-1 {
		segments[l], segments[r] = segments[r], segments[l]
	}
	return segments
}

func computeSegmentCost(text string, start, end float64, lb lineBreak, hasSpeaker bool, cfg Config) float64 {
	w := cfg.Weights
	cost := lb.Score

	charCount := len([]rune(strings.ReplaceAll(text, "\n", "")))
	dur := math.Max(0.001, end-start)

	cost += w.CueLenDeviation * math.Abs(float64(charCount-cfg.TargetCueChars))

	if dur < cfg.MinCueDur {
		cost += w.CueDurBelow * (cfg.MinCueDur - dur)
	}
	if dur > cfg.MaxCueDur {
		cost += w.CueDurAbove * (dur - cfg.MaxCueDur)
	}

	endWord := lastWordClean(text)
	switch {
	case endsSentence(text):
		cost += w.BoundaryPunctBonus
	case endsComma(text):
		cost += w.BoundaryPunctBonus * 0.3
	case weakEndWords[endWord]:
		cost += w.BoundaryWeakEnd
	default:
		cost += w.BoundaryNoPunct
	}

	if hasSpeaker {
		cost += w.SpeakerChangeBonus
	}

	return cost
}

// greedySegment is the fallback used when the DP finds no feasible path:
// for each start position, extend as far as the lookback window and cue
// budget allow, stop at a forced speaker break, and take the longest
// span with a valid line break. Returns nil if some start position has
// no such span.
func greedySegment(words []captionadapter.CaptionWord, cfg Config) []CaptionSegment {
	var segments []CaptionSegment
	i := 0
	n := len(words)

	for i < n {
		bestJ := i + 1
		var bestInfo *CaptionSegment

		limit := i + cfg.MaxLookbackWords
		if limit > n {
			limit = n
		}
		for j := i + 1; j <= limit; j++ {
			if j < n && words[j].IsSpeakerMarker && j > i+1 {
				break
			}

			segWords := words[i:j]
			segText, hasSpeaker, ok := buildSegmentText(segWords)
			if !ok {
				continue
			}
			if visibleLen(segText) > cfg.MaxCueChars {
				break
			}

			lb := bestLineBreak(segText, segWords[0].Start, segWords[len(segWords)-1].End, cfg)
			if lb.OK {
				bestJ = j
				bestInfo = &CaptionSegment{
					Text:       segText,
					Start:      segWords[0].Start,
					End:        segWords[len(segWords)-1].End,
					Formatted:  lb.Formatted,
					Lines:      lb.Lines,
					HasSpeaker: hasSpeaker,
				}
			}
		}

		if bestInfo == nil {
			return nil
		}
		segments = append(segments, *bestInfo)
		i = bestJ
	}

	return segments
}

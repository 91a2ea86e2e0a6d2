package segmenter

import (
	"math"
	"runtime"
	"strings"
	"sync"
)

// parallelScoringThreshold is the two-line candidate count above which
// bestLineBreak fans scoring out across a worker pool instead of
// scoring sequentially. Below it the goroutine overhead isn't worth it.
const parallelScoringThreshold = 24

// lineBreak is the outcome of choosing a layout for one caption's text:
// either a single line, or two lines split at word index BreakAt.
type lineBreak struct {
	OK        bool
	Formatted string
	Lines     []string
	Score     float64
	BreakAt   int // -1 when the layout is a single line
}

// bestLineBreak scores every single-line and (if Config.MaxLines >= 2)
// two-line layout of text and returns the lowest-cost one. Mirrors
// format_captions/core.py's best_line_break.
func bestLineBreak(text string, start, end float64, cfg Config) lineBreak {
	text = normalizeWhitespace(text)
	words := strings.Fields(text)
	if len(words) == 0 {
		return lineBreak{OK: false, Score: math.Inf(1)}
	}

	best := lineBreak{Score: math.Inf(1)}
	found := false

	if visibleLen(text) <= cfg.MaxLineChars {
		score := scoreSingleLine(text, start, end, cfg)
		best = lineBreak{OK: true, Formatted: text, Lines: []string{text}, Score: score, BreakAt: -1}
		found = true
	}

	if cfg.MaxLines >= 2 {
		candidates := scoreTwoLineCandidates(words, text, start, end, cfg)
		for _, c := range candidates {
			if !c.ok {
				continue
			}
			if !found || c.score < best.Score {
				best = lineBreak{
					OK:        true,
					Formatted: c.line1 + "\n" + c.line2,
					Lines:     []string{c.line1, c.line2},
					Score:     c.score,
					BreakAt:   c.breakAt,
				}
				found = true
			}
		}
	}

	if !found {
		return lineBreak{OK: false, Formatted: text, Lines: []string{text}, Score: math.Inf(1)}
	}
	return best
}

type twoLineCandidate struct {
	ok      bool
	line1   string
	line2   string
	score   float64
	breakAt int
}

// scoreTwoLineCandidates scores every split point k in [1, len(words))
// producing at most len(words)-1 candidates. Above
// parallelScoringThreshold it fans the scoring across a
// GOMAXPROCS-sized worker pool; results land in a slice pre-sized and
// indexed by split point, so the returned order — and therefore the
// chosen best score on ties — never depends on goroutine scheduling.
func scoreTwoLineCandidates(words []string, text string, start, end float64, cfg Config) []twoLineCandidate {
	n := len(words) - 1
	candidates := make([]twoLineCandidate, n)

	score := func(k int) twoLineCandidate {
		line1 := strings.Join(words[:k+1], " ")
		line2 := strings.Join(words[k+1:], " ")
		len1, len2 := visibleLen(line1), visibleLen(line2)
		if len1 > cfg.MaxLineChars || len2 > cfg.MaxLineChars {
			return twoLineCandidate{}
		}
		return twoLineCandidate{
			ok:      true,
			line1:   line1,
			line2:   line2,
			score:   scoreTwoLines(line1, line2, text, start, end, cfg),
			breakAt: k + 1,
		}
	}

	if n <= parallelScoringThreshold {
		for k := 0; k < n; k++ {
			candidates[k] = score(k)
		}
		return candidates
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for k := lo; k < hi; k++ {
				candidates[k] = score(k)
			}
		}(lo, hi)
	}
	wg.Wait()
	return candidates
}

func scoreSingleLine(text string, start, end float64, cfg Config) float64 {
	w := cfg.Weights
	length := visibleLen(text)
	score := 0.0

	score += w.LenDeviation * math.Abs(float64(length-cfg.TargetLineChars))

	if length > cfg.PreferSplitOver {
		score += w.SingleLineLong * float64(length-cfg.PreferSplitOver)
	}

	dur := math.Max(0.001, end-start)
	cps := float64(length) / dur
	if cps > cfg.TargetCPS {
		score += w.CPSAboveTarget * (cps - cfg.TargetCPS)
	}
	if cps > cfg.MaxCPS {
		score += w.CPSAboveMax * (cps - cfg.MaxCPS)
	}

	return score
}

func scoreTwoLines(line1, line2, fullText string, start, end float64, cfg Config) float64 {
	w := cfg.Weights
	len1, len2 := visibleLen(line1), visibleLen(line2)
	score := 0.0

	score += w.LenDeviation * (math.Abs(float64(len1-cfg.TargetLineChars)) + math.Abs(float64(len2-cfg.TargetLineChars)))
	score += w.Balance * math.Abs(float64(len1-len2))

	minLen := len1
	if len2 < minLen {
		minLen = len2
	}
	if minLen < cfg.MinLineChars {
		score += w.Orphan * float64(cfg.MinLineChars-minLen)
	}

	endWord := lastWordClean(line1)
	if weakEndWords[endWord] {
		score += w.WeakEnd
	}
	if endWord != "" && len([]rune(endWord)) <= 2 {
		score += w.ShortEnd
	}

	if endsSentence(line1) {
		score += w.PunctBonus
	} else if endsComma(line1) {
		score += w.CommaBonus
	}

	dur := math.Max(0.001, end-start)
	cps := float64(len([]rune(strings.ReplaceAll(fullText, "\n", "")))) / dur
	if cps > cfg.TargetCPS {
		score += w.CPSAboveTarget * (cps - cfg.TargetCPS)
	}
	if cps > cfg.MaxCPS {
		score += w.CPSAboveMax * (cps - cfg.MaxCPS)
	}

	return score
}

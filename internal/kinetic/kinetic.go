// Package kinetic buckets a transcript's words for word-by-word "kinetic
// reveal" captions: punctuation merges onto the preceding word, the
// stream splits into sentences at end-of-sentence markers, and each
// sentence is chunked into buckets of up to MaxBucketSize words that
// appear and disappear together. Grounded on
// soniox_converter/formatters/kinetic_words.py.
package kinetic

import "github.com/brightcue/transcraft/internal/ir"

// Config controls bucket sizing and hold-time behavior. Zero-value
// fields fall back to DefaultConfig's values via Config.orDefaults.
type Config struct {
	MaxBucketSize    int
	MaxHoldS         float64
	FinalHoldS       float64
	MinWordDisplayS  float64
}

// DefaultConfig matches soniox_converter.formatters.kinetic_words's
// KineticWordsFormatter defaults.
var DefaultConfig = Config{
	MaxBucketSize:   3,
	MaxHoldS:        3.0,
	FinalHoldS:      1.5,
	MinWordDisplayS: 0.15,
}

func (c Config) orDefaults() Config {
	if c.MaxBucketSize <= 0 {
		c.MaxBucketSize = DefaultConfig.MaxBucketSize
	}
	if c.MaxHoldS <= 0 {
		c.MaxHoldS = DefaultConfig.MaxHoldS
	}
	if c.FinalHoldS <= 0 {
		c.FinalHoldS = DefaultConfig.FinalHoldS
	}
	if c.MinWordDisplayS <= 0 {
		c.MinWordDisplayS = DefaultConfig.MinWordDisplayS
	}
	return c
}

// mergedWord is a word with any trailing punctuation folded in, ready
// for bucketing.
type mergedWord struct {
	Text       string
	StartS     float64
	DurationS  float64
	Confidence float64
	EOS        bool
}

func (w mergedWord) EndS() float64 { return w.StartS + w.DurationS }

// Bucket is a group of up to Config.MaxBucketSize words that appear and
// disappear together; EndS is shared by every word in the bucket.
type Bucket struct {
	Words []BucketWord
	EndS  float64
}

// BucketWord is one word placed within a bucket, at the row position
// given by its index in Bucket.Words (0 -> row 1, 1 -> row 2, ...).
type BucketWord struct {
	Text       string
	StartS     float64
	DurationS  float64
	Confidence float64
	EOS        bool
}

// EndS is the word's own spoken end time (start + duration), distinct
// from the bucket's shared clear time.
func (w BucketWord) EndS() float64 { return w.StartS + w.DurationS }

// Buckets merges punctuation onto the preceding word, splits the
// resulting stream into sentences at EOS boundaries, chunks each
// sentence into buckets of Config.MaxBucketSize words, and computes each
// bucket's shared end time. Returns nil for an empty word list.
func Buckets(words []ir.AssembledWord, cfg Config) []Bucket {
	cfg = cfg.orDefaults()

	merged := mergePunctuation(words)
	if len(merged) == 0 {
		return nil
	}

	sentences := splitSentences(merged)

	var buckets []Bucket
	for _, sentence := range sentences {
		buckets = append(buckets, makeBuckets(sentence, cfg.MaxBucketSize)...)
	}

	computeBucketEndTimes(buckets, cfg.MaxHoldS, cfg.FinalHoldS, cfg.MinWordDisplayS)

	return buckets
}

func mergePunctuation(words []ir.AssembledWord) []mergedWord {
	var merged []mergedWord
	for _, w := range words {
		if w.IsPunctuation() {
			if len(merged) == 0 {
				continue
			}
			prev := &merged[len(merged)-1]
			prev.Text += w.Text
			newEnd := w.EndS()
			prev.DurationS = newEnd - prev.StartS
			if w.EOS {
				prev.EOS = true
			}
			continue
		}
		merged = append(merged, mergedWord{
			Text:       w.Text,
			StartS:     w.StartS,
			DurationS:  w.DurationS,
			Confidence: w.Confidence,
			EOS:        w.EOS,
		})
	}
	return merged
}

func splitSentences(words []mergedWord) [][]mergedWord {
	var sentences [][]mergedWord
	var current []mergedWord
	for _, w := range words {
		current = append(current, w)
		if w.EOS {
			sentences = append(sentences, current)
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, current)
	}
	return sentences
}

func makeBuckets(sentence []mergedWord, maxBucketSize int) []Bucket {
	var buckets []Bucket
	for i := 0; i < len(sentence); i += maxBucketSize {
		end := i + maxBucketSize
		if end > len(sentence) {
			end = len(sentence)
		}
		chunk := sentence[i:end]
		words := make([]BucketWord, len(chunk))
		for j, w := range chunk {
			words[j] = BucketWord{Text: w.Text, StartS: w.StartS, DurationS: w.DurationS, Confidence: w.Confidence, EOS: w.EOS}
		}
		buckets = append(buckets, Bucket{Words: words})
	}
	return buckets
}

// computeBucketEndTimes fills in each bucket's EndS in place, following
// the three rules from kinetic_words.py's _compute_bucket_end_times:
// clear at the next bucket's first word (capped at MaxHoldS after this
// bucket's last word starts), or for the final bucket, hold FinalHoldS
// past the last word's end (still capped by MaxHoldS); then floor at
// MinWordDisplayS after the last word starts.
func computeBucketEndTimes(buckets []Bucket, maxHoldS, finalHoldS, minWordDisplayS float64) {
	for i := range buckets {
		bucket := &buckets[i]
		lastWord := bucket.Words[len(bucket.Words)-1]

		if i+1 < len(buckets) {
			nextStart := buckets[i+1].Words[0].StartS
			maxEnd := lastWord.StartS + maxHoldS
			if nextStart < maxEnd {
				bucket.EndS = nextStart
			} else {
				bucket.EndS = maxEnd
			}
		} else {
			bucket.EndS = lastWord.EndS() + finalHoldS
			maxEnd := lastWord.StartS + maxHoldS
			if bucket.EndS > maxEnd {
				bucket.EndS = maxEnd
			}
		}

		minEnd := lastWord.StartS + minWordDisplayS
		if bucket.EndS < minEnd {
			bucket.EndS = minEnd
		}
	}
}

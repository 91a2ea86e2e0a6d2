// Package segmenter groups a caption word stream into on-screen cues via
// dynamic programming, and lays each cue out across one or two lines.
// Grounded on format_captions/core.py (segment_words, best_line_break,
// generate_srt) and format_captions/presets.py (the broadcast/social
// weight tables and the Swedish weak-word set).
//
// Every function takes an explicit Config value; nothing is global, so a
// caller can run the broadcast and social presets concurrently without
// interference.
package segmenter

import "fmt"

// Weights controls the DP and line-break scoring heuristics. All fields
// mirror format_captions/presets.py's "weights" dict one for one.
type Weights struct {
	LenDeviation        float64
	Balance             float64
	Orphan              float64
	WeakEnd             float64
	ShortEnd            float64
	PunctBonus          float64
	CommaBonus          float64
	SingleLineLong      float64
	CPSAboveTarget      float64
	CPSAboveMax         float64
	CueLenDeviation     float64
	CueDurBelow         float64
	CueDurAbove         float64
	BoundaryWeakEnd     float64
	BoundaryPunctBonus  float64
	BoundaryNoPunct     float64
	SpeakerChangeBonus  float64
}

// Config is an immutable set of hard limits, soft targets, and scoring
// weights for one caption format. Presets returned by Preset are safe to
// share across goroutines; overrides always produce a new value.
type Config struct {
	MaxLines          int
	MaxLineChars      int
	MaxCueChars       int
	TargetLineChars   int
	PreferSplitOver   int
	MinLineChars      int
	TargetCPS         float64
	MaxCPS            float64
	TargetCueChars    int
	MinCueDur         float64
	MaxCueDur         float64
	MinDisplayDur     float64
	MaxLookbackWords  int
	Weights           Weights
}

var broadcastPreset = Config{
	MaxLines: 2, MaxLineChars: 42, MaxCueChars: 84,
	TargetLineChars: 32, PreferSplitOver: 36, MinLineChars: 12,
	TargetCPS: 13.0, MaxCPS: 17.3, TargetCueChars: 50,
	MinCueDur: 1.5, MaxCueDur: 7.0, MinDisplayDur: 1.2,
	MaxLookbackWords: 18,
	Weights: Weights{
		LenDeviation: 0.20, Balance: 0.12, Orphan: 2.5, WeakEnd: 8.0,
		ShortEnd: 1.5, PunctBonus: -2.5, CommaBonus: -1.2,
		SingleLineLong: 1.2, CPSAboveTarget: 0.8, CPSAboveMax: 3.0,
		CueLenDeviation: 0.08, CueDurBelow: 2.5, CueDurAbove: 0.5,
		BoundaryWeakEnd: 4.0, BoundaryPunctBonus: -3.5,
		BoundaryNoPunct: 2.0, SpeakerChangeBonus: -5.0,
	},
}

var socialPreset = Config{
	MaxLines: 1, MaxLineChars: 25, MaxCueChars: 25,
	TargetLineChars: 18, PreferSplitOver: 18, MinLineChars: 6,
	TargetCPS: 12.0, MaxCPS: 15.0, TargetCueChars: 16,
	MinCueDur: 0.8, MaxCueDur: 3.5, MinDisplayDur: 0.6,
	MaxLookbackWords: 6,
	Weights: Weights{
		LenDeviation: 0.15, Balance: 0.0, Orphan: 2.0, WeakEnd: 5.0,
		ShortEnd: 0.8, PunctBonus: -3.5, CommaBonus: -2.0,
		SingleLineLong: 3.0, CPSAboveTarget: 1.0, CPSAboveMax: 4.0,
		CueLenDeviation: 0.10, CueDurBelow: 1.5, CueDurAbove: 1.0,
		BoundaryWeakEnd: 4.0, BoundaryPunctBonus: -4.0,
		BoundaryNoPunct: 1.5, SpeakerChangeBonus: -4.0,
	},
}

// Preset returns the named preset's config by value. "some" is accepted
// as an alias for "social". Returns an error for any other name.
func Preset(name string) (Config, error) {
	switch name {
	case "broadcast":
		return broadcastPreset, nil
	case "social", "some":
		return socialPreset, nil
	default:
		return Config{}, fmt.Errorf("segmenter: unknown preset %q", name)
	}
}

// WithMaxLookbackWords returns a copy of c with MaxLookbackWords
// overridden. Presets themselves are never mutated.
func (c Config) WithMaxLookbackWords(n int) Config {
	c.MaxLookbackWords = n
	return c
}

// weakEndWords is the Swedish function-word set that should not end a
// caption line, verbatim from format_captions/presets.py.
var weakEndWords = map[string]bool{
	"och": true, "att": true, "som": true, "i": true, "på": true, "av": true,
	"för": true, "med": true, "till": true, "om": true, "när": true, "då": true,
	"så": true, "men": true, "eller": true, "utan": true, "under": true,
	"över": true, "mellan": true, "innan": true, "efter": true, "trots": true,
	"eftersom": true, "medan": true, "från": true, "kring": true, "mot": true,
	"via": true, "det": true, "de": true, "den": true, "detta": true,
	"dessa": true, "man": true, "vi": true, "jag": true, "du": true,
	"han": true, "hon": true, "ni": true, "en": true, "ett": true,
	"där": true, "här": true, "ju": true, "är": true, "var": true,
	"blir": true, "ska": true, "kan": true, "har": true, "hade": true,
	"får": true, "vill": true, "kommer": true, "inte": true,
}

// Package coreerr declares the core's small, fixed error taxonomy (spec.md
// section 7). It has no dependents of its own so both the assembler and
// the segmenter can return these without creating an import cycle with
// the pipeline package that returns them to callers.
package coreerr

import "fmt"

// MalformedToken reports a post-filter token missing timing or carrying
// a negative interval. Fatal to the entire conversion; the caller is
// told the offending token's index.
type MalformedToken struct {
	Index  int
	Reason string
}

func (e *MalformedToken) Error() string {
	return fmt.Sprintf("malformed token at index %d: %s", e.Index, e.Reason)
}

// EmptyTranscript reports that zero tokens remained after filtering.
// Fatal; the caller decides whether to treat it as a user error.
type EmptyTranscript struct{}

func (e *EmptyTranscript) Error() string {
	return "empty transcript after filtering"
}

// SegmentationInfeasible reports that the caption DP exhausted its
// lookback window and the greedy fallback also failed to produce a
// valid segmentation. Fatal for the caption path only; other emitters
// may still proceed.
type SegmentationInfeasible struct {
	Reason string
}

func (e *SegmentationInfeasible) Error() string {
	return fmt.Sprintf("caption segmentation infeasible: %s", e.Reason)
}

// UnknownLanguage reports a language code absent from the ISO 639-1 ->
// BCP-47 table. Non-fatal: the caller mapped it to the "??-??" sentinel
// and continued; surfaced to the caller as a warning, not an error.
type UnknownLanguage struct {
	Code string
}

func (e *UnknownLanguage) Error() string {
	return fmt.Sprintf("unknown language code %q, mapped to sentinel", e.Code)
}

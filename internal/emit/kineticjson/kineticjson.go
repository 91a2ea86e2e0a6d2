// Package kineticjson renders kinetic word-reveal buckets as three
// independent editor-JSON-schema documents, one per row, each segment
// carrying that bucket's single row-word. Grounded on
// soniox_converter/formatters/kinetic_words.py's _build_row_outputs.
package kineticjson

import (
	"github.com/brightcue/transcraft/internal/emit/editorjson"
	"github.com/brightcue/transcraft/internal/kinetic"
	"github.com/brightcue/transcraft/internal/langmap"
)

// Rows produces exactly kinetic.Config.MaxBucketSize documents — three
// under the default config — each an editorjson.Document containing one
// segment per bucket that placed a word in that row. speakerUUID is a
// single synthetic speaker since kinetic captions ignore diarization.
func Rows(buckets []kinetic.Bucket, speakerUUID, primaryLanguage string, maxBucketSize int) []editorjson.Document {
	language := primaryLanguage
	if language == "" {
		language = langmap.UnknownLanguageCode
	} else if mapped, ok := langmap.ToBCP47(primaryLanguage); ok {
		language = mapped
	} else {
		language = langmap.UnknownLanguageCode
	}

	rows := make([][]editorjson.Segment, maxBucketSize)

	for _, bucket := range buckets {
		for rowIdx, w := range bucket.Words {
			duration := bucket.EndS - w.StartS
			if duration < 0 {
				duration = 0
			}
			rows[rowIdx] = append(rows[rowIdx], editorjson.Segment{
				Start:    w.StartS,
				Duration: duration,
				Speaker:  speakerUUID,
				Language: language,
				Words: []editorjson.Word{{
					Text:       w.Text,
					Start:      w.StartS,
					Duration:   duration,
					Confidence: w.Confidence,
					Type:       "word",
					EOS:        w.EOS,
					Tags:       []string{},
				}},
			})
		}
	}

	docs := make([]editorjson.Document, maxBucketSize)
	for i := range docs {
		docs[i] = editorjson.Document{
			Language: language,
			Segments: rows[i],
			Speakers: []editorjson.Speaker{{ID: speakerUUID, Name: "Speaker 1"}},
		}
	}
	return docs
}

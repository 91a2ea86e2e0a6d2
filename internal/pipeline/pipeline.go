// Package pipeline orchestrates the assembler, caption adapter,
// segmenter, kinetic bucketiser, and emitters into one call. It is the
// only package that knows the shape of a complete conversion job; every
// package it imports remains usable standalone.
package pipeline

import (
	"context"
	"errors"

	"github.com/brightcue/transcraft/internal/assembler"
	"github.com/brightcue/transcraft/internal/captionadapter"
	"github.com/brightcue/transcraft/internal/coreerr"
	"github.com/brightcue/transcraft/internal/emit/editorjson"
	"github.com/brightcue/transcraft/internal/emit/kineticjson"
	"github.com/brightcue/transcraft/internal/emit/markdown"
	"github.com/brightcue/transcraft/internal/emit/plaintext"
	"github.com/brightcue/transcraft/internal/emit/srtemit"
	"github.com/brightcue/transcraft/internal/ir"
	"github.com/brightcue/transcraft/internal/kinetic"
	"github.com/brightcue/transcraft/internal/langmap"
	"github.com/brightcue/transcraft/internal/segmenter"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/brightcue/transcraft/internal/pipeline")

// Options configures one conversion call. SourceName is carried through
// to the IR and the Markdown output; it need not be a real
// filesystem path.
type Options struct {
	SourceName    string
	KineticConfig kinetic.Config
}

// SRTArtifacts holds the two caption presets' rendered SRT text.
type SRTArtifacts struct {
	Broadcast string
	Social    string
}

// KineticArtifacts holds the three row-stream editor-JSON documents
// produced by the kinetic bucketiser.
type KineticArtifacts struct {
	Row1, Row2, Row3 editorjson.Document
}

// Result is everything one call to Convert can produce.
type Result struct {
	Transcript ir.Transcript
	EditorJSON editorjson.Document
	SRT        SRTArtifacts
	PlainText  string
	Markdown   string
	Kinetic    KineticArtifacts

	// Warnings holds non-fatal issues surfaced during conversion, such
	// as coreerr.UnknownLanguage. They never prevent Result from being
	// otherwise complete.
	Warnings []error
}

// Convert runs the full token-to-artifacts pipeline. ctx is threaded
// through only so the ambient layer (an OTel span, a daemon's shutdown
// signal) can observe or cancel the call boundary — nothing inside the
// DP or the bucketiser checks ctx mid-loop, since both are CPU-bounded,
// pure, and not meant to be cancelled partway through.
func Convert(ctx context.Context, tokens []assembler.SourceToken, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Convert",
		trace.WithAttributes(
			attribute.String("transcraft.source_name", opts.SourceName),
			attribute.Int("transcraft.token_count", len(tokens)),
		))
	defer span.End()

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "context cancelled before conversion started")
		return Result{}, ctx.Err()
	default:
	}

	filtered := assembler.FilterTranslationTokens(tokens)

	words, err := assembleSpan(ctx, filtered)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assembly failed")
		return Result{}, err
	}

	transcript, err := buildTranscriptSpan(ctx, words, opts.SourceName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcript build failed")
		return Result{}, err
	}
	if err := transcript.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcript validation failed")
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int("transcraft.word_count", len(transcript.Words)),
		attribute.Int("transcraft.speaker_count", len(transcript.Speakers)),
	)

	result := Result{Transcript: transcript}

	if transcript.PrimaryLanguage != "" {
		if _, ok := langmap.ToBCP47(transcript.PrimaryLanguage); !ok {
			result.Warnings = append(result.Warnings, &coreerr.UnknownLanguage{Code: transcript.PrimaryLanguage})
		}
	}

	result.EditorJSON = editorjson.Render(transcript)
	result.PlainText = plaintext.Render(transcript)
	result.Markdown = markdown.Render(transcript)

	captionWords := captionadapter.Transform(transcript)

	broadcastCfg, err := segmenter.Preset("broadcast")
	if err != nil {
		return Result{}, err
	}
	socialCfg, err := segmenter.Preset("social")
	if err != nil {
		return Result{}, err
	}

	if segs, werr := segmentSpan(ctx, "broadcast", captionWords, broadcastCfg); werr != nil {
		var infeasible *coreerr.SegmentationInfeasible
		if !errors.As(werr, &infeasible) {
			span.RecordError(werr)
			span.SetStatus(codes.Error, "broadcast segmentation failed")
			return Result{}, werr
		}
		result.Warnings = append(result.Warnings, werr)
	} else {
		result.SRT.Broadcast = srtemit.Render(segs, broadcastCfg.MinDisplayDur)
	}

	if segs, werr := segmentSpan(ctx, "social", captionWords, socialCfg); werr != nil {
		var infeasible *coreerr.SegmentationInfeasible
		if !errors.As(werr, &infeasible) {
			span.RecordError(werr)
			span.SetStatus(codes.Error, "social segmentation failed")
			return Result{}, werr
		}
		result.Warnings = append(result.Warnings, werr)
	} else {
		result.SRT.Social = srtemit.Render(segs, socialCfg.MinDisplayDur)
	}

	kineticCfg := opts.KineticConfig
	buckets := bucketSpan(ctx, transcript.Words, kineticCfg)
	maxBucketSize := kineticCfg.MaxBucketSize
	if maxBucketSize <= 0 {
		maxBucketSize = kinetic.DefaultConfig.MaxBucketSize
	}
	docs := kineticjson.Rows(buckets, uuid.NewString(), transcript.PrimaryLanguage, maxBucketSize)
	if len(docs) == 3 {
		result.Kinetic = KineticArtifacts{Row1: docs[0], Row2: docs[1], Row3: docs[2]}
	}

	if len(result.Warnings) > 0 {
		span.SetAttributes(attribute.Int("transcraft.warning_count", len(result.Warnings)))
	}

	return result, nil
}

func assembleSpan(ctx context.Context, tokens []assembler.SourceToken) ([]ir.AssembledWord, error) {
	_, span := tracer.Start(ctx, "pipeline.assemble")
	defer span.End()
	words, err := assembler.AssembleTokens(tokens)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return words, err
}

func buildTranscriptSpan(ctx context.Context, words []ir.AssembledWord, sourceName string) (ir.Transcript, error) {
	_, span := tracer.Start(ctx, "pipeline.build_transcript")
	defer span.End()
	transcript, err := assembler.BuildTranscript(words, sourceName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return transcript, err
}

func segmentSpan(ctx context.Context, preset string, words []captionadapter.CaptionWord, cfg segmenter.Config) ([]segmenter.CaptionSegment, error) {
	_, span := tracer.Start(ctx, "pipeline.segment",
		trace.WithAttributes(attribute.String("transcraft.preset", preset)))
	defer span.End()
	segs, err := segmenter.Segment(words, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("transcraft.segment_count", len(segs)))
	return segs, nil
}

func bucketSpan(ctx context.Context, words []ir.AssembledWord, cfg kinetic.Config) []kinetic.Bucket {
	_, span := tracer.Start(ctx, "pipeline.kinetic_buckets")
	defer span.End()
	buckets := kinetic.Buckets(words, cfg)
	span.SetAttributes(attribute.Int("transcraft.bucket_count", len(buckets)))
	return buckets
}

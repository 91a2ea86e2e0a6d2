// Package runtime is transcraftd's daemon lifecycle: it brings up
// telemetry, an HTTP healthz/readyz server, and a NATS subscription on
// the job-submit subject, converting each submitted job through
// internal/pipeline and publishing the result. Adapted from loqa-core's
// runtime, which instead owns an STT/LLM/TTS pipeline wired to audio
// frames; the health/readiness/telemetry scaffolding is unchanged, the
// domain wiring is not.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightcue/transcraft/internal/bus"
	"github.com/brightcue/transcraft/internal/config"
	"github.com/brightcue/transcraft/internal/coreerr"
	"github.com/brightcue/transcraft/internal/emit/editorjson"
	"github.com/brightcue/transcraft/internal/jobstore"
	"github.com/brightcue/transcraft/internal/kinetic"
	"github.com/brightcue/transcraft/internal/natsserver"
	"github.com/brightcue/transcraft/internal/pipeline"
	"github.com/brightcue/transcraft/internal/protocol"
	"github.com/brightcue/transcraft/internal/telemetry"
)

type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	tracerClose telemetry.Shutdown
	embeddedBus *natsserver.EmbeddedServer
	busClient   *bus.Client
	jobStore    *jobstore.Store
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, _, err := telemetry.Setup(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	js, err := jobstore.Open(ctx, r.cfg.JobStore, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	r.jobStore = js

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded bus: %w", err)
	}
	r.embeddedBus = embedded

	client, err := bus.Connect(ctx, r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	r.busClient = client

	sub, err := client.SubscribeJSON(protocol.SubjectJobSubmit,
		func() interface{} { return &protocol.JobSubmit{} },
		func(v interface{}) { r.handleJobSubmit(ctx, v.(*protocol.JobSubmit)) })
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", protocol.SubjectJobSubmit, err)
	}
	defer sub.Unsubscribe()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr), slog.String("subject", protocol.SubjectJobSubmit))

	<-ctx.Done()
	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	r.busClient.Close()
	r.embeddedBus.Shutdown()
	if err := r.jobStore.Close(); err != nil {
		r.logger.Error("job store close error", slog.String("error", err.Error()))
	}

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

// handleJobSubmit runs one submitted job through the pipeline on its
// own goroutine so independent jobs convert concurrently, per the
// pipeline's single-threaded-per-call, no-shared-state contract.
func (r *Runtime) handleJobSubmit(ctx context.Context, submit *protocol.JobSubmit) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		result, err := pipeline.Convert(ctx, submit.Tokens, pipeline.Options{
			SourceName:    submit.SourceName,
			KineticConfig: kinetic.Config(r.cfg.Kinetic),
		})
		elapsed := time.Since(start)

		job := jobstore.Job{
			JobID:      submit.JobID,
			SourceName: submit.SourceName,
			DurationMS: elapsed.Milliseconds(),
		}

		if err != nil {
			job.OK = false
			job.ErrorKind = errorKind(err)
			job.Error = err.Error()
			if storeErr := r.jobStore.Append(ctx, job); storeErr != nil {
				r.logger.Error("failed to record failed job", slog.String("error", storeErr.Error()))
			}
			r.publishFailed(submit.JobID, job.ErrorKind, err.Error())
			return
		}

		job.OK = true
		job.WordCount = len(result.Transcript.Words)
		job.Warnings = warningStrings(result.Warnings)
		if storeErr := r.jobStore.Append(ctx, job); storeErr != nil {
			r.logger.Error("failed to record completed job", slog.String("error", storeErr.Error()))
		}
		r.publishResult(submit.JobID, result)
	}()
}

func (r *Runtime) publishResult(jobID string, result pipeline.Result) {
	editorJSON, err := json.Marshal(result.EditorJSON)
	if err != nil {
		r.logger.Error("failed to marshal editor json", slog.String("job_id", jobID), slog.String("error", err.Error()))
		return
	}

	kineticDocs := [3]editorjson.Document{result.Kinetic.Row1, result.Kinetic.Row2, result.Kinetic.Row3}
	var kineticJSON [3]string
	for i, doc := range kineticDocs {
		data, err := json.Marshal(doc)
		if err != nil {
			r.logger.Error("failed to marshal kinetic row", slog.String("job_id", jobID), slog.Int("row", i), slog.String("error", err.Error()))
			return
		}
		kineticJSON[i] = string(data)
	}

	msg := protocol.JobResult{
		JobID:      jobID,
		OK:         true,
		EditorJSON: string(editorJSON),
		SRT:        protocol.SRTResult{Broadcast: result.SRT.Broadcast, Social: result.SRT.Social},
		Kinetic:    kineticJSON,
		PlainText:  result.PlainText,
		Markdown:   result.Markdown,
		Warnings:   warningStrings(result.Warnings),
	}
	if err := r.busClient.PublishJSON(protocol.SubjectJobResult, msg); err != nil {
		r.logger.Error("failed to publish job result", slog.String("job_id", jobID), slog.String("error", err.Error()))
	}
}

func (r *Runtime) publishFailed(jobID, kind, errMsg string) {
	msg := protocol.JobFailed{JobID: jobID, ErrorKind: kind, Error: errMsg}
	if err := r.busClient.PublishJSON(protocol.SubjectJobFailed, msg); err != nil {
		r.logger.Error("failed to publish job failure", slog.String("job_id", jobID), slog.String("error", err.Error()))
	}
}

func warningStrings(warnings []error) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Error()
	}
	return out
}

func errorKind(err error) string {
	var malformed *coreerr.MalformedToken
	var empty *coreerr.EmptyTranscript
	var infeasible *coreerr.SegmentationInfeasible
	switch {
	case errors.As(err, &malformed):
		return "malformed_token"
	case errors.As(err, &empty):
		return "empty_transcript"
	case errors.As(err, &infeasible):
		return "segmentation_infeasible"
	default:
		return "unknown"
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

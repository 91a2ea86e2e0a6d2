// Package protocol defines the job lifecycle messages transcraftd
// publishes and subscribes on, mirroring loqa-core's Subject* constant
// + JSON struct pattern for its audio/transcript bus messages.
package protocol

import "github.com/brightcue/transcraft/internal/assembler"

// JobSubmit requests a conversion of tokens. Presets carries caption
// preset names ("broadcast", "social"); the daemon does not read it and
// renders both presets for every job.
type JobSubmit struct {
	JobID      string                  `json:"job_id"`
	SourceName string                  `json:"source_name"`
	Tokens     []assembler.SourceToken `json:"tokens"`
	Presets    []string                `json:"presets,omitempty"`
}

// SRTResult carries the rendered SRT text for both caption presets.
type SRTResult struct {
	Broadcast string `json:"broadcast"`
	Social    string `json:"social"`
}

// JobResult is published once a submitted job converts successfully.
// EditorJSON, Kinetic, PlainText, and Markdown carry the rendered
// artifacts as opaque JSON/text the subscriber decodes itself.
type JobResult struct {
	JobID      string    `json:"job_id"`
	OK         bool      `json:"ok"`
	EditorJSON string    `json:"editor_json"`
	SRT        SRTResult `json:"srt"`
	Kinetic    [3]string `json:"kinetic"`
	PlainText  string    `json:"plain_text"`
	Markdown   string    `json:"markdown"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// JobFailed is published when a submitted job could not be converted.
// ErrorKind names the coreerr type (e.g. "malformed_token",
// "empty_transcript", "segmentation_infeasible") so a subscriber can
// branch without parsing Error.
type JobFailed struct {
	JobID     string `json:"job_id"`
	ErrorKind string `json:"error_kind"`
	Error     string `json:"error"`
}

const (
	SubjectJobSubmit = "transcraft.job.submit"
	SubjectJobResult = "transcraft.job.result"
	SubjectJobFailed = "transcraft.job.failed"
)

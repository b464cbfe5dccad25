package media

import "time"

// Outcome is the per-file result of an extraction attempt
type Outcome string

const (
	// OutcomeSucceeded means the transcoder exited with status 0
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed means the transcoder ran and exited non-zero
	OutcomeFailed Outcome = "failed"

	// OutcomeToolMissing means the transcoder could not be started at all
	OutcomeToolMissing Outcome = "tool_missing"
)

// FileResult records what happened to one matched video
type FileResult struct {
	SourcePath string
	OutputPath string
	Outcome    Outcome
	Run        ToolRun
	Err        error
	Elapsed    time.Duration
}

// BatchReport summarises a folder-to-folder extraction
type BatchReport struct {
	InputDir  string
	OutputDir string
	Processed []FileResult
	Skipped   []string
}

// Succeeded returns the number of files extracted successfully
func (r *BatchReport) Succeeded() int {
	return r.count(OutcomeSucceeded)
}

// Failed returns the number of files whose transcoder run exited non-zero
func (r *BatchReport) Failed() int {
	return r.count(OutcomeFailed)
}

// ToolMissing returns the number of files that could not be attempted
func (r *BatchReport) ToolMissing() int {
	return r.count(OutcomeToolMissing)
}

func (r *BatchReport) count(o Outcome) int {
	n := 0
	for _, res := range r.Processed {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

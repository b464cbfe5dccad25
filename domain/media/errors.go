package media

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is returned when the transcoder executable cannot be started
	ErrToolNotFound = errors.New("transcoder not installed or not found in PATH")

	// ErrSourceMissing is returned when a source video does not exist
	ErrSourceMissing = errors.New("source video does not exist")

	// ErrOutputLocked is returned when another extraction is writing to the same folder
	ErrOutputLocked = errors.New("output folder is in use by another extraction")
)

// ToolError reports a transcoder run that exited with a non-zero status
type ToolError struct {
	Run ToolRun
	Err error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Run.Command, e.Run.ExitCode)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

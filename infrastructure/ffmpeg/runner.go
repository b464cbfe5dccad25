package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"letitflow-media/domain/media"
)

// CommandResult holds the captured streams of a finished command
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command, capturing stdout and stderr.
// A non-zero exit is returned as *exec.ExitError with ExitCode populated.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	return result, err
}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// isNotFound reports whether err means the executable could not be started
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

// runTool executes the transcoder and classifies the outcome
func runTool(ctx context.Context, runner CommandRunner, ffmpegPath string, args []string) (media.ToolRun, error) {
	result, err := runner.Run(ctx, ffmpegPath, args...)
	run := media.ToolRun{
		Command:  ffmpegPath,
		Args:     args,
		Stdout:   string(result.Stdout),
		Stderr:   string(result.Stderr),
		ExitCode: result.ExitCode,
	}
	if err == nil {
		return run, nil
	}

	if isNotFound(err) {
		run.ExitCode = -1
		return run, fmt.Errorf("%w: %s: %v", media.ErrToolNotFound, ffmpegPath, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && run.ExitCode == 0 {
		run.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return run, ctxErr
	}
	if run.ExitCode == 0 {
		run.ExitCode = -1
	}
	return run, &media.ToolError{Run: run, Err: err}
}

// verifyInstalled checks that ffmpeg is available
func verifyInstalled(ctx context.Context, runner CommandRunner, ffmpegPath string) error {
	if _, err := runner.Output(ctx, ffmpegPath, "-version"); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", media.ErrToolNotFound, ffmpegPath)
		}
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

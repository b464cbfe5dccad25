package ffmpeg

import (
	"context"
	"strconv"

	"letitflow-media/domain/media"
)

// Extractor implements media.AudioExtractor by invoking the ffmpeg command line
type Extractor struct {
	ffmpegPath string
	runner     CommandRunner
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithExtractorFFmpegPath sets a custom ffmpeg executable path
func WithExtractorFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithExtractorCommandRunner sets a custom command runner (for testing)
func WithExtractorCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// NewExtractor creates a new FFmpeg-based audio extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Args returns the ffmpeg argument list for a request
func (e *Extractor) Args(req *media.ExtractionRequest, outputPath string) []string {
	args := []string{
		"-i", req.SourcePath,
		"-vn",                // No video
		"-acodec", req.Codec, // Uncompressed PCM
	}
	if req.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(req.SampleRate))
	}
	return append(args,
		"-y", // Overwrite output file if it exists
		outputPath,
	)
}

// Extract implements media.AudioExtractor
func (e *Extractor) Extract(ctx context.Context, req *media.ExtractionRequest, outputPath string) (media.ToolRun, error) {
	return runTool(ctx, e.runner, e.ffmpegPath, e.Args(req, outputPath))
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	return verifyInstalled(ctx, e.runner, e.ffmpegPath)
}

// Ensure Extractor implements media.AudioExtractor
var _ media.AudioExtractor = (*Extractor)(nil)

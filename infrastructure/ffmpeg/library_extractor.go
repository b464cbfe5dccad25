package ffmpeg

import (
	"context"

	"letitflow-media/domain/media"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// DefaultLibrarySampleRate matches the audio fps video editing libraries write by default
const DefaultLibrarySampleRate = 44100

// LibraryExtractor implements media.AudioExtractor by describing the job as an
// ffmpeg-go stream graph. The compiled graph runs through the same CommandRunner
// as Extractor, so failures are classified identically.
type LibraryExtractor struct {
	ffmpegPath string
	sampleRate int
	runner     CommandRunner
}

// LibraryExtractorOption is a functional option for configuring LibraryExtractor
type LibraryExtractorOption func(*LibraryExtractor)

// WithLibraryFFmpegPath sets a custom ffmpeg executable path
func WithLibraryFFmpegPath(path string) LibraryExtractorOption {
	return func(e *LibraryExtractor) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithLibrarySampleRate sets the output sample rate (0 keeps the default)
func WithLibrarySampleRate(rate int) LibraryExtractorOption {
	return func(e *LibraryExtractor) {
		if rate > 0 {
			e.sampleRate = rate
		}
	}
}

// WithLibraryCommandRunner sets a custom command runner (for testing)
func WithLibraryCommandRunner(runner CommandRunner) LibraryExtractorOption {
	return func(e *LibraryExtractor) {
		e.runner = runner
	}
}

// NewLibraryExtractor creates an extractor backed by ffmpeg-go
func NewLibraryExtractor(opts ...LibraryExtractorOption) *LibraryExtractor {
	e := &LibraryExtractor{
		ffmpegPath: "ffmpeg",
		sampleRate: DefaultLibrarySampleRate,
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Args compiles the stream graph for a request
func (e *LibraryExtractor) Args(req *media.ExtractionRequest, outputPath string) []string {
	rate := e.sampleRate
	if req.SampleRate > 0 {
		rate = req.SampleRate
	}

	return ffmpeggo.Input(req.SourcePath).
		Output(outputPath, ffmpeggo.KwArgs{
			"vn":     "",
			"acodec": req.Codec,
			"ar":     rate,
		}).
		OverWriteOutput().
		GetArgs()
}

// Extract implements media.AudioExtractor
func (e *LibraryExtractor) Extract(ctx context.Context, req *media.ExtractionRequest, outputPath string) (media.ToolRun, error) {
	return runTool(ctx, e.runner, e.ffmpegPath, e.Args(req, outputPath))
}

// VerifyInstalled checks that the ffmpeg binary used by the library is available
func (e *LibraryExtractor) VerifyInstalled(ctx context.Context) error {
	return verifyInstalled(ctx, e.runner, e.ffmpegPath)
}

// Ensure LibraryExtractor implements media.AudioExtractor
var _ media.AudioExtractor = (*LibraryExtractor)(nil)

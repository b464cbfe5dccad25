package extraction

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"letitflow-media/domain/media"

	"github.com/rs/zerolog"
)

// DefaultSingleOutputDir is where ExtractFile writes when no output path is given
const DefaultSingleOutputDir = "extracted_audio"

// Service coordinates audio extraction from video files
type Service struct {
	extractor   media.AudioExtractor
	lister      media.DirectoryLister
	fileChecker media.FileChecker
	prober      media.VideoProber
	locker      media.DirectoryLocker
	extension   string
	codec       string
	logger      zerolog.Logger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithExtension sets the case-sensitive file name marker selecting videos
func WithExtension(ext string) ServiceOption {
	return func(s *Service) {
		if ext != "" {
			s.extension = ext
		}
	}
}

// WithCodec sets the audio codec passed to the extractor
func WithCodec(codec string) ServiceOption {
	return func(s *Service) {
		if codec != "" {
			s.codec = codec
		}
	}
}

// WithProber enables logging of video metadata before each extraction
func WithProber(prober media.VideoProber) ServiceOption {
	return func(s *Service) {
		s.prober = prober
	}
}

// WithLocker makes ExtractDirectory hold an exclusive lock on the output folder
func WithLocker(locker media.DirectoryLocker) ServiceOption {
	return func(s *Service) {
		s.locker = locker
	}
}

// NewService creates a new extraction Service
func NewService(
	logger zerolog.Logger,
	extractor media.AudioExtractor,
	lister media.DirectoryLister,
	fileChecker media.FileChecker,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		extractor:   extractor,
		lister:      lister,
		fileChecker: fileChecker,
		extension:   media.DefaultExtension,
		codec:       media.DefaultCodec,
		logger:      logger.With().Str("component", "extraction").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractDirectory extracts the audio track of every matching video in inputDir
// into outputDir. Individual failures are recorded in the report and never stop
// the batch; only an unusable directory is returned as an error.
func (s *Service) ExtractDirectory(ctx context.Context, inputDir, outputDir string) (*media.BatchReport, error) {
	report := &media.BatchReport{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}

	if err := s.lister.EnsureDir(outputDir); err != nil {
		return report, err
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(outputDir)
		if err != nil {
			return report, err
		}
		defer func() {
			if err := unlock(); err != nil {
				s.logger.Warn().Err(err).Str("output", outputDir).Msg("failed to release output lock")
			}
		}()
	}

	entries, err := s.lister.List(inputDir)
	if err != nil {
		return report, err
	}

	s.logger.Info().
		Str("input", inputDir).
		Str("output", outputDir).
		Str("extension", s.extension).
		Int("entries", len(entries)).
		Msg("starting batch extraction")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if entry.IsDir || !media.MatchesExtension(entry.Name, s.extension) {
			report.Skipped = append(report.Skipped, entry.Name)
			continue
		}

		sourcePath := filepath.Join(inputDir, entry.Name)
		req, err := media.NewExtractionRequest(sourcePath, s.codec)
		if err != nil {
			return report, err
		}

		report.Processed = append(report.Processed, s.run(ctx, req, req.OutputPath(outputDir)))
	}

	s.logger.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("tool_missing", report.ToolMissing()).
		Int("skipped", len(report.Skipped)).
		Msg("batch extraction finished")

	return report, nil
}

// ExtractFile extracts the audio track of a single video.
// An empty outputPath writes to DefaultSingleOutputDir.
func (s *Service) ExtractFile(ctx context.Context, sourcePath, outputPath string) (*media.FileResult, error) {
	req, err := media.NewExtractionRequest(sourcePath, s.codec)
	if err != nil {
		return nil, err
	}

	if !s.fileChecker.Exists(sourcePath) {
		return nil, fmt.Errorf("%w: %s", media.ErrSourceMissing, sourcePath)
	}

	if outputPath == "" {
		outputPath = req.OutputPath(DefaultSingleOutputDir)
	}
	if err := s.lister.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return nil, err
	}

	result := s.run(ctx, req, outputPath)
	return &result, result.Err
}

func (s *Service) run(ctx context.Context, req *media.ExtractionRequest, outputPath string) media.FileResult {
	logger := s.logger.With().Str("source", req.SourcePath).Str("output", outputPath).Logger()

	if s.prober != nil {
		info, err := s.prober.Probe(req.SourcePath)
		switch {
		case err == nil:
			logger.Info().
				Int("frames", info.Frames).
				Float64("fps", info.FPS).
				Dur("duration", info.Duration).
				Msg("probed video")
		case !errors.Is(err, media.ErrProbeUnavailable):
			logger.Warn().Err(err).Msg("failed to probe video")
		}
	}

	start := time.Now()
	run, err := s.extractor.Extract(ctx, req, outputPath)
	result := media.FileResult{
		SourcePath: req.SourcePath,
		OutputPath: outputPath,
		Run:        run,
		Err:        err,
		Elapsed:    time.Since(start),
	}

	switch {
	case err == nil:
		result.Outcome = media.OutcomeSucceeded
		logger.Info().Dur("elapsed", result.Elapsed).Msg("extracted audio")
		logger.Debug().Str("stdout", run.Stdout).Str("stderr", run.Stderr).Msg("transcoder output")
	case errors.Is(err, media.ErrToolNotFound):
		result.Outcome = media.OutcomeToolMissing
		logger.Error().Err(err).Msg("transcoder not available")
	default:
		result.Outcome = media.OutcomeFailed
		logger.Error().
			Err(err).
			Int("exit_code", run.ExitCode).
			Str("stdout", run.Stdout).
			Str("stderr", run.Stderr).
			Msg("audio extraction failed")
	}

	return result
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appextraction "letitflow-media/application/extraction"
	"letitflow-media/domain/media"
	"letitflow-media/infrastructure/config"
	"letitflow-media/infrastructure/ffmpeg"
	"letitflow-media/infrastructure/filesystem"
	"letitflow-media/infrastructure/probe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	extractInputDir  string
	extractOutputDir string
	extractEngine    string
	extractExtension string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio from every video in a folder",
	Long: `Extract the audio track of every video in the input folder to 16-bit PCM WAV.

Only files ending in the configured extension are processed (case-sensitive,
".MOV" by default). Each output keeps the video's base name with a .wav
extension and existing outputs are overwritten. A failing file is reported
and the batch continues.

Examples:
  letitflow extract-audio
  letitflow extract-audio --input LetItFlow-RAW-Martina --output Martina
  letitflow extract-audio --engine library --ext .mov`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractInputDir, "input", "", "Folder containing the videos (default from config: mov)")
	extractAudioCmd.Flags().StringVar(&extractOutputDir, "output", "", "Folder for the WAV files (default from config: wav)")
	extractAudioCmd.Flags().StringVar(&extractEngine, "engine", "", "Extraction engine: ffmpeg or library (default from config)")
	extractAudioCmd.Flags().StringVar(&extractExtension, "ext", "", "Case-sensitive file name ending to select (default from config: .MOV)")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	inputDir := firstNonEmpty(extractInputDir, cfg.Paths.InputDirectory)
	outputDir := firstNonEmpty(extractOutputDir, cfg.Paths.OutputDirectory)
	extension := firstNonEmpty(extractExtension, cfg.Extraction.Extension)

	extractor, err := newExtractor(cfg.Extraction, firstNonEmpty(extractEngine, cfg.Extraction.Engine))
	if err != nil {
		return err
	}

	svc := newExtractionService(cfg, extractor, extension)

	_, err = RunExtractAudioWithDependencies(cmd.Context(), svc, extractor, inputDir, outputDir, os.Stdout)
	return err
}

// newExtractor builds the extraction engine named by engine
func newExtractor(cfg config.ExtractionConfig, engine string) (media.AudioExtractor, error) {
	switch config.NormalizeEngine(engine) {
	case "", config.EngineFFmpeg:
		return ffmpeg.NewExtractor(ffmpeg.WithExtractorFFmpegPath(cfg.FFmpegPath)), nil
	case config.EngineLibrary:
		return ffmpeg.NewLibraryExtractor(
			ffmpeg.WithLibraryFFmpegPath(cfg.FFmpegPath),
			ffmpeg.WithLibrarySampleRate(cfg.LibrarySampleRate),
		), nil
	default:
		return nil, fmt.Errorf("unknown extraction engine %q (use %s or %s)", engine, config.EngineFFmpeg, config.EngineLibrary)
	}
}

// newExtractionService wires the production filesystem and optional video prober
func newExtractionService(cfg *config.Config, extractor media.AudioExtractor, extension string) *appextraction.Service {
	opts := []appextraction.ServiceOption{
		appextraction.WithExtension(extension),
		appextraction.WithCodec(cfg.Extraction.Codec),
		appextraction.WithLocker(filesystem.NewLocker()),
	}
	if probe.Available() {
		opts = append(opts, appextraction.WithProber(probe.NewVideoProber()))
	}
	return appextraction.NewService(
		log.Logger,
		extractor,
		filesystem.NewLister(),
		filesystem.NewChecker(),
		opts...,
	)
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	svc *appextraction.Service,
	extractor media.AudioExtractor,
	inputDir string,
	outputDir string,
	output OutputWriter,
) (*media.BatchReport, error) {
	warnIfNotInstalled(ctx, extractor, output)

	fmt.Fprintf(output, "Extracting audio from %s into %s...\n", inputDir, outputDir)

	report, err := svc.ExtractDirectory(ctx, inputDir, outputDir)
	if err != nil {
		return report, err
	}

	if len(report.Processed) > 0 {
		rows := make([][]string, 0, len(report.Processed))
		for _, res := range report.Processed {
			rows = append(rows, resultRow(res))
		}
		fmt.Fprintln(output, renderTable([]string{"VIDEO", "RESULT", "DETAIL", "TIME"}, rows))
	}

	fmt.Fprintf(output, "Done: %d extracted, %d failed, %d skipped (transcoder missing), %d ignored\n",
		report.Succeeded(), report.Failed(), report.ToolMissing(), len(report.Skipped))
	return report, nil
}

// warnIfNotInstalled reports a missing transcoder without aborting
func warnIfNotInstalled(ctx context.Context, extractor media.AudioExtractor, output OutputWriter) {
	verifiable, ok := extractor.(interface{ VerifyInstalled(context.Context) error })
	if !ok {
		return
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
		fmt.Fprintf(output, "Warning: %v\n", err)
	}
}

// resultRow formats one extraction for the summary table
func resultRow(res media.FileResult) []string {
	name := filepath.Base(res.SourcePath)
	elapsed := res.Elapsed.Round(time.Millisecond).String()

	switch res.Outcome {
	case media.OutcomeSucceeded:
		return []string{name, "ok", res.OutputPath, elapsed}
	case media.OutcomeToolMissing:
		return []string{name, "missing", "transcoder not found", ""}
	default:
		var toolErr *media.ToolError
		if errors.As(res.Err, &toolErr) {
			return []string{name, "failed", fmt.Sprintf("exit status %d", toolErr.Run.ExitCode), elapsed}
		}
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		return []string{name, "failed", detail, elapsed}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

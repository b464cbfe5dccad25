package cmd

import (
	"context"
	"fmt"
	"os"

	appextraction "letitflow-media/application/extraction"
	"letitflow-media/domain/media"

	"github.com/spf13/cobra"
)

var (
	extractFileSource string
	extractFileOutput string
	extractFileEngine string
)

var extractFileCmd = &cobra.Command{
	Use:   "extract-file",
	Short: "Extract audio from a single video file",
	Long: `Extract the audio track of one video to 16-bit PCM WAV.

Without --output the file is written to extracted_audio/<name>.wav.

Examples:
  letitflow extract-file --source LetItFlow-RAW-Lina/IMG_6287.mov
  letitflow extract-file --source clip.MOV --output extracted_audio/your_audio.wav`,
	RunE: runExtractFile,
}

func init() {
	rootCmd.AddCommand(extractFileCmd)
	extractFileCmd.Flags().StringVar(&extractFileSource, "source", "", "Path to source video file (required)")
	extractFileCmd.Flags().StringVar(&extractFileOutput, "output", "", "Path of the WAV file to write")
	extractFileCmd.Flags().StringVar(&extractFileEngine, "engine", "", "Extraction engine: ffmpeg or library (default from config)")
	extractFileCmd.MarkFlagRequired("source")
}

func runExtractFile(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	extractor, err := newExtractor(cfg.Extraction, firstNonEmpty(extractFileEngine, cfg.Extraction.Engine))
	if err != nil {
		return err
	}
	svc := newExtractionService(cfg, extractor, cfg.Extraction.Extension)

	_, err = RunExtractFileWithDependencies(cmd.Context(), svc, extractor, extractFileSource, extractFileOutput, os.Stdout)
	return err
}

// RunExtractFileWithDependencies runs the extract-file command with injected dependencies (for testing)
func RunExtractFileWithDependencies(
	ctx context.Context,
	svc *appextraction.Service,
	extractor media.AudioExtractor,
	sourcePath string,
	outputPath string,
	output OutputWriter,
) (*media.FileResult, error) {
	warnIfNotInstalled(ctx, extractor, output)

	fmt.Fprintf(output, "Extracting audio from %s...\n", sourcePath)

	result, err := svc.ExtractFile(ctx, sourcePath, outputPath)
	if err != nil {
		if result != nil && result.Run.Stderr != "" {
			fmt.Fprintln(output, result.Run.Stderr)
		}
		return result, err
	}

	fmt.Fprintf(output, "Successfully created: %s\n", result.OutputPath)
	return result, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"letitflow-media/domain/classification"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var classifyFile string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single audio clip",
	Long: `Run the classifier used by the HTTP endpoint on one local file and print its label.

Example:
  letitflow classify --file uploads/recording.wav`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "Path to the audio clip (required)")
	classifyCmd.MarkFlagRequired("file")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	recognizer, err := BuildRecognizer(cfg, log.Logger)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	return RunClassifyWithDependencies(cmd.Context(), recognizer, classifyFile, os.Stdout)
}

// RunClassifyWithDependencies runs the classify command with injected dependencies (for testing)
func RunClassifyWithDependencies(ctx context.Context, recognizer classification.Recognizer, path string, output OutputWriter) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}

	pred, err := recognizer.Classify(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(output, pred.Label)
	return nil
}

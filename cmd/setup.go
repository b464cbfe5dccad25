package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"letitflow-media/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the extraction folders, the
transcoder, the classification server and the model weights file. Every
value not asked for keeps its default.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to letitflow setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	// Paths section
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	// Extraction section
	if err := promptExtraction(prompter, cfg); err != nil {
		return err
	}

	// Server section
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

// promptRequired asks for a value that may not be left empty
func promptRequired(prompter Prompter, message, defaultValue, name string) (string, error) {
	value, err := prompter.Input(message, defaultValue)
	if err != nil {
		return "", fmt.Errorf("prompt cancelled")
	}
	if value == "" {
		value = defaultValue
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	input, err := promptRequired(prompter, "Which folder holds the recorded videos?", cfg.Paths.InputDirectory, "input directory")
	if err != nil {
		return err
	}
	cfg.Paths.InputDirectory = input

	output, err := promptRequired(prompter, "Where should extracted WAV files go?", cfg.Paths.OutputDirectory, "output directory")
	if err != nil {
		return err
	}
	cfg.Paths.OutputDirectory = output

	uploads, err := promptRequired(prompter, "Where should uploaded clips be stored?", cfg.Paths.UploadDirectory, "upload directory")
	if err != nil {
		return err
	}
	cfg.Paths.UploadDirectory = uploads

	return nil
}

func promptExtraction(prompter Prompter, cfg *config.Config) error {
	engine, err := promptRequired(prompter, "Extraction engine (ffmpeg or library)?", cfg.Extraction.Engine, "engine")
	if err != nil {
		return err
	}
	engine = config.NormalizeEngine(engine)
	if engine != config.EngineFFmpeg && engine != config.EngineLibrary {
		return fmt.Errorf("unknown extraction engine %q", engine)
	}
	cfg.Extraction.Engine = engine

	ffmpegPath, err := promptRequired(prompter, "Path to the ffmpeg executable?", cfg.Extraction.FFmpegPath, "ffmpeg path")
	if err != nil {
		return err
	}
	cfg.Extraction.FFmpegPath = ffmpegPath

	ext, err := promptRequired(prompter, "File ending of videos to extract (case-sensitive)?", cfg.Extraction.Extension, "extension")
	if err != nil {
		return err
	}
	cfg.Extraction.Extension = ext

	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	address, err := promptRequired(prompter, "Address for the classification server?", cfg.Server.Address, "server address")
	if err != nil {
		return err
	}
	cfg.Server.Address = address

	cors, err := prompter.Confirm("Allow browser requests from any origin (CORS)?", cfg.Server.CORS)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Server.CORS = cors

	weights, err := promptRequired(prompter, "Path to the model weights (.safetensors)?", cfg.Model.WeightsFile, "weights file")
	if err != nil {
		return err
	}
	cfg.Model.WeightsFile = weights

	return nil
}

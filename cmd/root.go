package cmd

import (
	"fmt"
	"os"

	"letitflow-media/infrastructure/config"
	"letitflow-media/infrastructure/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgFound bool
	cfgErr   error
)

var rootCmd = &cobra.Command{
	Use:   "letitflow",
	Short: "Extract audio from LetItFlow recordings and classify clip length",
	Long: `letitflow covers the two halves of the LetItFlow media workflow:

  - Extract the audio track of recorded videos as 16-bit PCM WAV files
  - Serve a small HTTP endpoint that classifies an uploaded clip as
    SHORT, MEDIUM or LONG with a pre-trained LSTM

Example:
  letitflow extract-audio --input LetItFlow-RAW-Martina --output Martina
  letitflow serve --address 0.0.0.0:5000`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	dotEnvErr := config.LoadDotEnv(".env")

	// A missing file falls back to defaults; an unreadable or invalid one is
	// reported by commands that need configuration.
	cfg, cfgFound, cfgErr = config.LoadOrDefault(cfgFile)
	var overridden []string
	if cfgErr == nil {
		overridden, cfgErr = config.ApplyEnv(cfg, os.LookupEnv)
	}

	level, format := "info", "console"
	if cfg != nil {
		level, format = cfg.Logging.Level, cfg.Logging.Format
	}
	if logLevel != "" {
		level = logLevel
	}
	if err := logging.Init(level, format, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logging.Init("info", format, os.Stderr)
	}

	if dotEnvErr != nil {
		log.Warn().Err(dotEnvErr).Msg("ignoring .env file")
	}
	if cfgErr == nil && !cfgFound {
		log.Debug().Str("path", cfgFile).Msg("config file not found, using defaults")
	}
	if len(overridden) > 0 {
		log.Debug().Strs("keys", overridden).Msg("config overridden from environment")
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or the reason it is unavailable
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; run 'letitflow setup' first")
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the configuration file
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Features   FeaturesConfig   `yaml:"features"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig contains the directories used by extraction and the web endpoint
type PathsConfig struct {
	InputDirectory  string `yaml:"input_directory"`
	OutputDirectory string `yaml:"output_directory"`
	UploadDirectory string `yaml:"upload_directory"`
}

// ExtractionConfig contains audio extraction settings
type ExtractionConfig struct {
	Engine            string `yaml:"engine"`
	Extension         string `yaml:"extension"`
	Codec             string `yaml:"codec"`
	FFmpegPath        string `yaml:"ffmpeg_path"`
	LibrarySampleRate int    `yaml:"library_sample_rate"`
}

// ServerConfig contains settings for the classification endpoint
type ServerConfig struct {
	Address     string `yaml:"address"`
	Debug       bool   `yaml:"debug"`
	CORS        bool   `yaml:"cors"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// ModelConfig declares the classifier shape the weights file must match
type ModelConfig struct {
	WeightsFile string   `yaml:"weights_file"`
	InputSize   int      `yaml:"input_size"`
	HiddenSize  int      `yaml:"hidden_size"`
	NumLayers   int      `yaml:"num_layers"`
	Labels      []string `yaml:"labels"`
}

// FeaturesConfig contains MFCC extraction parameters
type FeaturesConfig struct {
	SampleRate int `yaml:"sample_rate"`
	NMFCC      int `yaml:"n_mfcc"`
	NFFT       int `yaml:"n_fft"`
	HopLength  int `yaml:"hop_length"`
	NMels      int `yaml:"n_mels"`
	Frames     int `yaml:"frames"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

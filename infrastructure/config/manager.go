package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and updates individual config entries by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Entry is a single key/value pair
type Entry struct {
	Key   string
	Value string
}

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(p func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

func intField(p func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			*p(c) = n
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			*p(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"paths.input_directory":          stringField(func(c *Config) *string { return &c.Paths.InputDirectory }),
	"paths.output_directory":         stringField(func(c *Config) *string { return &c.Paths.OutputDirectory }),
	"paths.upload_directory":         stringField(func(c *Config) *string { return &c.Paths.UploadDirectory }),
	"extraction.engine":              stringField(func(c *Config) *string { return &c.Extraction.Engine }),
	"extraction.extension":           stringField(func(c *Config) *string { return &c.Extraction.Extension }),
	"extraction.codec":               stringField(func(c *Config) *string { return &c.Extraction.Codec }),
	"extraction.ffmpeg_path":         stringField(func(c *Config) *string { return &c.Extraction.FFmpegPath }),
	"extraction.library_sample_rate": intField(func(c *Config) *int { return &c.Extraction.LibrarySampleRate }),
	"server.address":                 stringField(func(c *Config) *string { return &c.Server.Address }),
	"server.debug":                   boolField(func(c *Config) *bool { return &c.Server.Debug }),
	"server.cors":                    boolField(func(c *Config) *bool { return &c.Server.CORS }),
	"server.max_upload_mb": {
		get: func(c *Config) string { return strconv.FormatInt(c.Server.MaxUploadMB, 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			c.Server.MaxUploadMB = n
			return nil
		},
	},
	"model.weights_file": stringField(func(c *Config) *string { return &c.Model.WeightsFile }),
	"model.input_size":   intField(func(c *Config) *int { return &c.Model.InputSize }),
	"model.hidden_size":  intField(func(c *Config) *int { return &c.Model.HiddenSize }),
	"model.num_layers":   intField(func(c *Config) *int { return &c.Model.NumLayers }),
	"model.labels": {
		get: func(c *Config) string { return strings.Join(c.Model.Labels, ",") },
		set: func(c *Config, v string) error {
			var labels []string
			for _, l := range strings.Split(v, ",") {
				if l = strings.TrimSpace(l); l != "" {
					labels = append(labels, l)
				}
			}
			c.Model.Labels = labels
			return nil
		},
	},
	"features.sample_rate": intField(func(c *Config) *int { return &c.Features.SampleRate }),
	"features.n_mfcc":      intField(func(c *Config) *int { return &c.Features.NMFCC }),
	"features.n_fft":       intField(func(c *Config) *int { return &c.Features.NFFT }),
	"features.hop_length":  intField(func(c *Config) *int { return &c.Features.HopLength }),
	"features.n_mels":      intField(func(c *Config) *int { return &c.Features.NMels }),
	"features.frames":      intField(func(c *Config) *int { return &c.Features.Frames }),
	"logging.level":        stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":       stringField(func(c *Config) *string { return &c.Logging.Format }),
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lookupField(key string) (string, field, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return key, field{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return key, f, nil
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	_, f, err := lookupField(key)
	if err != nil {
		return "", err
	}
	return f.get(m.config), nil
}

// List returns all entries sorted by key
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	result := make([]Entry, 0, len(keys))
	for _, k := range keys {
		result = append(result, Entry{Key: k, Value: fields[k].get(m.config)})
	}
	return result
}

// Set updates key, validates the whole config and saves it.
// On failure the in-memory config is left unchanged.
func (m *ConfigManager) Set(key, value string) error {
	_, f, err := lookupField(key)
	if err != nil {
		return err
	}

	candidate := cloneConfig(m.config)
	if err := f.set(candidate, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	*m.config = *candidate
	return Save(m.config, m.configPath)
}

func cloneConfig(cfg *Config) *Config {
	c := *cfg
	c.Model.Labels = append([]string(nil), cfg.Model.Labels...)
	return &c
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the values that would otherwise fail deep inside a command
func (c *Config) Validate() error {
	var errs []error

	switch NormalizeEngine(c.Extraction.Engine) {
	case EngineFFmpeg, EngineLibrary:
	default:
		errs = append(errs, fmt.Errorf("extraction.engine must be %q or %q, got %q", EngineFFmpeg, EngineLibrary, c.Extraction.Engine))
	}
	if c.Extraction.Extension == "" {
		errs = append(errs, errors.New("extraction.extension is required"))
	}
	if c.Extraction.LibrarySampleRate < 0 {
		errs = append(errs, errors.New("extraction.library_sample_rate must not be negative"))
	}

	if c.Server.MaxUploadMB <= 0 || c.Server.MaxUploadMB > MaxUploadMBLimit {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be between 1 and %d, got %d", MaxUploadMBLimit, c.Server.MaxUploadMB))
	}

	if c.Model.InputSize <= 0 || c.Model.HiddenSize <= 0 || c.Model.NumLayers <= 0 {
		errs = append(errs, errors.New("model.input_size, model.hidden_size and model.num_layers must be positive"))
	}
	if len(c.Model.Labels) == 0 {
		errs = append(errs, errors.New("model.labels must list at least one label"))
	}

	f := c.Features
	if f.SampleRate <= 0 || f.NFFT <= 0 || f.HopLength <= 0 || f.NMels <= 0 || f.NMFCC <= 0 {
		errs = append(errs, errors.New("features.sample_rate, n_fft, hop_length, n_mels and n_mfcc must be positive"))
	}
	if f.NMFCC > f.NMels {
		errs = append(errs, fmt.Errorf("features.n_mfcc (%d) cannot exceed features.n_mels (%d)", f.NMFCC, f.NMels))
	}
	if f.Frames < 0 {
		errs = append(errs, errors.New("features.frames must not be negative"))
	}
	if f.NMFCC != c.Model.InputSize {
		errs = append(errs, fmt.Errorf("features.n_mfcc (%d) must equal model.input_size (%d)", f.NMFCC, c.Model.InputSize))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

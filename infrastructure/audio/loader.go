package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	"letitflow-media/domain/classification"

	"github.com/rs/zerolog"
)

// Normalizer converts any audio file into a mono PCM WAV at a given rate
type Normalizer interface {
	Normalize(ctx context.Context, src, dst string, sampleRate int) error
}

// Loader reads uploaded audio as mono samples at a fixed sample rate
type Loader struct {
	sampleRate int
	normalizer Normalizer
	logger     zerolog.Logger
}

// NewLoader creates a Loader. normalizer may be nil, in which case only WAV input is accepted.
func NewLoader(logger zerolog.Logger, sampleRate int, normalizer Normalizer) *Loader {
	return &Loader{
		sampleRate: sampleRate,
		normalizer: normalizer,
		logger:     logger.With().Str("component", "audio").Logger(),
	}
}

// SampleRate returns the rate every loaded clip is delivered at
func (l *Loader) SampleRate() int {
	return l.sampleRate
}

// Load decodes path into mono samples at the loader's sample rate
func (l *Loader) Load(ctx context.Context, path string) ([]float64, error) {
	clip, decodeErr := DecodeWAV(path)
	if decodeErr == nil && clip.SampleRate == l.sampleRate {
		return checkEmpty(clip.Samples)
	}

	if l.normalizer != nil {
		samples, err := l.loadNormalized(ctx, path)
		if err == nil {
			return checkEmpty(samples)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode audio: %w", errors.Join(decodeErr, err))
		}
		l.logger.Warn().Err(err).Str("path", path).Msg("ffmpeg normalization failed, resampling in process")
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", decodeErr)
	}

	l.logger.Debug().
		Int("from", clip.SampleRate).
		Int("to", l.sampleRate).
		Msg("resampling audio")
	return checkEmpty(Resample(clip.Samples, clip.SampleRate, l.sampleRate))
}

func (l *Loader) loadNormalized(ctx context.Context, path string) ([]float64, error) {
	tmp, err := os.CreateTemp("", "letitflow-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := l.normalizer.Normalize(ctx, path, tmpPath, l.sampleRate); err != nil {
		return nil, err
	}

	clip, err := DecodeWAV(tmpPath)
	if err != nil {
		return nil, err
	}
	return Resample(clip.Samples, clip.SampleRate, l.sampleRate), nil
}

func checkEmpty(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, classification.ErrEmptyAudio
	}
	return samples, nil
}

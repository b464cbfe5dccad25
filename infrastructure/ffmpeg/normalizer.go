package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
)

// Normalizer converts arbitrary audio into mono PCM wave files
type Normalizer struct {
	ffmpegPath string
	runner     CommandRunner
}

// NormalizerOption is a functional option for configuring Normalizer
type NormalizerOption func(*Normalizer)

// WithNormalizerFFmpegPath sets a custom ffmpeg executable path
func WithNormalizerFFmpegPath(path string) NormalizerOption {
	return func(n *Normalizer) {
		if path != "" {
			n.ffmpegPath = path
		}
	}
}

// WithNormalizerCommandRunner sets a custom command runner (for testing)
func WithNormalizerCommandRunner(runner CommandRunner) NormalizerOption {
	return func(n *Normalizer) {
		n.runner = runner
	}
}

// NewNormalizer creates a new ffmpeg-backed normalizer
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize writes src as a mono 16-bit wave file at sampleRate to dst
func (n *Normalizer) Normalize(ctx context.Context, src, dst string, sampleRate int) error {
	args := []string{
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-acodec", "pcm_s16le",
		"-y",
		dst,
	}
	if _, err := runTool(ctx, n.runner, n.ffmpegPath, args); err != nil {
		return fmt.Errorf("ffmpeg audio normalization failed: %w", err)
	}
	return nil
}

package classification

import (
	"context"
	"fmt"
	"io"
	"time"

	"letitflow-media/domain/classification"

	"github.com/rs/zerolog"
)

// Service implements classification.Recognizer by running a feature
// extractor and a classifier back to back
type Service struct {
	extractor  classification.FeatureExtractor
	classifier classification.Classifier
	labels     classification.LabelMap
	frames     int
	logger     zerolog.Logger
}

// NewService creates a recognizer. frames > 0 pads or truncates every
// feature sequence to that many time steps before inference.
func NewService(
	logger zerolog.Logger,
	extractor classification.FeatureExtractor,
	classifier classification.Classifier,
	labels classification.LabelMap,
	frames int,
) *Service {
	if len(labels) == 0 {
		labels = classification.DefaultLabelMap
	}
	return &Service{
		extractor:  extractor,
		classifier: classifier,
		labels:     labels,
		frames:     frames,
		logger:     logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify extracts features from the clip at audioPath and returns its label
func (s *Service) Classify(ctx context.Context, audioPath string) (classification.Prediction, error) {
	start := time.Now()

	seq, err := s.extractor.Extract(ctx, audioPath)
	if err != nil {
		return classification.Prediction{}, fmt.Errorf("feature extraction failed: %w", err)
	}
	natural := seq.Frames()
	seq = seq.Fit(s.frames)

	scores, err := s.classifier.Predict(seq)
	if err != nil {
		return classification.Prediction{}, fmt.Errorf("inference failed: %w", err)
	}

	idx := classification.ArgMax(scores)
	label, err := s.labels.Lookup(idx)
	if err != nil {
		return classification.Prediction{}, err
	}

	s.logger.Info().
		Str("path", audioPath).
		Int("frames", natural).
		Int("model_frames", seq.Frames()).
		Str("label", string(label)).
		Dur("elapsed", time.Since(start)).
		Msg("classified clip")

	return classification.Prediction{
		Label:  label,
		Index:  idx,
		Scores: scores,
		Frames: natural,
	}, nil
}

// Close releases the classifier if it holds resources
func (s *Service) Close() error {
	if c, ok := s.classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Ensure Service implements classification.Recognizer
var _ classification.Recognizer = (*Service)(nil)

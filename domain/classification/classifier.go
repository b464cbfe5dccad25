package classification

import (
	"context"
	"errors"
)

var (
	// ErrNoAudio is returned when a request carries no audio upload
	ErrNoAudio = errors.New("no audio file provided")

	// ErrEmptyAudio is returned when a decoded clip has no samples
	ErrEmptyAudio = errors.New("audio clip contains no samples")
)

// FeatureExtractor turns an audio file into a feature sequence
type FeatureExtractor interface {
	Extract(ctx context.Context, audioPath string) (FeatureSequence, error)
}

// Classifier scores a feature sequence, returning one logit per class
type Classifier interface {
	Predict(seq FeatureSequence) ([]float64, error)
}

// Recognizer pairs a feature extractor with a classifier behind one capability
type Recognizer interface {
	// Classify returns the label of the clip at audioPath
	Classify(ctx context.Context, audioPath string) (Prediction, error)

	// Close releases anything loaded at start-up
	Close() error
}

// Prediction is the outcome of classifying one clip
type Prediction struct {
	Label  Label
	Index  int
	Scores []float64
	Frames int
}

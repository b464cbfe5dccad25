package classification

import (
	"context"
	"errors"
	"testing"

	"letitflow-media/domain/classification"

	"github.com/rs/zerolog"
)

// mockExtractor implements classification.FeatureExtractor for testing
type mockExtractor struct {
	seq classification.FeatureSequence
	err error
}

func (m *mockExtractor) Extract(ctx context.Context, audioPath string) (classification.FeatureSequence, error) {
	return m.seq, m.err
}

// mockClassifier implements classification.Classifier for testing
type mockClassifier struct {
	scores  []float64
	err     error
	gotLen  int
	closed  bool
	closeFn func() error
}

func (m *mockClassifier) Predict(seq classification.FeatureSequence) ([]float64, error) {
	m.gotLen = seq.Frames()
	return m.scores, m.err
}

// closingClassifier adds io.Closer to mockClassifier
type closingClassifier struct {
	*mockClassifier
}

func (c closingClassifier) Close() error {
	c.closed = true
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func frames(n int) classification.FeatureSequence {
	seq := make(classification.FeatureSequence, n)
	for i := range seq {
		seq[i] = make([]float64, 13)
	}
	return seq
}

func TestService_Classify(t *testing.T) {
	tests := []struct {
		name      string
		scores    []float64
		seqLen    int
		frames    int
		wantLabel classification.Label
		wantModel int
	}{
		{"short wins", []float64{2, 1, 0}, 100, 400, classification.LabelShort, 400},
		{"medium wins", []float64{0, 3, 1}, 500, 400, classification.LabelMedium, 400},
		{"long wins with natural length", []float64{-1, -2, 0.5}, 37, 0, classification.LabelLong, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &mockClassifier{scores: tt.scores}
			svc := NewService(zerolog.Nop(), &mockExtractor{seq: frames(tt.seqLen)}, clf, nil, tt.frames)

			pred, err := svc.Classify(context.Background(), "clip.wav")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if pred.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", pred.Label, tt.wantLabel)
			}
			if pred.Frames != tt.seqLen {
				t.Errorf("Frames = %d, want %d", pred.Frames, tt.seqLen)
			}
			if clf.gotLen != tt.wantModel {
				t.Errorf("classifier saw %d frames, want %d", clf.gotLen, tt.wantModel)
			}
		})
	}
}

func TestService_ClassifyErrors(t *testing.T) {
	extractErr := errors.New("decode failed")
	predictErr := errors.New("shape mismatch")

	tests := []struct {
		name      string
		extractor *mockExtractor
		clf       *mockClassifier
		want      error
	}{
		{"extraction", &mockExtractor{err: extractErr}, &mockClassifier{}, extractErr},
		{"inference", &mockExtractor{seq: frames(3)}, &mockClassifier{err: predictErr}, predictErr},
		{"no scores", &mockExtractor{seq: frames(3)}, &mockClassifier{scores: nil}, nil},
		{"index outside label map", &mockExtractor{seq: frames(3)}, &mockClassifier{scores: []float64{0, 0, 0, 9}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(zerolog.Nop(), tt.extractor, tt.clf, classification.DefaultLabelMap, 400)
			_, err := svc.Classify(context.Background(), "clip.wav")
			if err == nil {
				t.Fatal("Classify() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Classify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_Close(t *testing.T) {
	plain := NewService(zerolog.Nop(), &mockExtractor{}, &mockClassifier{}, nil, 0)
	if err := plain.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	closeErr := errors.New("busy")
	inner := &mockClassifier{closeFn: func() error { return closeErr }}
	svc := NewService(zerolog.Nop(), &mockExtractor{}, closingClassifier{inner}, nil, 0)
	if err := svc.Close(); !errors.Is(err, closeErr) {
		t.Errorf("Close() error = %v, want %v", err, closeErr)
	}
	if !inner.closed {
		t.Error("Close() did not close the classifier")
	}
}

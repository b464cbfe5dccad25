package classification

// FeatureSequence is a time-ordered list of per-frame feature vectors
type FeatureSequence [][]float64

// Frames returns the number of time steps
func (s FeatureSequence) Frames() int {
	return len(s)
}

// Width returns the size of each feature vector (0 for an empty sequence)
func (s FeatureSequence) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Fit pads with zero frames or truncates to exactly n frames.
// n <= 0 returns the sequence unchanged.
func (s FeatureSequence) Fit(n int) FeatureSequence {
	if n <= 0 || len(s) == n {
		return s
	}
	if len(s) > n {
		return s[:n]
	}
	width := s.Width()
	out := make(FeatureSequence, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = make([]float64, width)
	}
	return out
}

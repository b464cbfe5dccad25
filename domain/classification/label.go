package classification

import "fmt"

// Label is the duration class predicted for a clip
type Label string

const (
	LabelShort  Label = "SHORT"
	LabelMedium Label = "MEDIUM"
	LabelLong   Label = "LONG"
)

// LabelMap maps classifier output indices to labels
type LabelMap []Label

// DefaultLabelMap is the fixed three-way mapping the model was trained with
var DefaultLabelMap = LabelMap{LabelShort, LabelMedium, LabelLong}

// NewLabelMap builds a LabelMap from configured names
func NewLabelMap(names []string) (LabelMap, error) {
	if len(names) == 0 {
		return DefaultLabelMap, nil
	}
	seen := make(map[string]bool, len(names))
	m := make(LabelMap, 0, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("label names must not be empty")
		}
		if seen[n] {
			return nil, fmt.Errorf("duplicate label %q", n)
		}
		seen[n] = true
		m = append(m, Label(n))
	}
	return m, nil
}

// Lookup returns the label for a class index
func (m LabelMap) Lookup(index int) (Label, error) {
	if index < 0 || index >= len(m) {
		return "", fmt.Errorf("class index %d outside label map of size %d", index, len(m))
	}
	return m[index], nil
}

// ArgMax returns the index of the largest score; ties resolve to the lowest index
func ArgMax(scores []float64) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

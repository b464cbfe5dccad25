package lstm

import (
	"fmt"
	"math"

	"letitflow-media/domain/classification"

	"gonum.org/v1/gonum/mat"
)

// Architecture describes the expected network; zero fields are not checked
type Architecture struct {
	InputSize  int
	HiddenSize int
	NumLayers  int
	NumClasses int
}

// Tensor names follow the PyTorch state dict of a module holding
// an nn.LSTM as "rnn" and an nn.Linear as "fc".
const (
	fcWeightKey = "fc.weight"
	fcBiasKey   = "fc.bias"
)

func layerKey(kind string, layer int) string {
	return fmt.Sprintf("rnn.%s_l%d", kind, layer)
}

type layer struct {
	wih  *mat.Dense    // 4H x input
	whh  *mat.Dense    // 4H x H
	bias *mat.VecDense // b_ih + b_hh
}

// Network is a stacked batch-first LSTM followed by a linear projection
// of the last time step. It is read-only after construction and safe for
// concurrent use.
type Network struct {
	arch   Architecture
	layers []layer
	fcW    *mat.Dense
	fcB    *mat.VecDense
}

// Load reads a safetensors file and builds a Network, checking it against want
func Load(path string, want Architecture) (*Network, error) {
	w, err := LoadWeights(path)
	if err != nil {
		return nil, err
	}
	n, err := NewNetwork(w)
	if err != nil {
		return nil, err
	}
	if err := n.Check(want); err != nil {
		return nil, err
	}
	return n, nil
}

// NewNetwork infers the architecture from tensor shapes
func NewNetwork(w *Weights) (*Network, error) {
	fcW, ok := w.Tensors[fcWeightKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing tensor %s", ErrShapeMismatch, fcWeightKey)
	}
	fcB, ok := w.Tensors[fcBiasKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing tensor %s", ErrShapeMismatch, fcBiasKey)
	}
	if len(fcW.Shape) != 2 || !positive(fcW.Shape) || len(fcB.Shape) != 1 || fcB.Shape[0] != fcW.Shape[0] {
		return nil, fmt.Errorf("%w: fc shapes %v and %v", ErrShapeMismatch, fcW.Shape, fcB.Shape)
	}

	n := &Network{
		fcW: mat.NewDense(fcW.Shape[0], fcW.Shape[1], fcW.Data),
		fcB: mat.NewVecDense(fcB.Shape[0], fcB.Data),
	}
	n.arch.NumClasses = fcW.Shape[0]
	n.arch.HiddenSize = fcW.Shape[1]
	hidden := n.arch.HiddenSize
	gates := 4 * hidden

	for k := 0; ; k++ {
		wih, ok := w.Tensors[layerKey("weight_ih", k)]
		if !ok {
			break
		}
		whh, okHH := w.Tensors[layerKey("weight_hh", k)]
		bih, okBI := w.Tensors[layerKey("bias_ih", k)]
		bhh, okBH := w.Tensors[layerKey("bias_hh", k)]
		if !okHH || !okBI || !okBH {
			return nil, fmt.Errorf("%w: layer %d is incomplete", ErrShapeMismatch, k)
		}

		if len(wih.Shape) != 2 || !positive(wih.Shape) || wih.Shape[0] != gates {
			return nil, fmt.Errorf("%w: %s has shape %v, want [%d, *]", ErrShapeMismatch, layerKey("weight_ih", k), wih.Shape, gates)
		}
		if len(whh.Shape) != 2 || whh.Shape[0] != gates || whh.Shape[1] != hidden {
			return nil, fmt.Errorf("%w: %s has shape %v, want [%d, %d]", ErrShapeMismatch, layerKey("weight_hh", k), whh.Shape, gates, hidden)
		}
		if len(bih.Data) != gates || len(bhh.Data) != gates {
			return nil, fmt.Errorf("%w: layer %d biases must have %d values", ErrShapeMismatch, k, gates)
		}
		if k == 0 {
			n.arch.InputSize = wih.Shape[1]
		} else if wih.Shape[1] != hidden {
			return nil, fmt.Errorf("%w: %s has shape %v, want [%d, %d]", ErrShapeMismatch, layerKey("weight_ih", k), wih.Shape, gates, hidden)
		}

		bias := mat.NewVecDense(gates, nil)
		bias.AddVec(mat.NewVecDense(gates, bih.Data), mat.NewVecDense(gates, bhh.Data))

		n.layers = append(n.layers, layer{
			wih:  mat.NewDense(gates, wih.Shape[1], wih.Data),
			whh:  mat.NewDense(gates, hidden, whh.Data),
			bias: bias,
		})
	}

	if len(n.layers) == 0 {
		return nil, fmt.Errorf("%w: no LSTM layers found", ErrShapeMismatch)
	}
	n.arch.NumLayers = len(n.layers)
	return n, nil
}

// Architecture returns the shape inferred from the weights
func (n *Network) Architecture() Architecture {
	return n.arch
}

// Check compares the inferred architecture with the non-zero fields of want
func (n *Network) Check(want Architecture) error {
	check := func(name string, got, want int) error {
		if want != 0 && got != want {
			return fmt.Errorf("%w: %s is %d in weights, configured %d", ErrShapeMismatch, name, got, want)
		}
		return nil
	}
	for _, err := range []error{
		check("input_size", n.arch.InputSize, want.InputSize),
		check("hidden_size", n.arch.HiddenSize, want.HiddenSize),
		check("num_layers", n.arch.NumLayers, want.NumLayers),
		check("num_classes", n.arch.NumClasses, want.NumClasses),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Predict runs the sequence through every layer from a zero state and
// returns the class logits for the final time step.
func (n *Network) Predict(seq classification.FeatureSequence) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: empty feature sequence", ErrShapeMismatch)
	}
	inputs := make([]*mat.VecDense, len(seq))
	for t, frame := range seq {
		if len(frame) != n.arch.InputSize {
			return nil, fmt.Errorf("%w: frame %d has %d features, model expects %d", ErrShapeMismatch, t, len(frame), n.arch.InputSize)
		}
		inputs[t] = mat.NewVecDense(len(frame), frame)
	}

	for _, l := range n.layers {
		inputs = n.runLayer(l, inputs)
	}

	logits := mat.NewVecDense(n.arch.NumClasses, nil)
	logits.MulVec(n.fcW, inputs[len(inputs)-1])
	logits.AddVec(logits, n.fcB)

	out := make([]float64, n.arch.NumClasses)
	copy(out, logits.RawVector().Data)
	return out, nil
}

// runLayer applies one LSTM layer with PyTorch gate order (input, forget, cell, output)
func (n *Network) runLayer(l layer, inputs []*mat.VecDense) []*mat.VecDense {
	hidden := n.arch.HiddenSize
	h := mat.NewVecDense(hidden, nil)
	c := make([]float64, hidden)
	gates := mat.NewVecDense(4*hidden, nil)
	rec := mat.NewVecDense(4*hidden, nil)
	outputs := make([]*mat.VecDense, len(inputs))

	for t, x := range inputs {
		gates.MulVec(l.wih, x)
		rec.MulVec(l.whh, h)
		gates.AddVec(gates, rec)
		gates.AddVec(gates, l.bias)

		next := mat.NewVecDense(hidden, nil)
		for j := 0; j < hidden; j++ {
			i := sigmoid(gates.AtVec(j))
			f := sigmoid(gates.AtVec(hidden + j))
			g := math.Tanh(gates.AtVec(2*hidden + j))
			o := sigmoid(gates.AtVec(3*hidden + j))

			c[j] = f*c[j] + i*g
			next.SetVec(j, o*math.Tanh(c[j]))
		}
		h = next
		outputs[t] = next
	}

	return outputs
}

func positive(shape []int) bool {
	for _, d := range shape {
		if d <= 0 {
			return false
		}
	}
	return true
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Ensure Network implements classification.Classifier
var _ classification.Classifier = (*Network)(nil)

package lstm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

var (
	// ErrUnsupportedWeights is returned for weight files that are not safetensors
	// or that use a tensor encoding this package cannot read
	ErrUnsupportedWeights = errors.New("unsupported weights file")

	// ErrShapeMismatch is returned when tensor shapes disagree with each other or with the configured model
	ErrShapeMismatch = errors.New("model shape mismatch")
)

const maxHeaderSize = 100 << 20

// Tensor is a dense row-major tensor widened to float64
type Tensor struct {
	DType string
	Shape []int
	Data  []float64
}

// Len returns the number of elements implied by the shape
func (t Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Weights is the content of a safetensors file
type Weights struct {
	Tensors  map[string]Tensor
	Metadata map[string]string
}

// Names returns the tensor names in sorted order
func (w *Weights) Names() []string {
	names := make([]string, 0, len(w.Tensors))
	for name := range w.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type tensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// LoadWeights reads a safetensors file from disk
func LoadWeights(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	return ParseWeights(data)
}

// ReadWeights reads a safetensors stream
func ReadWeights(r io.Reader) (*Weights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	return ParseWeights(data)
}

// ParseWeights decodes the safetensors layout: an 8-byte little-endian header
// length, a JSON header, then the raw tensor bytes.
func ParseWeights(data []byte) (*Weights, error) {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return nil, fmt.Errorf("%w: PyTorch zip checkpoint, export the state dict as safetensors", ErrUnsupportedWeights)
	}
	if len(data) > 0 && data[0] == 0x80 {
		return nil, fmt.Errorf("%w: pickle checkpoint, export the state dict as safetensors", ErrUnsupportedWeights)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: file too short", ErrUnsupportedWeights)
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > maxHeaderSize || headerLen > uint64(len(data)-8) {
		return nil, fmt.Errorf("%w: header length %d out of range", ErrUnsupportedWeights, headerLen)
	}
	header := data[8 : 8+headerLen]
	body := data[8+headerLen:]

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(header, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid header: %v", ErrUnsupportedWeights, err)
	}

	w := &Weights{
		Tensors:  make(map[string]Tensor, len(raw)),
		Metadata: map[string]string{},
	}

	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &w.Metadata); err != nil {
				return nil, fmt.Errorf("%w: invalid metadata: %v", ErrUnsupportedWeights, err)
			}
			continue
		}

		var th tensorHeader
		if err := json.Unmarshal(msg, &th); err != nil {
			return nil, fmt.Errorf("%w: tensor %s: %v", ErrUnsupportedWeights, name, err)
		}

		t, err := decodeTensor(th, body)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		w.Tensors[name] = t
	}

	return w, nil
}

func decodeTensor(th tensorHeader, body []byte) (Tensor, error) {
	t := Tensor{DType: th.DType, Shape: th.Shape}

	var width int
	switch th.DType {
	case "F32":
		width = 4
	case "F64":
		width = 8
	default:
		return t, fmt.Errorf("%w: dtype %s", ErrUnsupportedWeights, th.DType)
	}

	start, end := th.DataOffsets[0], th.DataOffsets[1]
	if start < 0 || end < start || end > int64(len(body)) {
		return t, fmt.Errorf("%w: data offsets [%d, %d] outside %d byte buffer", ErrUnsupportedWeights, start, end, len(body))
	}
	n, ok := elementCount(t.Shape, int((end-start)/int64(width)))
	if !ok || int64(n*width) != end-start {
		return t, fmt.Errorf("%w: %d bytes for shape %v of %s", ErrShapeMismatch, end-start, t.Shape, th.DType)
	}

	buf := body[start:end]
	t.Data = make([]float64, n)
	for i := range t.Data {
		if width == 4 {
			t.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		} else {
			t.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	}
	return t, nil
}

// elementCount multiplies shape out, failing on negative dimensions or once
// the product would exceed limit
func elementCount(shape []int, limit int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, false
		}
		if d != 0 && n > limit/d {
			return 0, false
		}
		n *= d
	}
	return n, n <= limit
}

// EncodeWeights writes tensors as F32 safetensors
func EncodeWeights(w io.Writer, tensors map[string]Tensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(tensors)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var body bytes.Buffer
	for _, name := range names {
		t := tensors[name]
		if len(t.Data) != t.Len() {
			return fmt.Errorf("%w: tensor %s has %d values for shape %v", ErrShapeMismatch, name, len(t.Data), t.Shape)
		}
		start := body.Len()
		for _, v := range t.Data {
			if err := binary.Write(&body, binary.LittleEndian, float32(v)); err != nil {
				return err
			}
		}
		shape := t.Shape
		if shape == nil {
			shape = []int{}
		}
		header[name] = tensorHeader{DType: "F32", Shape: shape, DataOffsets: [2]int64{int64(start), int64(body.Len())}}
	}

	hdr, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(hdr))); err != nil {
		return err
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err = w.Write(body.Bytes())
	return err
}

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNotWAV is returned when a file is not a RIFF/WAVE file
	ErrNotWAV = errors.New("not a valid WAV file")

	// ErrUnsupportedEncoding is returned for WAV files that are not integer PCM
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
)

const wavFormatPCM = 1

// Clip is mono audio with samples in [-1, 1]
type Clip struct {
	Samples    []float64
	SampleRate int
}

// DecodeWAV reads an integer PCM WAV file, normalises it and mixes it down to mono
func DecodeWAV(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Clip{}, ErrNotWAV
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return Clip{}, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return Clip{}, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	samples := normalize(buf.Data, int(decoder.BitDepth))

	return Clip{
		Samples:    ToMono(samples, channels),
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// normalize scales integer samples of the given bit depth into [-1, 1].
// 8-bit WAV data is unsigned and centred on 128.
func normalize(data []int, bitDepth int) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	if bitDepth == 8 {
		floats.AddConst(-128, out)
		floats.Scale(1.0/128, out)
		return out
	}

	floats.Scale(1/float64(int64(1)<<(bitDepth-1)), out)
	return out
}

// ToMono averages interleaved channels
func ToMono(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	mono := make([]float64, len(samples)/channels)
	for i := range mono {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Resample converts samples from srcRate to dstRate by linear interpolation
func Resample(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	resampled := make([]float64, outLen)

	last := len(samples) - 1
	for i := range resampled {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			resampled[i] = samples[last]
			continue
		}
		frac := pos - float64(idx)
		resampled[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}

	return resampled
}

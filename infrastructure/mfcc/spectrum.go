package mfcc

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// hann returns a periodic Hann window of length n
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// FrameCount returns the number of centred STFT frames for n samples
func FrameCount(n, hop int) int {
	return 1 + n/hop
}

// PowerSpectrogram computes |STFT|^2 with centred, zero-padded frames.
// The result has nFFT/2+1 rows and one column per frame.
func PowerSpectrogram(samples []float64, nFFT, hop int) *mat.Dense {
	pad := nFFT / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	frames := 1 + (len(padded)-nFFT)/hop
	bins := nFFT/2 + 1
	out := mat.NewDense(bins, frames, nil)

	win := hann(nFFT)
	fft := fourier.NewFFT(nFFT)
	frame := make([]float64, nFFT)
	coeffs := make([]complex128, bins)

	for t := 0; t < frames; t++ {
		start := t * hop
		for i := 0; i < nFFT; i++ {
			frame[i] = padded[start+i] * win[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for k, c := range coeffs {
			a := cmplx.Abs(c)
			out.Set(k, t, a*a)
		}
	}

	return out
}

// PowerToDB converts a power spectrogram to decibels relative to 1.0 in place,
// flooring values at amin and clipping everything more than topDB below the peak.
func PowerToDB(s *mat.Dense, topDB float64) {
	const amin = 1e-10

	peak := math.Inf(-1)
	s.Apply(func(_, _ int, v float64) float64 {
		db := 10 * math.Log10(math.Max(amin, v))
		if db > peak {
			peak = db
		}
		return db
	}, s)

	if topDB <= 0 {
		return
	}
	floor := peak - topDB
	s.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v, floor)
	}, s)
}

// DCTMatrix returns the first n rows of an orthonormal DCT-II over size inputs
func DCTMatrix(n, size int) *mat.Dense {
	d := mat.NewDense(n, size, nil)
	for k := 0; k < n; k++ {
		scale := math.Sqrt(2 / float64(size))
		if k == 0 {
			scale = math.Sqrt(1 / float64(size))
		}
		for i := 0; i < size; i++ {
			d.Set(k, i, scale*math.Cos(math.Pi*float64(k)*float64(2*i+1)/float64(2*size)))
		}
	}
	return d
}

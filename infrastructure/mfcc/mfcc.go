package mfcc

import (
	"context"
	"fmt"

	"letitflow-media/domain/classification"

	"gonum.org/v1/gonum/mat"
)

// MFCC computes mel-frequency cepstral coefficients
type MFCC struct {
	params Params
	mel    *mat.Dense
	dct    *mat.Dense
}

// New builds the filter bank and DCT basis for params
func New(params Params) (*MFCC, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mfcc parameters: %w", err)
	}
	return &MFCC{
		params: params,
		mel:    MelFilterBank(params.SampleRate, params.NFFT, params.NMels),
		dct:    DCTMatrix(params.NMFCC, params.NMels),
	}, nil
}

// Params returns the parameters the MFCC was built with
func (m *MFCC) Params() Params {
	return m.params
}

// Compute returns one row of NMFCC coefficients per STFT frame
func (m *MFCC) Compute(samples []float64) (classification.FeatureSequence, error) {
	if len(samples) == 0 {
		return nil, classification.ErrEmptyAudio
	}

	power := PowerSpectrogram(samples, m.params.NFFT, m.params.HopLength)
	_, frames := power.Dims()

	var melSpec mat.Dense
	melSpec.Mul(m.mel, power)
	PowerToDB(&melSpec, m.params.TopDB)

	var coeffs mat.Dense
	coeffs.Mul(m.dct, &melSpec)

	seq := make(classification.FeatureSequence, frames)
	for t := range seq {
		row := make([]float64, m.params.NMFCC)
		mat.Col(row, t, &coeffs)
		seq[t] = row
	}
	return seq, nil
}

// SampleLoader reads an audio file as mono samples
type SampleLoader interface {
	Load(ctx context.Context, path string) ([]float64, error)
}

// Extractor implements classification.FeatureExtractor
type Extractor struct {
	loader SampleLoader
	mfcc   *MFCC
}

// NewExtractor pairs an audio loader with an MFCC pipeline.
// The loader must deliver samples at the MFCC sample rate.
func NewExtractor(loader SampleLoader, m *MFCC) *Extractor {
	return &Extractor{loader: loader, mfcc: m}
}

// Extract decodes path and computes its MFCC sequence
func (e *Extractor) Extract(ctx context.Context, path string) (classification.FeatureSequence, error) {
	samples, err := e.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.mfcc.Compute(samples)
}

// Ensure Extractor implements classification.FeatureExtractor
var _ classification.FeatureExtractor = (*Extractor)(nil)

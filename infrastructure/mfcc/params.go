package mfcc

import (
	"errors"
	"fmt"
)

// Params configures the feature pipeline; the defaults match librosa's mfcc()
type Params struct {
	SampleRate int
	NMFCC      int
	NFFT       int
	HopLength  int
	NMels      int
	TopDB      float64
}

// DefaultParams returns librosa's defaults at 22050 Hz with 13 coefficients
func DefaultParams() Params {
	return Params{
		SampleRate: 22050,
		NMFCC:      13,
		NFFT:       2048,
		HopLength:  512,
		NMels:      128,
		TopDB:      80,
	}
}

// Validate checks that the parameters describe a usable pipeline
func (p Params) Validate() error {
	var errs []error
	if p.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", p.SampleRate))
	}
	if p.NFFT <= 0 {
		errs = append(errs, fmt.Errorf("n_fft must be positive, got %d", p.NFFT))
	}
	if p.HopLength <= 0 {
		errs = append(errs, fmt.Errorf("hop length must be positive, got %d", p.HopLength))
	}
	if p.NMels <= 0 {
		errs = append(errs, fmt.Errorf("n_mels must be positive, got %d", p.NMels))
	}
	if p.NMFCC <= 0 || p.NMFCC > p.NMels {
		errs = append(errs, fmt.Errorf("n_mfcc must be in 1..%d, got %d", p.NMels, p.NMFCC))
	}
	if p.TopDB < 0 {
		errs = append(errs, fmt.Errorf("top_db must not be negative, got %v", p.TopDB))
	}
	return errors.Join(errs...)
}

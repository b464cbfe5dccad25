package cmd

import (
	"fmt"

	appclassification "letitflow-media/application/classification"
	"letitflow-media/domain/classification"
	"letitflow-media/infrastructure/audio"
	"letitflow-media/infrastructure/config"
	"letitflow-media/infrastructure/ffmpeg"
	"letitflow-media/infrastructure/lstm"
	"letitflow-media/infrastructure/mfcc"

	"github.com/rs/zerolog"
)

// BuildRecognizer loads the model weights and wires the feature pipeline.
// Any failure here is fatal for the commands that need a recognizer.
func BuildRecognizer(cfg *config.Config, logger zerolog.Logger) (classification.Recognizer, error) {
	labels, err := classification.NewLabelMap(cfg.Model.Labels)
	if err != nil {
		return nil, fmt.Errorf("invalid model labels: %w", err)
	}

	network, err := lstm.Load(cfg.Model.WeightsFile, lstm.Architecture{
		InputSize:  cfg.Model.InputSize,
		HiddenSize: cfg.Model.HiddenSize,
		NumLayers:  cfg.Model.NumLayers,
		NumClasses: len(labels),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", cfg.Model.WeightsFile, err)
	}
	arch := network.Architecture()
	logger.Info().
		Str("weights", cfg.Model.WeightsFile).
		Int("input_size", arch.InputSize).
		Int("hidden_size", arch.HiddenSize).
		Int("num_layers", arch.NumLayers).
		Int("num_classes", arch.NumClasses).
		Msg("model loaded")

	params := mfcc.DefaultParams()
	params.SampleRate = cfg.Features.SampleRate
	params.NMFCC = cfg.Features.NMFCC
	params.NFFT = cfg.Features.NFFT
	params.HopLength = cfg.Features.HopLength
	params.NMels = cfg.Features.NMels
	pipeline, err := mfcc.New(params)
	if err != nil {
		return nil, err
	}

	normalizer := ffmpeg.NewNormalizer(ffmpeg.WithNormalizerFFmpegPath(cfg.Extraction.FFmpegPath))
	loader := audio.NewLoader(logger, cfg.Features.SampleRate, normalizer)

	return appclassification.NewService(
		logger,
		mfcc.NewExtractor(loader, pipeline),
		network,
		labels,
		cfg.Features.Frames,
	), nil
}

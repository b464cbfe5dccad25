package config

import "strings"

// Engine names accepted by extraction.engine
const (
	EngineFFmpeg  = "ffmpeg"
	EngineLibrary = "library"
)

// MaxUploadMBLimit bounds server.max_upload_mb so the byte limit fits an int64
const MaxUploadMBLimit = 1 << 20

// NormalizeEngine folds an engine name to the form the Engine constants use
func NormalizeEngine(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Default returns the configuration used when no file is present.
// The paths mirror the folders the extraction and upload workflows always used.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDirectory:  "mov",
			OutputDirectory: "wav",
			UploadDirectory: "./uploads",
		},
		Extraction: ExtractionConfig{
			Engine:            EngineFFmpeg,
			Extension:         ".MOV",
			Codec:             "pcm_s16le",
			FFmpegPath:        "ffmpeg",
			LibrarySampleRate: 44100,
		},
		Server: ServerConfig{
			Address:     "127.0.0.1:5000",
			CORS:        true,
			MaxUploadMB: 32,
		},
		Model: ModelConfig{
			WeightsFile: "model.safetensors",
			InputSize:   13,
			HiddenSize:  128,
			NumLayers:   2,
			Labels:      []string{"SHORT", "MEDIUM", "LONG"},
		},
		Features: FeaturesConfig{
			SampleRate: 22050,
			NMFCC:      13,
			NFFT:       2048,
			HopLength:  512,
			NMels:      128,
			Frames:     400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

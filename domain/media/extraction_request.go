package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultExtension is the file name marker selecting videos for extraction
	DefaultExtension = ".MOV"

	// DefaultCodec is uncompressed 16-bit little-endian PCM
	DefaultCodec = "pcm_s16le"

	// OutputExtension is the extension of every extracted audio file
	OutputExtension = ".wav"
)

// ExtractionRequest represents a request to extract the audio track of one video
type ExtractionRequest struct {
	SourcePath string
	Codec      string
	SampleRate int // Optional: 0 keeps the source rate
}

// NewExtractionRequest creates a new ExtractionRequest with validation
func NewExtractionRequest(sourcePath, codec string) (*ExtractionRequest, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, fmt.Errorf("source video path is required")
	}

	if codec == "" {
		codec = DefaultCodec
	}

	return &ExtractionRequest{
		SourcePath: sourcePath,
		Codec:      codec,
	}, nil
}

// OutputFilename returns the source base name with its extension replaced by .wav
func (r *ExtractionRequest) OutputFilename() string {
	return OutputFilenameFor(filepath.Base(r.SourcePath))
}

// OutputPath returns the full output path including the directory
func (r *ExtractionRequest) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, r.OutputFilename())
}

// OutputFilenameFor derives the .wav name for a video file name
func OutputFilenameFor(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + OutputExtension
}

// MatchesExtension reports whether name ends in the marker.
// The comparison is case-sensitive: "clip.mov" does not match ".MOV".
func MatchesExtension(name, marker string) bool {
	if marker == "" {
		marker = DefaultExtension
	}
	return strings.HasSuffix(name, marker)
}

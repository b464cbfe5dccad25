package media

import (
	"strings"
	"testing"
)

func TestNewExtractionRequest(t *testing.T) {
	tests := []struct {
		name        string
		sourcePath  string
		codec       string
		wantCodec   string
		wantErr     bool
		errContains string
	}{
		{
			name:       "explicit codec",
			sourcePath: "mov/IMG_6287.MOV",
			codec:      "pcm_s24le",
			wantCodec:  "pcm_s24le",
		},
		{
			name:       "default codec",
			sourcePath: "mov/IMG_6287.MOV",
			wantCodec:  DefaultCodec,
		},
		{
			name:        "empty source path",
			sourcePath:  "",
			wantErr:     true,
			errContains: "source video path is required",
		},
		{
			name:        "blank source path",
			sourcePath:  "   ",
			wantErr:     true,
			errContains: "source video path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractionRequest(tt.sourcePath, tt.codec)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewExtractionRequest() expected error, got nil")
					return
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewExtractionRequest() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Errorf("NewExtractionRequest() unexpected error: %v", err)
				return
			}

			if got.Codec != tt.wantCodec {
				t.Errorf("NewExtractionRequest() Codec = %q, want %q", got.Codec, tt.wantCodec)
			}
		})
	}
}

func TestExtractionRequest_OutputFilename(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"mov/IMG_6287.MOV", "IMG_6287.wav"},
		{"/abs/LetItFlow-RAW-Lina/IMG_6287.mov", "IMG_6287.wav"},
		{"clip.take2.MOV", "clip.take2.wav"},
		{"noext", "noext.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			req := &ExtractionRequest{SourcePath: tt.source}
			if got := req.OutputFilename(); got != tt.want {
				t.Errorf("ExtractionRequest.OutputFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractionRequest_OutputPath(t *testing.T) {
	req := &ExtractionRequest{SourcePath: "mov/IMG_0001.MOV"}

	tests := []struct {
		outputDir string
		want      string
	}{
		{"wav", "wav/IMG_0001.wav"},
		{"/tmp/out", "/tmp/out/IMG_0001.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.outputDir, func(t *testing.T) {
			if got := req.OutputPath(tt.outputDir); got != tt.want {
				t.Errorf("ExtractionRequest.OutputPath(%q) = %q, want %q", tt.outputDir, got, tt.want)
			}
		})
	}
}

func TestMatchesExtension(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		want   bool
	}{
		{"IMG_6287.MOV", ".MOV", true},
		{"IMG_6287.mov", ".MOV", false},
		{"IMG_6287.MOV.txt", ".MOV", false},
		{"IMG_6287.mp4", ".MOV", false},
		{"IMG_6287.MOV", "", true},
		{"IMG_6287.mp4", ".mp4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+tt.marker, func(t *testing.T) {
			if got := MatchesExtension(tt.name, tt.marker); got != tt.want {
				t.Errorf("MatchesExtension(%q, %q) = %v, want %v", tt.name, tt.marker, got, tt.want)
			}
		})
	}
}

func TestBatchReport_Counters(t *testing.T) {
	report := &BatchReport{
		Processed: []FileResult{
			{Outcome: OutcomeSucceeded},
			{Outcome: OutcomeSucceeded},
			{Outcome: OutcomeFailed},
			{Outcome: OutcomeToolMissing},
		},
		Skipped: []string{"notes.txt"},
	}

	if got := report.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if got := report.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := report.ToolMissing(); got != 1 {
		t.Errorf("ToolMissing() = %d, want 1", got)
	}
}

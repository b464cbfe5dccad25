package extraction

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"letitflow-media/domain/media"

	"github.com/rs/zerolog"
)

// --- Mock implementations for testing ---

// mockExtractor implements media.AudioExtractor for testing
type mockExtractor struct {
	calls    []string
	outputs  []string
	failFor  map[string]error
	toolGone bool
}

func (m *mockExtractor) Extract(ctx context.Context, req *media.ExtractionRequest, outputPath string) (media.ToolRun, error) {
	m.calls = append(m.calls, req.SourcePath)
	m.outputs = append(m.outputs, outputPath)
	run := media.ToolRun{Command: "ffmpeg", Stderr: "size=1kB"}
	if m.toolGone {
		return media.ToolRun{Command: "ffmpeg", ExitCode: -1}, media.ErrToolNotFound
	}
	if err, ok := m.failFor[filepath.Base(req.SourcePath)]; ok {
		run.ExitCode = 1
		return run, &media.ToolError{Run: run, Err: err}
	}
	return run, nil
}

// mockLister implements media.DirectoryLister for testing
type mockLister struct {
	entries   map[string][]media.DirEntry
	listErr   error
	ensureErr error
	ensured   []string
}

func (m *mockLister) List(dir string) ([]media.DirEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries[dir], nil
}

func (m *mockLister) EnsureDir(dir string) error {
	m.ensured = append(m.ensured, dir)
	return m.ensureErr
}

// mockFileChecker implements media.FileChecker for testing
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// mockProber implements media.VideoProber for testing
type mockProber struct {
	probed []string
	err    error
}

func (m *mockProber) Probe(path string) (media.VideoInfo, error) {
	m.probed = append(m.probed, path)
	return media.VideoInfo{Frames: 300, FPS: 30}, m.err
}

// mockLocker implements media.DirectoryLocker for testing
type mockLocker struct {
	locked   []string
	unlocked int
	err      error
}

func (m *mockLocker) Lock(dir string) (func() error, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.locked = append(m.locked, dir)
	return func() error {
		m.unlocked++
		return nil
	}, nil
}

func newTestService(ext *mockExtractor, lister *mockLister, opts ...ServiceOption) *Service {
	return NewService(zerolog.Nop(), ext, lister, &mockFileChecker{}, opts...)
}

func sampleEntries() []media.DirEntry {
	return []media.DirEntry{
		{Name: "IMG_0001.MOV"},
		{Name: "IMG_0002.mov"},
		{Name: "IMG_0003.MOV"},
		{Name: "notes.txt"},
		{Name: "nested.MOV", IsDir: true},
	}
}

func TestService_ExtractDirectory(t *testing.T) {
	ext := &mockExtractor{}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	svc := newTestService(ext, lister)

	report, err := svc.ExtractDirectory(context.Background(), "mov", "wav")
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}

	if len(ext.calls) != 2 {
		t.Fatalf("extractor called %d times, want 2", len(ext.calls))
	}
	wantOutputs := []string{filepath.Join("wav", "IMG_0001.wav"), filepath.Join("wav", "IMG_0003.wav")}
	for i, want := range wantOutputs {
		if ext.outputs[i] != want {
			t.Errorf("output[%d] = %q, want %q", i, ext.outputs[i], want)
		}
	}
	if len(report.Skipped) != 3 {
		t.Errorf("Skipped = %v, want 3 entries", report.Skipped)
	}
	if report.Succeeded() != 2 {
		t.Errorf("Succeeded() = %d, want 2", report.Succeeded())
	}
	if len(lister.ensured) != 1 || lister.ensured[0] != "wav" {
		t.Errorf("EnsureDir calls = %v, want [wav]", lister.ensured)
	}
}

func TestService_ExtractDirectory_CustomExtension(t *testing.T) {
	ext := &mockExtractor{}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	svc := newTestService(ext, lister, WithExtension(".mov"))

	report, err := svc.ExtractDirectory(context.Background(), "mov", "wav")
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	if len(ext.calls) != 1 || filepath.Base(ext.calls[0]) != "IMG_0002.mov" {
		t.Errorf("calls = %v, want only IMG_0002.mov", ext.calls)
	}
	if len(report.Skipped) != 4 {
		t.Errorf("Skipped = %v, want 4 entries", report.Skipped)
	}
}

func TestService_ExtractDirectory_FailureContinues(t *testing.T) {
	ext := &mockExtractor{failFor: map[string]error{"IMG_0001.MOV": errors.New("exit status 1")}}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	svc := newTestService(ext, lister)

	report, err := svc.ExtractDirectory(context.Background(), "mov", "wav")
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	if len(ext.calls) != 2 {
		t.Errorf("extractor called %d times, want 2", len(ext.calls))
	}
	if report.Failed() != 1 || report.Succeeded() != 1 {
		t.Errorf("Failed() = %d, Succeeded() = %d, want 1 and 1", report.Failed(), report.Succeeded())
	}
	if report.Processed[0].Run.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", report.Processed[0].Run.ExitCode)
	}
}

func TestService_ExtractDirectory_ToolMissing(t *testing.T) {
	ext := &mockExtractor{toolGone: true}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	svc := newTestService(ext, lister)

	report, err := svc.ExtractDirectory(context.Background(), "mov", "wav")
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	if report.ToolMissing() != 2 {
		t.Errorf("ToolMissing() = %d, want 2", report.ToolMissing())
	}
	if len(ext.calls) != 2 {
		t.Errorf("extractor called %d times, want 2", len(ext.calls))
	}
}

func TestService_ExtractDirectory_DirectoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		lister *mockLister
	}{
		{"unreadable input", &mockLister{listErr: errors.New("no such directory")}},
		{"uncreatable output", &mockLister{ensureErr: errors.New("permission denied")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{}
			svc := newTestService(ext, tt.lister)
			if _, err := svc.ExtractDirectory(context.Background(), "mov", "wav"); err == nil {
				t.Error("ExtractDirectory() expected error")
			}
			if len(ext.calls) != 0 {
				t.Errorf("extractor called %d times, want 0", len(ext.calls))
			}
		})
	}
}

func TestService_ExtractDirectory_EmptyDirectory(t *testing.T) {
	ext := &mockExtractor{}
	svc := newTestService(ext, &mockLister{})

	report, err := svc.ExtractDirectory(context.Background(), "mov", "wav")
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	if len(report.Processed) != 0 || len(report.Skipped) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestService_ExtractDirectory_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ext := &mockExtractor{}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	_, err := newTestService(ext, lister).ExtractDirectory(ctx, "mov", "wav")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExtractDirectory() error = %v, want context.Canceled", err)
	}
}

func TestService_ExtractDirectory_Locker(t *testing.T) {
	t.Run("holds the output lock for the whole batch", func(t *testing.T) {
		ext := &mockExtractor{}
		lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
		locker := &mockLocker{}

		if _, err := newTestService(ext, lister, WithLocker(locker)).ExtractDirectory(context.Background(), "mov", "wav"); err != nil {
			t.Fatalf("ExtractDirectory() error = %v", err)
		}
		if len(locker.locked) != 1 || locker.locked[0] != "wav" {
			t.Errorf("locked = %v, want [wav]", locker.locked)
		}
		if locker.unlocked != 1 {
			t.Errorf("unlocked %d times, want 1", locker.unlocked)
		}
	})

	t.Run("locked folder aborts before extracting", func(t *testing.T) {
		ext := &mockExtractor{}
		lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
		locker := &mockLocker{err: media.ErrOutputLocked}

		_, err := newTestService(ext, lister, WithLocker(locker)).ExtractDirectory(context.Background(), "mov", "wav")
		if !errors.Is(err, media.ErrOutputLocked) {
			t.Errorf("ExtractDirectory() error = %v, want ErrOutputLocked", err)
		}
		if len(ext.calls) != 0 {
			t.Errorf("extractor called %d times, want 0", len(ext.calls))
		}
	})
}

func TestService_ExtractDirectory_Prober(t *testing.T) {
	ext := &mockExtractor{}
	lister := &mockLister{entries: map[string][]media.DirEntry{"mov": sampleEntries()}}
	prober := &mockProber{err: media.ErrProbeUnavailable}
	svc := newTestService(ext, lister, WithProber(prober))

	if _, err := svc.ExtractDirectory(context.Background(), "mov", "wav"); err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	if len(prober.probed) != 2 {
		t.Errorf("probed %d files, want 2", len(prober.probed))
	}
	if len(ext.calls) != 2 {
		t.Errorf("probe errors must not block extraction, got %d calls", len(ext.calls))
	}
}

func TestService_ExtractFile(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		output     string
		exists     bool
		wantOutput string
		wantErr    error
	}{
		{
			name:       "default output folder",
			source:     "LetItFlow-RAW-Lina/IMG_6287.mov",
			exists:     true,
			wantOutput: filepath.Join("extracted_audio", "IMG_6287.wav"),
		},
		{
			name:       "explicit output",
			source:     "in.MOV",
			output:     "out/your_audio.wav",
			exists:     true,
			wantOutput: "out/your_audio.wav",
		},
		{
			name:    "missing source",
			source:  "gone.MOV",
			wantErr: media.ErrSourceMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{}
			lister := &mockLister{}
			checker := &mockFileChecker{existingFiles: map[string]bool{tt.source: tt.exists}}
			svc := NewService(zerolog.Nop(), ext, lister, checker)

			result, err := svc.ExtractFile(context.Background(), tt.source, tt.output)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ExtractFile() error = %v, want %v", err, tt.wantErr)
				}
				if len(ext.calls) != 0 {
					t.Errorf("extractor called %d times, want 0", len(ext.calls))
				}
				return
			}

			if err != nil {
				t.Fatalf("ExtractFile() error = %v", err)
			}
			if result.OutputPath != tt.wantOutput {
				t.Errorf("OutputPath = %q, want %q", result.OutputPath, tt.wantOutput)
			}
			if result.Outcome != media.OutcomeSucceeded {
				t.Errorf("Outcome = %q, want succeeded", result.Outcome)
			}
			if len(lister.ensured) != 1 || lister.ensured[0] != filepath.Dir(tt.wantOutput) {
				t.Errorf("EnsureDir calls = %v", lister.ensured)
			}
		})
	}
}

func TestService_ExtractFile_ToolMissing(t *testing.T) {
	ext := &mockExtractor{toolGone: true}
	checker := &mockFileChecker{existingFiles: map[string]bool{"a.MOV": true}}
	svc := NewService(zerolog.Nop(), ext, &mockLister{}, checker)

	result, err := svc.ExtractFile(context.Background(), "a.MOV", "")
	if !errors.Is(err, media.ErrToolNotFound) {
		t.Fatalf("ExtractFile() error = %v, want ErrToolNotFound", err)
	}
	if result.Outcome != media.OutcomeToolMissing {
		t.Errorf("Outcome = %q, want tool_missing", result.Outcome)
	}
}

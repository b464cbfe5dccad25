package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"letitflow-media/domain/media"

	"github.com/google/uuid"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"recording.wav", "recording.wav"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool \xfcml\xe4uts.txt", "i_contain_cool_mluts.txt"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"C:\\Users\\lina\\clip.wav", "C_Users_lina_clip.wav"},
		{"..", ""},
		{"", ""},
		{"CON.wav", "_CON.wav"},
		{"__init__.py", "init__.py"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SecureFilename(tt.input); got != tt.want {
				t.Errorf("SecureFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUploadFilename(t *testing.T) {
	got := UploadFilename("take 1.wav")
	if !strings.HasSuffix(got, "_take_1.wav") {
		t.Errorf("UploadFilename() = %q, want <uuid>_take_1.wav", got)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(got, "_take_1.wav")); err != nil {
		t.Errorf("UploadFilename() prefix of %q is not a uuid: %v", got, err)
	}
	if ClientFilename(got) != "take_1.wav" {
		t.Errorf("ClientFilename(%q) = %q, want take_1.wav", got, ClientFilename(got))
	}

	if again := UploadFilename("take 1.wav"); again == got {
		t.Errorf("UploadFilename() returned %q twice for the same client name", got)
	}

	bare := UploadFilename("../")
	if _, err := uuid.Parse(bare); err != nil {
		t.Errorf("UploadFilename(\"../\") = %q, want a uuid: %v", bare, err)
	}
	if ClientFilename(bare) != bare {
		t.Errorf("ClientFilename(%q) = %q, want unchanged", bare, ClientFilename(bare))
	}
}

func TestLister(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.MOV", "a.MOV"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.MOV"), 0755); err != nil {
		t.Fatal(err)
	}

	l := NewLister()
	entries, err := l.List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	if entries[0].Name != "a.MOV" || entries[2].Name != "nested.MOV" || !entries[2].IsDir {
		t.Errorf("List() = %+v", entries)
	}

	if _, err := l.List(filepath.Join(dir, "missing")); err == nil {
		t.Error("List() expected error for missing directory")
	}

	out := filepath.Join(dir, "out", "wav")
	if err := l.EnsureDir(out); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		t.Error("EnsureDir() did not create directory")
	}
}

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "IMG_0001.MOV")
	if err := os.WriteFile(file, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "old.MOV"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{file, true},
		{filepath.Join(dir, "old.MOV"), false},
		{filepath.Join(dir, "nope.MOV"), false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := NewChecker().Exists(tt.path); got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLocker_Lock(t *testing.T) {
	dir := t.TempDir()
	locker := NewLocker()

	unlock, err := locker.Lock(dir)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); err != nil {
		t.Errorf("expected lock file: %v", err)
	}

	if _, err := locker.Lock(dir); !errors.Is(err, media.ErrOutputLocked) {
		t.Errorf("second Lock() error = %v, want ErrOutputLocked", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); err != nil {
		t.Errorf("lock file should survive unlock: %v", err)
	}

	again, err := locker.Lock(dir)
	if err != nil {
		t.Fatalf("Lock() after unlock error = %v", err)
	}
	if err := again(); err != nil {
		t.Errorf("unlock() error = %v", err)
	}
}

func TestLocker_ExclusiveAcrossReleaseCycles(t *testing.T) {
	dir := t.TempDir()

	first, err := NewLocker().Lock(dir)
	if err != nil {
		t.Fatalf("first Lock() error = %v", err)
	}
	if err := first(); err != nil {
		t.Fatalf("first unlock() error = %v", err)
	}

	second, err := NewLocker().Lock(dir)
	if err != nil {
		t.Fatalf("second Lock() error = %v", err)
	}
	defer second()

	// A run arriving after the first release must still see the second holder
	if _, err := NewLocker().Lock(dir); !errors.Is(err, media.ErrOutputLocked) {
		t.Errorf("third Lock() error = %v, want ErrOutputLocked", err)
	}
}

func TestLocker_MissingDir(t *testing.T) {
	if _, err := NewLocker().Lock(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error locking a missing directory")
	}
}

package media

import "context"

// ToolRun captures what the external transcoder printed and how it exited
type ToolRun struct {
	Command  string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

// AudioExtractor defines the interface for audio extraction operations
// This is a port that can be implemented by different infrastructure adapters
type AudioExtractor interface {
	// Extract strips the video stream of req.SourcePath and writes PCM audio to outputPath
	Extract(ctx context.Context, req *ExtractionRequest, outputPath string) (ToolRun, error)
}

// FileChecker defines the interface for checking that a source video is present
type FileChecker interface {
	// Exists returns true if path is an existing regular file
	Exists(path string) bool
}

// DirEntry is a single name inside a listed directory
type DirEntry struct {
	Name  string
	IsDir bool
}

// DirectoryLister lists directories and creates output folders
type DirectoryLister interface {
	// List returns the entries of dir sorted by name
	List(dir string) ([]DirEntry, error)

	// EnsureDir creates dir and any missing parents
	EnsureDir(dir string) error
}

// DirectoryLocker guards an output folder against concurrent batch runs
type DirectoryLocker interface {
	// Lock takes an exclusive lock on dir and returns the function releasing it.
	// It fails with ErrOutputLocked when another run holds the lock.
	Lock(dir string) (unlock func() error, err error)
}
